package posts

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

const (
	// maxTextLength is the display text budget, in characters, before truncation
	maxTextLength = 500
	// fallbackTextLength is used when stripping hashtags leaves no text at all
	fallbackTextLength = 300
	ellipsis           = "..."
)

var (
	hashtagPattern      = regexp.MustCompile(`#\w+`)
	hashtagStripPattern = regexp.MustCompile(`#\w+\s*`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
)

type keywordRule struct {
	category Category
	keywords []string
}

// keywordRules are checked in order: politics, technology, business.
// A keyword matches anywhere in the lower-cased content, so plurals and
// inflections ("stocks", "elections") hit too.
var keywordRules = []keywordRule{
	{
		category: CategoryPolitics,
		keywords: []string{
			"trump", "biden", "senate", "congress", "president", "election",
			"campaign", "vote", "policy", "government", "administration",
			"white house", "capitol", "republican", "democrat", "bill", "law",
			"legislation",
		},
	},
	{
		category: CategoryTechnology,
		keywords: []string{
			"ai", "artificial intelligence", "tech", "software", "app", "digital",
			"cyber", "data", "algorithm", "startup",
		},
	},
	{
		category: CategoryBusiness,
		keywords: []string{
			"market", "stock", "economy", "finance", "investment", "company",
			"ceo", "earnings", "revenue", "profit",
		},
	},
}

// Classifier projects posts into display entries. The zero value uses
// RelevanceThreshold.
type Classifier struct {
	// RelevanceThreshold is the minimum relevance for the relevant bucket
	RelevanceThreshold int
}

// Classify projects a post into one Entry per applicable display category
// using the default relevance threshold.
func Classify(post *Post) []Entry {
	return Classifier{}.Classify(post)
}

// ClassifyAll classifies a batch with the default relevance threshold.
func ClassifyAll(batch []Post) []Entry {
	return Classifier{}.ClassifyAll(batch)
}

// Classify projects a post into one Entry per applicable display category.
//
// Categories are assembled as: mapped upstream tags (deduplicated, first-seen
// order), keyword heuristics, "world" when nothing matched, then "all" and,
// for relevance at or above the threshold, "relevant". Posts missing id,
// content or a categories slice contribute no entries.
func (c Classifier) Classify(post *Post) []Entry {
	if post == nil || post.Validate() != nil || post.Categories == nil {
		return nil
	}

	tagged := lo.Uniq(lo.FilterMap(post.Categories, func(tag string, _ int) (Category, bool) {
		return CategoryForTag(tag)
	}))

	primary := CategoryWorld
	if len(tagged) > 0 {
		primary = tagged[0]
	}

	applicable := append([]Category(nil), tagged...)
	content := strings.ToLower(post.Content)
	for _, rule := range keywordRules {
		if lo.Contains(applicable, rule.category) {
			continue
		}
		if containsAny(content, rule.keywords) {
			applicable = append(applicable, rule.category)
		}
	}

	if len(applicable) == 0 {
		applicable = append(applicable, CategoryWorld)
	}
	applicable = append(applicable, CategoryAll)
	if post.Relevance >= c.threshold() {
		applicable = append(applicable, CategoryRelevant)
	}

	text := displayText(post.Content)
	tags := extractHashtags(post.Content)
	webURL := WebURL(post.URI)

	entries := make([]Entry, 0, len(applicable))
	for _, category := range applicable {
		entries = append(entries, Entry{
			ID:              EntryID(post.ID, category),
			PostID:          post.ID,
			Text:            text,
			Source:          post.DisplaySource(),
			Author:          post.Author,
			AuthorName:      post.AuthorName,
			AuthorHandle:    post.AuthorHandle,
			AuthorAvatar:    post.AuthorAvatar,
			URI:             post.URI,
			WebURL:          webURL,
			Lang:            post.Lang,
			Category:        category,
			PrimaryCategory: primary,
			Tags:            tags,
			Media:           post.Media,
			LinkPreview:     post.LinkPreview,
			Relevance:       post.Relevance,
			PostedAt:        post.PostedAt,
		})
	}
	return entries
}

// ClassifyAll classifies a batch of posts, skipping posts that contribute no entries.
func (c Classifier) ClassifyAll(batch []Post) []Entry {
	var entries []Entry
	for i := range batch {
		entries = append(entries, c.Classify(&batch[i])...)
	}
	return entries
}

func (c Classifier) threshold() int {
	if c.RelevanceThreshold <= 0 {
		return RelevanceThreshold
	}
	return c.RelevanceThreshold
}

func containsAny(content string, keywords []string) bool {
	return lo.SomeBy(keywords, func(kw string) bool {
		return strings.Contains(content, kw)
	})
}

func displayText(content string) string {
	text := hashtagStripPattern.ReplaceAllString(content, "")
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
	if text == "" {
		return truncateRunes(content, fallbackTextLength) + ellipsis
	}
	if utf8.RuneCountInString(text) > maxTextLength {
		return truncateRunes(text, maxTextLength) + ellipsis
	}
	return text
}

func extractHashtags(content string) []string {
	matches := hashtagPattern.FindAllString(content, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, strings.TrimPrefix(m, "#"))
	}
	return tags
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

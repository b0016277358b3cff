package posts

import (
	"fmt"
	"strings"
)

// Category is one of the fixed display buckets of the dashboard
type Category string

const (
	CategoryAll        Category = "all"
	CategoryRelevant   Category = "relevant"
	CategoryBusiness   Category = "business"
	CategoryWorld      Category = "world"
	CategoryPolitics   Category = "politics"
	CategoryTechnology Category = "technology"
	CategoryWeather    Category = "weather"
)

// RelevanceThreshold is the minimum relevance for a post to land in the relevant bucket
const RelevanceThreshold = 4

// CategoryInfo carries the display metadata of a category
type CategoryInfo struct {
	Key    Category `json:"key"`
	Label  string   `json:"label"`
	Accent string   `json:"accent"`
}

var categories = []CategoryInfo{
	{Key: CategoryAll, Label: "All", Accent: "gray"},
	{Key: CategoryRelevant, Label: "Relevant", Accent: "purple"},
	{Key: CategoryBusiness, Label: "Business", Accent: "green"},
	{Key: CategoryWorld, Label: "World", Accent: "blue"},
	{Key: CategoryPolitics, Label: "Politics", Accent: "yellow"},
	{Key: CategoryTechnology, Label: "Technology", Accent: "cyan"},
	{Key: CategoryWeather, Label: "Weather", Accent: "red"},
}

// AllCategories returns every category in canonical (default column) order.
func AllCategories() []Category {
	keys := make([]Category, len(categories))
	for i, c := range categories {
		keys[i] = c.Key
	}
	return keys
}

// Categories returns the display metadata for every category in canonical order.
func Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(categories))
	copy(out, categories)
	return out
}

// Info returns the display metadata for c. Unknown categories get a gray accent.
func (c Category) Info() CategoryInfo {
	for _, info := range categories {
		if info.Key == c {
			return info
		}
	}
	return CategoryInfo{Key: c, Label: string(c), Accent: "gray"}
}

// Valid reports whether c is one of the fixed display buckets.
func (c Category) Valid() bool {
	for _, info := range categories {
		if info.Key == c {
			return true
		}
	}
	return false
}

// ServerSide reports whether the upstream API can filter by this category.
// "all" needs no filter and "relevant" is derived client-side from relevance.
func (c Category) ServerSide() bool {
	return c.Valid() && c != CategoryAll && c != CategoryRelevant
}

// ParseCategory resolves a category key, case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// tagCategories maps raw upstream tags to display categories (many-to-one)
var tagCategories = map[string]Category{
	"business":      CategoryBusiness,
	"finance":       CategoryBusiness,
	"economy":       CategoryBusiness,
	"world":         CategoryWorld,
	"health":        CategoryWorld,
	"crime":         CategoryWorld,
	"sports":        CategoryWorld,
	"breaking":      CategoryWorld,
	"international": CategoryWorld,
	"politics":      CategoryPolitics,
	"domestic":      CategoryPolitics,
	"government":    CategoryPolitics,
	"congress":      CategoryPolitics,
	"senate":        CategoryPolitics,
	"campaign":      CategoryPolitics,
	"election":      CategoryPolitics,
	"policy":        CategoryPolitics,
	"law":           CategoryPolitics,
	"legal":         CategoryPolitics,
	"technology":    CategoryTechnology,
	"tech":          CategoryTechnology,
	"science":       CategoryTechnology,
	"weather":       CategoryWeather,
}

// CategoryForTag maps a raw upstream tag to its display category.
// Returns false for tags with no mapping.
func CategoryForTag(tag string) (Category, bool) {
	c, ok := tagCategories[strings.ToLower(strings.TrimSpace(tag))]
	return c, ok
}

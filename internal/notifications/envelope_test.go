package notifications

import (
	"testing"
	"time"

	"Monitor/internal/core/posts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		frame    Frame
		wantKind MessageKind
		wantType string
		wantID   string
	}{
		{
			name:     "tagged post",
			frame:    Frame{Data: []byte(`{"type":"post","data":{"id":"p1","content":"Fed raises rates","categories":["business"],"relevance":5}}`)},
			wantKind: KindPost,
			wantType: TypePost,
			wantID:   "p1",
		},
		{
			name:     "tagged ingested post with pipeline field names",
			frame:    Frame{Data: []byte(`{"type":"ingested-post","data":{"uuid":"p2","text":"Storm warning","tags":["weather"]}}`)},
			wantKind: KindPost,
			wantType: TypeIngestedPost,
			wantID:   "p2",
		},
		{
			name:     "tagged event",
			frame:    Frame{Data: []byte(`{"type":"event","data":{"uuid":"e1","title":"Rate decision","posts":[]}}`)},
			wantKind: KindEvent,
			wantType: TypeEvent,
			wantID:   "e1",
		},
		{
			name:     "legacy untagged post",
			frame:    Frame{Data: []byte(`{"id":"p3","content":"legacy frame","categories":[]}`)},
			wantKind: KindPost,
			wantType: "",
			wantID:   "p3",
		},
		{
			name:     "unknown envelope type falls back to legacy post",
			frame:    Frame{Data: []byte(`{"type":"heartbeat","id":"p4","content":"still a post"}`)},
			wantKind: KindPost,
			wantType: "",
			wantID:   "p4",
		},
		{
			name:     "sse event name tags an untagged body",
			frame:    Frame{Event: "event", Data: []byte(`{"uuid":"e2","title":"Cluster"}`)},
			wantKind: KindEvent,
			wantType: TypeEvent,
			wantID:   "e2",
		},
		{
			name:     "surrounding whitespace is ignored",
			frame:    Frame{Data: []byte("  \n{\"id\":\"p5\",\"content\":\"padded\"}\n")},
			wantKind: KindPost,
			wantID:   "p5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode(tt.frame)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, msg.Kind)
			assert.Equal(t, tt.wantType, msg.Type)

			switch msg.Kind {
			case KindPost:
				require.NotNil(t, msg.Post)
				assert.Nil(t, msg.Event)
				assert.Equal(t, tt.wantID, msg.Post.ID)
				assert.NotNil(t, msg.Post.Categories)
			case KindEvent:
				require.NotNil(t, msg.Event)
				assert.Nil(t, msg.Post)
				assert.Equal(t, tt.wantID, msg.Event.UUID)
			}
		})
	}
}

func TestDecode_IngestedPostFields(t *testing.T) {
	frame := Frame{Data: []byte(`{
		"type": "ingested-post",
		"data": {
			"id": "p9",
			"content": "Budget vote tonight",
			"url": "at://did:plc:abc/app.bsky.feed.post/3k",
			"language": "en",
			"published_at": "2025-03-01T12:00:00Z",
			"ingested_at": "2025-03-01T12:00:05Z",
			"categories": ["politics"],
			"relevance": 4.6
		}
	}`)}

	msg, err := Decode(frame)
	require.NoError(t, err)
	require.NotNil(t, msg.Post)

	post := msg.Post
	assert.Equal(t, "at://did:plc:abc/app.bsky.feed.post/3k", post.URI)
	assert.Equal(t, "en", post.Lang)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), post.PostedAt)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 5, 0, time.UTC), post.ReceivedAt)
	assert.Equal(t, []string{"politics"}, post.Categories)
	assert.Equal(t, 5, post.Relevance)
}

func TestDecode_EventStatusDefaultsToOpen(t *testing.T) {
	msg, err := Decode(Frame{Data: []byte(`{"type":"event","data":{"id":42,"title":"Untitled"}}`)})
	require.NoError(t, err)
	require.NotNil(t, msg.Event)

	assert.Equal(t, posts.EventStatusOpen, msg.Event.Status)
	assert.Equal(t, "id:42", msg.Event.Key())
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
	}{
		{"empty", Frame{}},
		{"whitespace only", Frame{Data: []byte("   ")}},
		{"not json", Frame{Data: []byte("hello")}},
		{"legacy post without id", Frame{Data: []byte(`{"content":"orphan"}`)}},
		{"legacy post without content", Frame{Data: []byte(`{"id":"p1"}`)}},
		{"tagged post with invalid body", Frame{Data: []byte(`{"type":"post","data":{"id":"p1"}}`)}},
		{"tagged event without identity", Frame{Data: []byte(`{"type":"event","data":{"title":"no id"}}`)}},
		{"tagged post with wrong shape", Frame{Data: []byte(`{"type":"post","data":[1,2,3]}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.frame)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedFrame)
		})
	}
}

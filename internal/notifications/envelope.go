package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"

	"Monitor/internal/core/posts"
)

// Envelope types carried by tagged notification frames
const (
	TypePost         = "post"
	TypeEvent        = "event"
	TypeIngestedPost = "ingested-post"
)

// Frame is one text payload read from the push stream.
// Event is the transport-level event name, when the transport has one (SSE).
type Frame struct {
	Event string
	Data  []byte
}

// Envelope is the tagged frame shape {type, data}
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MessageKind discriminates a decoded Message
type MessageKind int

const (
	KindPost MessageKind = iota
	KindEvent
)

// Message is a decoded frame: exactly one of Post or Event is set, per Kind.
type Message struct {
	Post  *posts.Post
	Event *posts.Event
	// Type is the envelope type the message arrived as; "" for legacy frames
	Type string
	Kind MessageKind
}

// Decode parses a frame into a Message.
//
// Tagged envelopes are decoded per variant. Anything that is not a known
// envelope is read as a legacy untagged post record. An SSE event name that
// matches a known type is treated as the tag of an untagged body.
func Decode(frame Frame) (Message, error) {
	data := bytes.TrimSpace(frame.Data)
	if len(data) == 0 {
		return Message{}, fmt.Errorf("%w: empty frame", ErrMalformedFrame)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err == nil && isKnownType(env.Type) && len(env.Data) > 0 {
		return decodeVariant(env.Type, env.Data)
	}

	if isKnownType(frame.Event) {
		return decodeVariant(frame.Event, data)
	}

	return decodeVariant("", data)
}

func isKnownType(t string) bool {
	switch t {
	case TypePost, TypeEvent, TypeIngestedPost:
		return true
	}
	return false
}

func decodeVariant(typ string, data []byte) (Message, error) {
	switch typ {
	case TypeEvent:
		var payload posts.EventPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return Message{}, fmt.Errorf("%w: event: %v", ErrMalformedFrame, err)
		}
		event, err := payload.Normalize()
		if err != nil {
			return Message{}, fmt.Errorf("%w: event: %w", ErrMalformedFrame, err)
		}
		return Message{Kind: KindEvent, Type: typ, Event: &event}, nil

	case TypeIngestedPost:
		var payload posts.IngestedPostPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return Message{}, fmt.Errorf("%w: ingested post: %v", ErrMalformedFrame, err)
		}
		post, err := payload.Normalize()
		if err != nil {
			return Message{}, fmt.Errorf("%w: ingested post: %w", ErrMalformedFrame, err)
		}
		return Message{Kind: KindPost, Type: typ, Post: &post}, nil

	default:
		var payload posts.PostPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return Message{}, fmt.Errorf("%w: post: %v", ErrMalformedFrame, err)
		}
		post, err := payload.Normalize()
		if err != nil {
			return Message{}, fmt.Errorf("%w: post: %w", ErrMalformedFrame, err)
		}
		return Message{Kind: KindPost, Type: typ, Post: &post}, nil
	}
}

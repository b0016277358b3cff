package notifications

import "errors"

var (
	// ErrRetriesExhausted is passed to OnError once the reconnect ceiling is reached.
	// No further connection attempts are made after it is reported.
	ErrRetriesExhausted = errors.New("max reconnect attempts reached")

	// ErrTransient marks a transport error that leaves the connection open.
	// The client logs these and keeps reading.
	ErrTransient = errors.New("transient stream error")

	// ErrStreamClosed is returned by a connection whose stream has ended
	ErrStreamClosed = errors.New("stream closed")

	// ErrMalformedFrame is returned when a frame is neither a known envelope nor a legacy post
	ErrMalformedFrame = errors.New("malformed frame")
)

// IsExhausted reports whether err signals that the client gave up reconnecting
func IsExhausted(err error) bool {
	return errors.Is(err, ErrRetriesExhausted)
}

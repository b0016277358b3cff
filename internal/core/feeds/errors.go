package feeds

import "errors"

var (
	// ErrInitialLoadFailed is returned by Initialize when every category fetch failed
	ErrInitialLoadFailed = errors.New("initial feed load failed")

	// ErrStopped is returned when results arrive after the synchronizer was stopped
	ErrStopped = errors.New("synchronizer stopped")
)

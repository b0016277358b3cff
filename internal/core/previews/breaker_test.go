package previews

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := newBreaker(3, 5*time.Minute)
	fail := errors.New("timeout")

	for i := 0; i < 2; i++ {
		require.NoError(t, b.allow("opengraph"))
		b.failure("opengraph", fail)
	}
	assert.Equal(t, breakerClosed, b.state("opengraph"))

	b.failure("opengraph", fail)
	assert.Equal(t, breakerOpen, b.state("opengraph"))
	assert.ErrorIs(t, b.allow("opengraph"), ErrProviderUnavailable)

	// Other providers are unaffected
	assert.NoError(t, b.allow("youtube.com"))
}

func TestBreaker_HalfOpenTrial(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	b := newBreaker(1, time.Minute)
	b.now = func() time.Time { return now }

	b.failure("opengraph", errors.New("boom"))
	assert.ErrorIs(t, b.allow("opengraph"), ErrProviderUnavailable)

	now = now.Add(2 * time.Minute)
	require.NoError(t, b.allow("opengraph"))
	assert.Equal(t, breakerHalfOpen, b.state("opengraph"))

	// Only one trial at a time
	assert.ErrorIs(t, b.allow("opengraph"), ErrProviderUnavailable)

	b.failure("opengraph", errors.New("still down"))
	assert.Equal(t, breakerOpen, b.state("opengraph"))

	now = now.Add(2 * time.Minute)
	require.NoError(t, b.allow("opengraph"))
	b.success("opengraph")
	assert.Equal(t, breakerClosed, b.state("opengraph"))
	assert.NoError(t, b.allow("opengraph"))
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	b := newBreaker(2, time.Minute)

	b.failure("opengraph", errors.New("one"))
	b.success("opengraph")
	b.failure("opengraph", errors.New("two"))

	assert.Equal(t, breakerClosed, b.state("opengraph"))
}

package layout

import (
	"context"
	"errors"
	"testing"

	"Monitor/internal/core/posts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	prefs  map[string]*Preference
	getErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{prefs: make(map[string]*Preference)}
}

func (r *fakeRepo) Get(ctx context.Context, clientID, key string) (*Preference, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	pref, ok := r.prefs[clientID+"/"+key]
	if !ok {
		return nil, ErrNotFound
	}
	return pref, nil
}

func (r *fakeRepo) Upsert(ctx context.Context, pref *Preference) error {
	r.prefs[pref.ClientID+"/"+pref.Key] = pref
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, clientID, key string) error {
	if _, ok := r.prefs[clientID+"/"+key]; !ok {
		return ErrNotFound
	}
	delete(r.prefs, clientID+"/"+key)
	return nil
}

var customOrder = []string{"weather", "all", "relevant", "business", "world", "politics", "technology"}

func TestNormalizeColumnOrder(t *testing.T) {
	tests := []struct {
		name   string
		order  []string
		wantOK bool
	}{
		{name: "complete order", order: customOrder, wantOK: true},
		{name: "unknown keys are dropped", order: append([]string{"sports"}, customOrder...), wantOK: true},
		{name: "keys are case-insensitive", order: []string{"ALL", "Relevant", "business", "world", "politics", "technology", "weather"}, wantOK: true},
		{name: "missing category", order: customOrder[1:], wantOK: false},
		{name: "duplicate category", order: append(customOrder[:6:6], "all"), wantOK: false},
		{name: "empty", order: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, ok := NormalizeColumnOrder(tt.order)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Len(t, order, 7)
			}
		})
	}
}

func TestLayoutService_GetDefaultsWhenUnset(t *testing.T) {
	svc := NewLayoutService(newFakeRepo())

	order, err := svc.GetColumnOrder(context.Background(), "client-1")
	require.NoError(t, err)
	assert.Equal(t, posts.AllCategories(), order)
}

func TestLayoutService_SaveAndGet(t *testing.T) {
	repo := newFakeRepo()
	svc := NewLayoutService(repo)
	ctx := context.Background()

	saved, err := svc.SaveColumnOrder(ctx, "client-1", append(customOrder, "sports"))
	require.NoError(t, err)
	assert.Equal(t, posts.CategoryWeather, saved[0])
	assert.Equal(t, customOrder, repo.prefs["client-1/"+ColumnOrderKey].Value)

	order, err := svc.GetColumnOrder(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, saved, order)

	other, err := svc.GetColumnOrder(ctx, "client-2")
	require.NoError(t, err)
	assert.Equal(t, posts.AllCategories(), other)
}

func TestLayoutService_SaveRejectsIncompleteOrder(t *testing.T) {
	repo := newFakeRepo()
	svc := NewLayoutService(repo)

	_, err := svc.SaveColumnOrder(context.Background(), "client-1", []string{"all", "weather"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Empty(t, repo.prefs)
}

func TestLayoutService_InvalidStoredOrderFallsBack(t *testing.T) {
	repo := newFakeRepo()
	repo.prefs["client-1/"+ColumnOrderKey] = &Preference{ClientID: "client-1", Key: ColumnOrderKey, Value: []string{"all"}}
	svc := NewLayoutService(repo)

	order, err := svc.GetColumnOrder(context.Background(), "client-1")
	require.NoError(t, err)
	assert.Equal(t, posts.AllCategories(), order)
}

func TestLayoutService_Reset(t *testing.T) {
	repo := newFakeRepo()
	svc := NewLayoutService(repo)
	ctx := context.Background()

	_, err := svc.SaveColumnOrder(ctx, "client-1", customOrder)
	require.NoError(t, err)

	order, err := svc.ResetColumnOrder(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, posts.AllCategories(), order)
	assert.Empty(t, repo.prefs)

	// resetting twice is fine
	_, err = svc.ResetColumnOrder(ctx, "client-1")
	assert.NoError(t, err)
}

func TestLayoutService_RequiresClientID(t *testing.T) {
	svc := NewLayoutService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.GetColumnOrder(ctx, "")
	assert.True(t, IsValidationError(err))
	_, err = svc.SaveColumnOrder(ctx, "", customOrder)
	assert.True(t, IsValidationError(err))
	_, err = svc.ResetColumnOrder(ctx, "")
	assert.True(t, IsValidationError(err))
}

func TestLayoutService_RepositoryErrorPropagates(t *testing.T) {
	repo := newFakeRepo()
	repo.getErr = errors.New("connection reset")
	svc := NewLayoutService(repo)

	_, err := svc.GetColumnOrder(context.Background(), "client-1")
	require.Error(t, err)
	assert.False(t, IsValidationError(err))
	assert.ErrorIs(t, err, repo.getErr)
}

package layout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"Monitor/internal/core/posts"
)

type layoutService struct {
	repo Repository
}

// NewLayoutService creates a new layout service
func NewLayoutService(repo Repository) Service {
	return &layoutService{
		repo: repo,
	}
}

// DefaultColumnOrder returns the canonical category order
func DefaultColumnOrder() []posts.Category {
	return posts.AllCategories()
}

// NormalizeColumnOrder drops unknown keys and accepts the result only if it
// names every category exactly once.
func NormalizeColumnOrder(order []string) ([]posts.Category, bool) {
	seen := make(map[posts.Category]bool, len(order))
	out := make([]posts.Category, 0, len(order))
	for _, key := range order {
		c := posts.Category(strings.ToLower(strings.TrimSpace(key)))
		if !c.Valid() {
			continue
		}
		if seen[c] {
			return nil, false
		}
		seen[c] = true
		out = append(out, c)
	}
	if len(out) != len(posts.AllCategories()) {
		return nil, false
	}
	return out, true
}

// GetColumnOrder returns the client's stored order, or the default when
// nothing valid is stored
func (s *layoutService) GetColumnOrder(ctx context.Context, clientID string) ([]posts.Category, error) {
	if clientID == "" {
		return nil, NewValidationError("clientId", "client id is required")
	}

	pref, err := s.repo.Get(ctx, clientID, ColumnOrderKey)
	if errors.Is(err, ErrNotFound) {
		return DefaultColumnOrder(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get column order: %w", err)
	}

	order, ok := NormalizeColumnOrder(pref.Value)
	if !ok {
		slog.Warn("[LAYOUT] stored column order is invalid, using default",
			"client_id", clientID,
			"value", pref.Value,
		)
		return DefaultColumnOrder(), nil
	}
	return order, nil
}

// SaveColumnOrder validates and stores a new order
func (s *layoutService) SaveColumnOrder(ctx context.Context, clientID string, order []string) ([]posts.Category, error) {
	if clientID == "" {
		return nil, NewValidationError("clientId", "client id is required")
	}

	normalized, ok := NormalizeColumnOrder(order)
	if !ok {
		return nil, NewValidationError("order", fmt.Sprintf("%v: order must list each of %v exactly once",
			ErrInvalidColumnOrder, posts.AllCategories()))
	}

	value := make([]string, len(normalized))
	for i, c := range normalized {
		value[i] = string(c)
	}
	if err := s.repo.Upsert(ctx, &Preference{ClientID: clientID, Key: ColumnOrderKey, Value: value}); err != nil {
		return nil, fmt.Errorf("failed to save column order: %w", err)
	}
	return normalized, nil
}

// ResetColumnOrder removes the stored order and returns the default
func (s *layoutService) ResetColumnOrder(ctx context.Context, clientID string) ([]posts.Category, error) {
	if clientID == "" {
		return nil, NewValidationError("clientId", "client id is required")
	}

	if err := s.repo.Delete(ctx, clientID, ColumnOrderKey); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to reset column order: %w", err)
	}
	return DefaultColumnOrder(), nil
}

// Package store holds Story and Tip records in insertion order.
//
// Only the ledger writes to a Store and only the query engine reads lists
// from it. AppendTip is the single place story aggregates change: the tip
// append and the tipCount/totalTipped increment happen in one critical
// section, so concurrent tips on the same story are never lost.
package store

import (
	"context"
	"errors"

	"confessions/internal/models"
)

var (
	ErrStoryNotFound = errors.New("story not found")
	ErrDuplicateID   = errors.New("duplicate id")
)

type Store interface {
	AppendStory(ctx context.Context, s models.Story) error
	// AppendTip records t and bumps the referenced story's aggregates.
	// It returns the updated story, or ErrStoryNotFound with nothing applied.
	AppendTip(ctx context.Context, t models.Tip) (models.Story, error)
	Story(ctx context.Context, id string) (models.Story, error)
	Stories(ctx context.Context) ([]models.Story, error)
	Tips(ctx context.Context) ([]models.Tip, error)
	Close() error
}

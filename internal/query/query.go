// Package query provides read-only projections over the store.
package query

import (
	"context"
	"errors"
	"sort"

	"confessions/internal/apperr"
	"confessions/internal/models"
	"confessions/internal/store"
)

type Engine struct {
	store store.Store
}

func New(st store.Store) *Engine {
	return &Engine{store: st}
}

// ListStories returns a fresh slice, never nil. Ordering is stable so ties
// keep insertion order.
func (e *Engine) ListStories(ctx context.Context, filter models.Filter, sortBy models.SortBy) ([]models.Story, error) {
	all, err := e.store.Stories(ctx)
	if err != nil {
		return nil, apperr.Internal("list stories", err)
	}

	out := make([]models.Story, 0, len(all))
	for _, s := range all {
		if filter.Match(s.StoryType) {
			out = append(out, s)
		}
	}

	switch sortBy {
	case models.SortTrending:
		sort.SliceStable(out, func(i, j int) bool { return out[i].TipCount > out[j].TipCount })
	case models.SortMostTipped:
		sort.SliceStable(out, func(i, j int) bool { return out[i].TotalTipped.GreaterThan(out[j].TotalTipped) })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	}
	return out, nil
}

// ListTips returns tips for storyID in insertion order, or every tip when
// storyID is empty.
func (e *Engine) ListTips(ctx context.Context, storyID string) ([]models.Tip, error) {
	all, err := e.store.Tips(ctx)
	if err != nil {
		return nil, apperr.Internal("list tips", err)
	}
	out := make([]models.Tip, 0, len(all))
	for _, t := range all {
		if storyID == "" || t.StoryID == storyID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (e *Engine) GetStory(ctx context.Context, id string) (models.Story, error) {
	s, err := e.store.Story(ctx, id)
	if errors.Is(err, store.ErrStoryNotFound) {
		return models.Story{}, apperr.NotFound("story", id)
	} else if err != nil {
		return models.Story{}, apperr.Internal("get story", err)
	}
	return s, nil
}

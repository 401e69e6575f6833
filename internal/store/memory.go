package store

import (
	"context"
	"slices"
	"sync"

	"confessions/internal/models"
)

// Memory keeps everything for the process lifetime. It has no size bound.
type Memory struct {
	mu      sync.RWMutex
	stories []models.Story
	byID    map[string]int
	tips    []models.Tip
	tipIDs  map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{
		byID:   make(map[string]int),
		tipIDs: make(map[string]struct{}),
	}
}

func (m *Memory) AppendStory(_ context.Context, s models.Story) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[s.StoryID]; ok {
		return ErrDuplicateID
	}
	m.byID[s.StoryID] = len(m.stories)
	m.stories = append(m.stories, s)
	return nil
}

func (m *Memory) AppendTip(_ context.Context, t models.Tip) (models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.byID[t.StoryID]
	if !ok {
		return models.Story{}, ErrStoryNotFound
	}
	if _, dup := m.tipIDs[t.TipID]; dup {
		return models.Story{}, ErrDuplicateID
	}
	m.tipIDs[t.TipID] = struct{}{}
	m.tips = append(m.tips, t)

	s := &m.stories[i]
	s.TipCount++
	s.TotalTipped = s.TotalTipped.Add(t.Amount)
	return *s, nil
}

func (m *Memory) Story(_ context.Context, id string) (models.Story, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.byID[id]
	if !ok {
		return models.Story{}, ErrStoryNotFound
	}
	return m.stories[i], nil
}

func (m *Memory) Stories(context.Context) ([]models.Story, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.stories), nil
}

func (m *Memory) Tips(context.Context) ([]models.Tip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.tips), nil
}

func (m *Memory) Close() error { return nil }

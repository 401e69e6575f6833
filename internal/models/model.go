package models

import (
	"github.com/shopspring/decimal"
)

type StoryType string

const (
	StoryRekt StoryType = "rekt"
	StoryRich StoryType = "rich"
)

func (t StoryType) Valid() bool {
	return t == StoryRekt || t == StoryRich
}

// Filter selects stories by type. FilterAll matches every story.
type Filter string

const (
	FilterAll  Filter = "all"
	FilterRekt Filter = "rekt"
	FilterRich Filter = "rich"
)

func ParseFilter(s string) (Filter, bool) {
	switch Filter(s) {
	case "", FilterAll:
		return FilterAll, true
	case FilterRekt, FilterRich:
		return Filter(s), true
	}
	return "", false
}

func (f Filter) Match(t StoryType) bool {
	return f == FilterAll || string(f) == string(t)
}

type SortBy string

const (
	SortRecent     SortBy = "recent"
	SortTrending   SortBy = "trending"
	SortMostTipped SortBy = "mostTipped"
)

func ParseSortBy(s string) (SortBy, bool) {
	switch SortBy(s) {
	case "", SortRecent:
		return SortRecent, true
	case SortTrending, SortMostTipped:
		return SortBy(s), true
	}
	return "", false
}

// Story timestamps are unix seconds. TipCount and TotalTipped are derived
// from the tips referencing the story and only the store updates them.
type Story struct {
	StoryID       string          `json:"storyId"`
	Title         string          `json:"title"`
	Content       string          `json:"content"`
	ContentHash   string          `json:"contentHash"`
	StoryType     StoryType       `json:"storyType"`
	AuthorMessage string          `json:"authorMessage,omitempty"`
	Timestamp     int64           `json:"timestamp"`
	TipCount      int             `json:"tipCount"`
	TotalTipped   decimal.Decimal `json:"totalTipped"`
}

type Tip struct {
	TipID           string          `json:"tipId"`
	StoryID         string          `json:"storyId"`
	FromFid         string          `json:"fromFid,omitempty"`
	ToFid           string          `json:"toFid,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Timestamp       int64           `json:"timestamp"`
	TransactionHash string          `json:"transactionHash"`
}

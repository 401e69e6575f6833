package models

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

func TestParseFilter(t *testing.T) {
	for in, want := range map[string]Filter{"": FilterAll, "all": FilterAll, "rekt": FilterRekt, "rich": FilterRich} {
		got, ok := ParseFilter(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseFilter("REKT")
	assert.False(t, ok)
}

func TestParseSortBy(t *testing.T) {
	for in, want := range map[string]SortBy{"": SortRecent, "recent": SortRecent, "trending": SortTrending, "mostTipped": SortMostTipped} {
		got, ok := ParseSortBy(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseSortBy("top")
	assert.False(t, ok)
}

func TestFilterMatch(t *testing.T) {
	assert.True(t, FilterAll.Match(StoryRekt))
	assert.True(t, FilterRich.Match(StoryRich))
	assert.False(t, FilterRich.Match(StoryRekt))
}

func TestTipAmountIsJSONNumber(t *testing.T) {
	b, err := json.Marshal(Tip{TipID: "t1", Amount: decimal.RequireFromString("0.5")})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"amount":0.5`)
	assert.NotContains(t, string(b), "fromFid")
}

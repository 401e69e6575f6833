package query

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confessions/internal/apperr"
	"confessions/internal/models"
	"confessions/internal/store"
)

// fixture builds four stories in insertion order s1..s4:
//
//	s1 rekt ts=100 tips: 1, 1        (count 2, total 2)
//	s2 rich ts=300 tips: 5           (count 1, total 5)
//	s3 rekt ts=200 tips: 0.5, 0.5    (count 2, total 1)
//	s4 rich ts=300 no tips
func fixture(t *testing.T) *Engine {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemory()
	add := func(id string, typ models.StoryType, ts int64) {
		require.NoError(t, st.AppendStory(ctx, models.Story{StoryID: id, StoryType: typ, Timestamp: ts, TotalTipped: decimal.Zero}))
	}
	tip := func(id, storyID, amt string) {
		_, err := st.AppendTip(ctx, models.Tip{TipID: id, StoryID: storyID, Amount: decimal.RequireFromString(amt)})
		require.NoError(t, err)
	}
	add("s1", models.StoryRekt, 100)
	add("s2", models.StoryRich, 300)
	add("s3", models.StoryRekt, 200)
	add("s4", models.StoryRich, 300)
	tip("t1", "s1", "1")
	tip("t2", "s2", "5")
	tip("t3", "s3", "0.5")
	tip("t4", "s1", "1")
	tip("t5", "s3", "0.5")
	return New(st)
}

func ids(stories []models.Story) []string {
	out := make([]string, len(stories))
	for i, s := range stories {
		out[i] = s.StoryID
	}
	return out
}

func TestListStories_Sorting(t *testing.T) {
	e := fixture(t)

	cases := []struct {
		sortBy models.SortBy
		want   []string
	}{
		{models.SortRecent, []string{"s2", "s4", "s3", "s1"}},
		{models.SortTrending, []string{"s1", "s3", "s2", "s4"}},
		{models.SortMostTipped, []string{"s2", "s1", "s3", "s4"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.sortBy), func(t *testing.T) {
			got, err := e.ListStories(context.Background(), models.FilterAll, tc.sortBy)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(got))
		})
	}
}

func TestListStories_SortIsNonIncreasing(t *testing.T) {
	e := fixture(t)

	trending, err := e.ListStories(context.Background(), models.FilterAll, models.SortTrending)
	require.NoError(t, err)
	for i := 1; i < len(trending); i++ {
		assert.GreaterOrEqual(t, trending[i-1].TipCount, trending[i].TipCount)
	}

	top, err := e.ListStories(context.Background(), models.FilterAll, models.SortMostTipped)
	require.NoError(t, err)
	for i := 1; i < len(top); i++ {
		assert.True(t, top[i-1].TotalTipped.GreaterThanOrEqual(top[i].TotalTipped))
	}
}

func TestListStories_Filter(t *testing.T) {
	e := fixture(t)
	ctx := context.Background()

	rekt, err := e.ListStories(ctx, models.FilterRekt, models.SortRecent)
	require.NoError(t, err)
	assert.Equal(t, []string{"s3", "s1"}, ids(rekt))
	for _, s := range rekt {
		assert.Equal(t, models.StoryRekt, s.StoryType)
	}

	rich, err := e.ListStories(ctx, models.FilterRich, models.SortRecent)
	require.NoError(t, err)
	all, err := e.ListStories(ctx, models.FilterAll, models.SortRecent)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids(all), append(ids(rekt), ids(rich)...))
}

func TestListStories_DoesNotReorderStore(t *testing.T) {
	e := fixture(t)
	ctx := context.Background()

	_, err := e.ListStories(ctx, models.FilterAll, models.SortMostTipped)
	require.NoError(t, err)

	raw, err := e.store.Stories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2", "s3", "s4"}, ids(raw))
}

func TestListStories_EmptyIsNotNil(t *testing.T) {
	e := New(store.NewMemory())
	got, err := e.ListStories(context.Background(), models.FilterRich, models.SortRecent)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListTips(t *testing.T) {
	e := fixture(t)
	ctx := context.Background()

	all, err := e.ListTips(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 5)

	s1, err := e.ListTips(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, s1, 2)
	assert.Equal(t, "t1", s1[0].TipID)
	assert.Equal(t, "t4", s1[1].TipID)

	none, err := e.ListTips(ctx, "s4")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGetStory(t *testing.T) {
	e := fixture(t)

	s, err := e.GetStory(context.Background(), "s2")
	require.NoError(t, err)
	assert.Equal(t, 1, s.TipCount)

	_, err = e.GetStory(context.Background(), "missing")
	var nf *apperr.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

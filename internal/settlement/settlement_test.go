package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confessions/internal/models"
)

func sampleTip() models.Tip {
	return models.Tip{
		TipID:     "tip-1",
		StoryID:   "story-1",
		Amount:    decimal.RequireFromString("0.5"),
		Timestamp: 1700000000,
	}
}

func TestMock_SettleReturnsDeterministicHash(t *testing.T) {
	m := NewMock(0)

	h1, err := m.Settle(context.Background(), sampleTip())
	require.NoError(t, err)
	h2, err := m.Settle(context.Background(), sampleTip())
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 66)
	assert.Equal(t, "0x", h1[:2])

	other := sampleTip()
	other.TipID = "tip-2"
	assert.NotEqual(t, h1, TxHash(other))
}

func TestMock_SettleWaitsForDelay(t *testing.T) {
	m := NewMock(50 * time.Millisecond)

	start := time.Now()
	_, err := m.Settle(context.Background(), sampleTip())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestMock_SettleHonoursCancellation(t *testing.T) {
	m := NewMock(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	hash, err := m.Settle(ctx, sampleTip())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, hash)
}

func TestMock_SettleCancelledWithoutDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMock(0).Settle(ctx, sampleTip())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestContentHash(t *testing.T) {
	// keccak256("") is a well known constant.
	assert.Equal(t, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", ContentHash(""))
	assert.NotEqual(t, ContentHash("a"), ContentHash("b"))
}

// Package settlement stands in for the on-chain transfer behind a tip.
package settlement

import (
	"context"
	"encoding/hex"
	"strconv"
	"time"

	"golang.org/x/crypto/sha3"

	"confessions/internal/models"
)

// Backend settles a tip and returns the transaction reference. Settle must
// honour ctx: a cancelled caller gets ctx.Err() and no hash.
type Backend interface {
	Settle(ctx context.Context, t models.Tip) (string, error)
}

// Mock waits Delay to imitate a confirmation and derives a deterministic
// Keccak-256 hash from the tip.
type Mock struct {
	Delay time.Duration
}

func NewMock(delay time.Duration) *Mock {
	return &Mock{Delay: delay}
}

func (m *Mock) Settle(ctx context.Context, t models.Tip) (string, error) {
	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return "", err
	}
	return TxHash(t), nil
}

// TxHash is keccak256(tipId|storyId|amount|timestamp) as 0x-prefixed hex.
func TxHash(t models.Tip) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(t.TipID))
	h.Write([]byte{'|'})
	h.Write([]byte(t.StoryID))
	h.Write([]byte{'|'})
	h.Write([]byte(t.Amount.String()))
	h.Write([]byte{'|'})
	h.Write([]byte(strconv.FormatInt(t.Timestamp, 10)))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// ContentHash is keccak256(content) as 0x-prefixed hex.
func ContentHash(content string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(content))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// Package ledger holds the business rules for stories and tips. It is the
// only writer of the store.
package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"confessions/internal/apperr"
	"confessions/internal/metrics"
	"confessions/internal/models"
	"confessions/internal/settlement"
	"confessions/internal/store"
)

const (
	MsgMissingFields    = "Missing required fields"
	MsgInvalidStoryType = "Invalid story type"
	MsgInvalidTip       = "Invalid tip data"
)

// Tip amounts are USDC-like: at most 18 fractional digits and no more than
// maxTipAmount. The exponent is checked before any comparison because
// comparing rescales the coefficient, which is unbounded work for 1e2000000.
const (
	minTipExponent = -18
	maxTipExponent = 6
	maxTipBits     = 128
)

var maxTipAmount = decimal.New(1, 6)

func validAmount(d decimal.Decimal) bool {
	if !d.IsPositive() {
		return false
	}
	if exp := d.Exponent(); exp < minTipExponent || exp > maxTipExponent {
		return false
	}
	if d.Coefficient().BitLen() > maxTipBits {
		return false
	}
	return d.LessThanOrEqual(maxTipAmount)
}

type StoryInput struct {
	Title         string           `json:"title"`
	Content       string           `json:"content"`
	StoryType     models.StoryType `json:"storyType"`
	AuthorMessage string           `json:"authorMessage"`
}

type TipInput struct {
	StoryID string          `json:"storyId"`
	Amount  decimal.Decimal `json:"amount"`
	FromFid string          `json:"fromFid"`
	ToFid   string          `json:"toFid"`
}

type Service struct {
	store   store.Store
	settler settlement.Backend
	log     logrus.FieldLogger
	now     func() time.Time
	newID   func() (uuid.UUID, error)
}

type Option func(*Service)

// WithClock overrides time.Now, mostly for tests that need distinct seconds.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDSource(f func() (uuid.UUID, error)) Option {
	return func(s *Service) { s.newID = f }
}

func New(st store.Store, settler settlement.Backend, log logrus.FieldLogger, opts ...Option) *Service {
	s := &Service{
		store:   st,
		settler: settler,
		log:     log,
		now:     time.Now,
		newID:   uuid.NewRandom,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) CreateStory(ctx context.Context, in StoryInput) (models.Story, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" || in.StoryType == "" {
		return models.Story{}, apperr.Validation(MsgMissingFields)
	}
	if !in.StoryType.Valid() {
		return models.Story{}, apperr.Validation(MsgInvalidStoryType)
	}

	id, err := s.newID()
	if err != nil {
		return models.Story{}, apperr.Internal("generate story id", err)
	}

	story := models.Story{
		StoryID:       id.String(),
		Title:         title,
		Content:       content,
		ContentHash:   settlement.ContentHash(content),
		StoryType:     in.StoryType,
		AuthorMessage: strings.TrimSpace(in.AuthorMessage),
		Timestamp:     s.now().Unix(),
		TotalTipped:   decimal.Zero,
	}
	if err := s.store.AppendStory(ctx, story); err != nil {
		return models.Story{}, apperr.Internal("append story", err)
	}

	metrics.RecordStory(string(story.StoryType))
	s.log.WithField("story_id", story.StoryID).
		WithField("story_type", story.StoryType).
		Info("story created")
	return story, nil
}

// CreateTip settles the tip and only then applies it. If ctx ends during
// settlement the ledger is left untouched and ctx.Err() is returned.
func (s *Service) CreateTip(ctx context.Context, in TipInput) (models.Tip, error) {
	storyID := strings.TrimSpace(in.StoryID)
	if storyID == "" || !validAmount(in.Amount) {
		metrics.RecordTip("invalid", in.Amount)
		return models.Tip{}, apperr.Validation(MsgInvalidTip)
	}

	// Checked up front so an orphan tip fails fast instead of after settlement.
	if _, err := s.store.Story(ctx, storyID); errors.Is(err, store.ErrStoryNotFound) {
		metrics.RecordTip("not_found", in.Amount)
		return models.Tip{}, apperr.NotFound("story", storyID)
	} else if err != nil {
		return models.Tip{}, apperr.Internal("lookup story", err)
	}

	id, err := s.newID()
	if err != nil {
		return models.Tip{}, apperr.Internal("generate tip id", err)
	}
	tip := models.Tip{
		TipID:     id.String(),
		StoryID:   storyID,
		FromFid:   strings.TrimSpace(in.FromFid),
		ToFid:     strings.TrimSpace(in.ToFid),
		Amount:    in.Amount,
		Timestamp: s.now().Unix(),
	}

	start := time.Now()
	hash, err := s.settler.Settle(ctx, tip)
	metrics.RecordSettlement(time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			metrics.RecordTip("cancelled", in.Amount)
			return models.Tip{}, err
		}
		return models.Tip{}, apperr.Internal("settle tip", err)
	}
	tip.TransactionHash = hash

	story, err := s.store.AppendTip(ctx, tip)
	if errors.Is(err, store.ErrStoryNotFound) {
		metrics.RecordTip("not_found", in.Amount)
		return models.Tip{}, apperr.NotFound("story", storyID)
	} else if err != nil {
		return models.Tip{}, apperr.Internal("append tip", err)
	}

	metrics.RecordTip("accepted", tip.Amount)
	s.log.WithField("tip_id", tip.TipID).
		WithField("story_id", story.StoryID).
		WithField("amount", tip.Amount.String()).
		WithField("tip_count", story.TipCount).
		Info("tip recorded")
	return tip, nil
}

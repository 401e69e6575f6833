package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"confessions/internal/apperr"
	"confessions/internal/models"
	"confessions/internal/settlement"
)

type demoStory struct {
	age       time.Duration
	storyType models.StoryType
	title     string
	content   string
	tips      []string
}

var demoStories = []demoStory{
	{
		age:       1 * time.Hour,
		storyType: models.StoryRekt,
		title:     "Lost Everything on a Leveraged Trade",
		content:   "I thought I was smart going 50x leverage on ETH. It went against me in minutes and I lost my entire portfolio. 3 years of savings gone in one trade. Never risk more than you can afford to lose.",
		tips:      []string{"1", "0.25", "0.25", "0.5", "0.4"},
	},
	{
		age:       2 * time.Hour,
		storyType: models.StoryRich,
		title:     "Early Base Ecosystem Investment Paid Off",
		content:   "Got into Base ecosystem tokens when they were still under the radar. Did my research, invested slowly over 6 months, and now sitting on 10x gains.",
		tips:      []string{"1", "0.5", "0.3"},
	},
	{
		age:       3 * time.Hour,
		storyType: models.StoryRekt,
		title:     "Fell for a Rug Pull",
		content:   "The project had everything: great website, active community, doxxed team. Turned out the team photos were stock images and they rugpulled with $2M. Lost $5k that I worked months to save.",
		tips:      []string{"1", "1", "0.5", "0.25", "0.25", "0.1", "0.1"},
	},
	{
		age:       4 * time.Hour,
		storyType: models.StoryRich,
		title:     "DCA Strategy Finally Paid Off",
		content:   "Been DCAing into ETH for 2 years regardless of price. Through the bear market, through the volatility. Finally hit my target and took some profits.",
		tips:      []string{"0.5", "0.5", "0.1"},
	},
	{
		age:       5 * time.Hour,
		storyType: models.StoryRekt,
		title:     "FOMO Into Memecoin Peak",
		content:   "Saw everyone making money on this memecoin, jumped in at the absolute peak. Within hours it crashed 90%. Classic FOMO mistake that cost me $3k.",
		tips:      []string{"1", "0.25", "0.25"},
	},
}

// SeedDemo loads the demo stories with backdated timestamps and their tips.
// Tips skip the settlement delay but still go through the store so the
// aggregates match the tip records.
func (s *Service) SeedDemo(ctx context.Context) error {
	now := s.now()
	for _, d := range demoStories {
		id, err := s.newID()
		if err != nil {
			return apperr.Internal("generate story id", err)
		}
		story := models.Story{
			StoryID:     id.String(),
			Title:       d.title,
			Content:     d.content,
			ContentHash: settlement.ContentHash(d.content),
			StoryType:   d.storyType,
			Timestamp:   now.Add(-d.age).Unix(),
			TotalTipped: decimal.Zero,
		}
		if err := s.store.AppendStory(ctx, story); err != nil {
			return fmt.Errorf("seed story %q: %w", d.title, err)
		}

		for _, amt := range d.tips {
			id, err := s.newID()
			if err != nil {
				return apperr.Internal("generate tip id", err)
			}
			tip := models.Tip{
				TipID:     id.String(),
				StoryID:   story.StoryID,
				Amount:    decimal.RequireFromString(amt),
				Timestamp: story.Timestamp,
			}
			tip.TransactionHash = settlement.TxHash(tip)
			if _, err := s.store.AppendTip(ctx, tip); err != nil {
				return fmt.Errorf("seed tip for %q: %w", d.title, err)
			}
		}
	}
	s.log.WithField("stories", len(demoStories)).Info("demo data seeded")
	return nil
}

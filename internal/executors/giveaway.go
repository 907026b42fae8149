package executors

import (
	"context"
	"fmt"

	"solmentions/internal/intent"
	"solmentions/internal/models"
	"solmentions/internal/store"
)

// GiveawayExecutor persists a giveaway row for a create-giveaway intent.
// The only side effect is the insert; the draw happens later, when the
// participant target is reached or the deadline passes.
type GiveawayExecutor struct {
	giveaways *store.GiveawayStore
}

// NewGiveawayExecutor creates a giveaway-create executor
func NewGiveawayExecutor(giveaways *store.GiveawayStore) *GiveawayExecutor {
	return &GiveawayExecutor{giveaways: giveaways}
}

func (e *GiveawayExecutor) Kind() intent.Kind {
	return intent.KindCreateGiveaway
}

func (e *GiveawayExecutor) Execute(ctx context.Context, post *models.Post, in intent.Intent) Result {
	params := in.Giveaway
	if params == nil {
		return Skipped("no giveaway parameters extracted")
	}

	// Incomplete extraction is a skip, not an error: retrying the same text
	// will not conjure up an amount.
	if params.Amount <= 0 {
		return Skipped("giveaway amount missing")
	}
	if params.TokenType == "" {
		return Skipped("giveaway token type missing")
	}

	target := params.ParticipantCount
	if target <= 0 {
		target = 1
	}

	g := &models.Giveaway{
		SourcePostID:      post.ID,
		CreatorHandle:     post.Author,
		ParticipantTarget: target,
		PrizeAmount:       params.Amount,
		TokenType:         params.TokenType,
		Deadline:          params.Deadline,
	}

	created, err := e.giveaways.Create(g)
	if err != nil {
		return Errorf("failed to persist giveaway: %v", err)
	}

	detail := fmt.Sprintf("giveaway %s: %g %s for %d winners", g.ID, params.Amount, params.TokenType, target)
	if !created {
		// A prior run already inserted it; the outcome stands either way.
		detail = fmt.Sprintf("giveaway for post %s already recorded", post.ID)
	}
	return Success("", detail)
}

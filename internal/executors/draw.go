package executors

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"solmentions/internal/intent"
	"solmentions/internal/models"
	"solmentions/internal/store"

	"gorm.io/gorm"
)

// DrawExecutor performs a uniform-random draw without replacement over a
// giveaway's participants and pays each winner an equal share of the prize.
// It is independently idempotent: the conditional Completed flip happens
// before any transfer, so a second draw attempt is a no-op and a crash can
// never pay twice.
type DrawExecutor struct {
	giveaways   *store.GiveawayStore
	transferrer Transferrer
	rng         *rand.Rand
}

// NewDrawExecutor creates a giveaway-draw executor
func NewDrawExecutor(giveaways *store.GiveawayStore, transferrer Transferrer) *DrawExecutor {
	return &DrawExecutor{
		giveaways:   giveaways,
		transferrer: transferrer,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (e *DrawExecutor) Kind() intent.Kind {
	return intent.KindDrawGiveaway
}

// Execute resolves the asking author's most recent open giveaway and draws
// it. Used for explicit "draw the winners" posts.
func (e *DrawExecutor) Execute(ctx context.Context, post *models.Post, in intent.Intent) Result {
	g, err := e.giveaways.LatestOpenByCreator(post.Author)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Skipped(fmt.Sprintf("no open giveaway for @%s", post.Author))
		}
		return Errorf("failed to resolve giveaway: %v", err)
	}
	return e.Draw(ctx, g)
}

// Draw runs the draw for one giveaway. Safe to call from concurrent workers;
// only the caller that wins the Completed flip proceeds.
func (e *DrawExecutor) Draw(ctx context.Context, g *models.Giveaway) Result {
	if g.Completed {
		return Skipped("giveaway already drawn")
	}

	participants, err := e.giveaways.Participants(g.ID)
	if err != nil {
		return Errorf("failed to load participants: %v", err)
	}
	if len(participants) == 0 {
		return Skipped("no participants yet")
	}

	claimed, err := e.giveaways.ClaimDraw(g.ID)
	if err != nil {
		return Errorf("failed to claim draw: %v", err)
	}
	if !claimed {
		return Skipped("giveaway already drawn")
	}

	winners := e.pickWinners(participants, g.ParticipantTarget)
	share := g.PrizeAmount / float64(len(winners))

	var names []string
	var txIDs []string
	for _, w := range winners {
		names = append(names, w.Username)

		if g.TokenType != "SOL" {
			continue // non-SOL prizes are paid out manually
		}
		if !intent.IsAddress(w.WalletAddress) {
			log.Printf("Winner %s has no usable wallet address, skipping payout", w.Username)
			continue
		}
		txID, err := e.transferrer.TransferSOL(ctx, w.WalletAddress, share)
		if err != nil {
			// The draw is already committed; record the failure and move on
			// to the remaining winners.
			log.Printf("Payout to %s failed: %v", w.Username, err)
			continue
		}
		txIDs = append(txIDs, txID)
	}

	if err := e.giveaways.RecordDrawResult(g.ID, names, share, txIDs); err != nil {
		return Errorf("draw committed but result not recorded: %v", err)
	}

	detail := fmt.Sprintf("drew %d winner(s) for %g %s each: %s",
		len(names), share, g.TokenType, strings.Join(names, ", "))
	txID := ""
	if len(txIDs) > 0 {
		txID = txIDs[0]
	}
	return Success(txID, detail)
}

// pickWinners samples target participants uniformly without replacement.
// When the pool is no larger than the target, everyone wins.
func (e *DrawExecutor) pickWinners(participants []models.Participant, target int) []models.Participant {
	if target <= 0 || target >= len(participants) {
		return participants
	}
	perm := e.rng.Perm(len(participants))
	winners := make([]models.Participant, 0, target)
	for _, idx := range perm[:target] {
		winners = append(winners, participants[idx])
	}
	return winners
}

package store

import (
	"testing"
	"time"

	"solmentions/internal/models"

	"github.com/google/uuid"
)

func newTestGiveaway(sourcePostID string) *models.Giveaway {
	return &models.Giveaway{
		ID:                uuid.New(),
		SourcePostID:      sourcePostID,
		CreatorHandle:     "degen_dave",
		ParticipantTarget: 3,
		PrizeAmount:       0.05,
		TokenType:         "SOL",
	}
}

func TestCreateGiveawayOncePerPost(t *testing.T) {
	db := setupTestDB(t)
	giveaways := NewGiveawayStore(db)

	created, err := giveaways.Create(newTestGiveaway("1830000000000000001"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !created {
		t.Fatal("Expected first create to insert a row")
	}

	created, err = giveaways.Create(newTestGiveaway("1830000000000000001"))
	if err != nil {
		t.Fatalf("Second create failed: %v", err)
	}
	if created {
		t.Error("Expected second create for the same source post to be a no-op")
	}

	var count int64
	db.Model(&models.Giveaway{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 giveaway, got %d", count)
	}
}

func TestAddParticipantUniquePerUsername(t *testing.T) {
	db := setupTestDB(t)
	giveaways := NewGiveawayStore(db)

	g := newTestGiveaway("100")
	if _, err := giveaways.Create(g); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	added, err := giveaways.AddParticipant(&models.Participant{
		GiveawayID:    g.ID,
		Username:      "alice",
		WalletAddress: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	})
	if err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}
	if !added {
		t.Fatal("Expected first entry to be added")
	}

	// Same username entering again is absorbed.
	added, err = giveaways.AddParticipant(&models.Participant{
		GiveawayID: g.ID,
		Username:   "alice",
	})
	if err != nil {
		t.Fatalf("Duplicate AddParticipant failed: %v", err)
	}
	if added {
		t.Error("Expected duplicate username to be a no-op")
	}

	// The same username may enter a different giveaway.
	other := newTestGiveaway("101")
	if _, err := giveaways.Create(other); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	added, err = giveaways.AddParticipant(&models.Participant{
		GiveawayID: other.ID,
		Username:   "alice",
	})
	if err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}
	if !added {
		t.Error("Expected entry into a second giveaway to be allowed")
	}

	parts, err := giveaways.Participants(g.ID)
	if err != nil {
		t.Fatalf("Participants failed: %v", err)
	}
	if len(parts) != 1 {
		t.Errorf("Expected 1 participant in first giveaway, got %d", len(parts))
	}
}

func TestDueForDraw(t *testing.T) {
	db := setupTestDB(t)
	giveaways := NewGiveawayStore(db)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	expired := newTestGiveaway("1")
	expired.Deadline = &past

	open := newTestGiveaway("2")
	open.Deadline = &future

	full := newTestGiveaway("3")
	full.ParticipantTarget = 2

	done := newTestGiveaway("4")
	done.Deadline = &past
	done.Completed = true

	for _, g := range []*models.Giveaway{expired, open, full, done} {
		if _, err := giveaways.Create(g); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	for _, name := range []string{"alice", "bob"} {
		if _, err := giveaways.AddParticipant(&models.Participant{GiveawayID: full.ID, Username: name}); err != nil {
			t.Fatalf("AddParticipant failed: %v", err)
		}
	}

	due, err := giveaways.DueForDraw(now)
	if err != nil {
		t.Fatalf("DueForDraw failed: %v", err)
	}

	dueIDs := make(map[uuid.UUID]bool)
	for _, g := range due {
		dueIDs[g.ID] = true
	}
	if len(due) != 2 {
		t.Fatalf("Expected 2 due giveaways, got %d", len(due))
	}
	if !dueIDs[expired.ID] {
		t.Error("Expected the expired giveaway to be due")
	}
	if !dueIDs[full.ID] {
		t.Error("Expected the full giveaway to be due")
	}
	if dueIDs[open.ID] {
		t.Error("Open giveaway with a future deadline must not be due")
	}
	if dueIDs[done.ID] {
		t.Error("Completed giveaway must never come back")
	}
}

func TestClaimDrawOnce(t *testing.T) {
	db := setupTestDB(t)
	giveaways := NewGiveawayStore(db)

	g := newTestGiveaway("55")
	if _, err := giveaways.Create(g); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	claimed, err := giveaways.ClaimDraw(g.ID)
	if err != nil {
		t.Fatalf("ClaimDraw failed: %v", err)
	}
	if !claimed {
		t.Fatal("Expected first claim to succeed")
	}

	claimed, err = giveaways.ClaimDraw(g.ID)
	if err != nil {
		t.Fatalf("Second ClaimDraw failed: %v", err)
	}
	if claimed {
		t.Error("Expected second claim to be rejected")
	}

	stored, err := giveaways.ByID(g.ID)
	if err != nil {
		t.Fatalf("ByID failed: %v", err)
	}
	if !stored.Completed {
		t.Error("Expected giveaway marked completed")
	}
	if stored.DrawnAt == nil {
		t.Error("Expected drawn timestamp to be set")
	}
}

func TestRecordDrawResult(t *testing.T) {
	db := setupTestDB(t)
	giveaways := NewGiveawayStore(db)

	g := newTestGiveaway("77")
	if _, err := giveaways.Create(g); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	winners := []string{"alice", "bob"}
	txIDs := []string{"sig1", "sig2"}
	if err := giveaways.RecordDrawResult(g.ID, winners, 0.025, txIDs); err != nil {
		t.Fatalf("RecordDrawResult failed: %v", err)
	}

	stored, err := giveaways.ByID(g.ID)
	if err != nil {
		t.Fatalf("ByID failed: %v", err)
	}
	if len(stored.Winners) != 2 || stored.Winners[0] != "alice" || stored.Winners[1] != "bob" {
		t.Errorf("Expected winners preserved, got %v", stored.Winners)
	}
	if stored.WinnerShare != 0.025 {
		t.Errorf("Expected share 0.025, got %g", stored.WinnerShare)
	}
	if len(stored.PayoutTxIDs) != 2 {
		t.Errorf("Expected 2 payout tx IDs, got %v", stored.PayoutTxIDs)
	}
}

func TestLatestOpenByCreator(t *testing.T) {
	db := setupTestDB(t)
	giveaways := NewGiveawayStore(db)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	older := newTestGiveaway("1")
	older.CreatedAt = base

	newer := newTestGiveaway("2")
	newer.CreatedAt = base.Add(time.Hour)

	closed := newTestGiveaway("3")
	closed.CreatedAt = base.Add(2 * time.Hour)
	closed.Completed = true

	someoneElse := newTestGiveaway("4")
	someoneElse.CreatorHandle = "swapper_sue"
	someoneElse.CreatedAt = base.Add(3 * time.Hour)

	for _, g := range []*models.Giveaway{older, newer, closed, someoneElse} {
		if _, err := giveaways.Create(g); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	got, err := giveaways.LatestOpenByCreator("degen_dave")
	if err != nil {
		t.Fatalf("LatestOpenByCreator failed: %v", err)
	}
	if got.ID != newer.ID {
		t.Errorf("Expected the newest open giveaway, got source post %s", got.SourcePostID)
	}
}

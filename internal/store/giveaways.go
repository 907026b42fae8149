package store

import (
	"fmt"
	"time"

	"solmentions/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GiveawayStore owns giveaways and their participants. The Completed flag
// follows the same conditional-update discipline as the post flag: claiming a
// draw is an atomic flip, not a read-then-write.
type GiveawayStore struct {
	db *gorm.DB
}

// NewGiveawayStore creates a giveaway store
func NewGiveawayStore(db *gorm.DB) *GiveawayStore {
	return &GiveawayStore{db: db}
}

// Create inserts a giveaway. A second giveaway for the same source post is a
// no-op; the returned bool reports whether a row was actually created.
func (s *GiveawayStore) Create(g *models.Giveaway) (bool, error) {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_post_id"}},
		DoNothing: true,
	}).Create(g)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create giveaway for post %s: %w", g.SourcePostID, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ByID fetches a giveaway with its participants preloaded.
func (s *GiveawayStore) ByID(id uuid.UUID) (*models.Giveaway, error) {
	var g models.Giveaway
	if err := s.db.Preload("Participants").First(&g, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// LatestOpenByCreator returns the most recent incomplete giveaway created by
// the given handle. Used to resolve "draw the winners" replies.
func (s *GiveawayStore) LatestOpenByCreator(handle string) (*models.Giveaway, error) {
	var g models.Giveaway
	err := s.db.Where("creator_handle = ? AND completed = ?", handle, false).
		Order("created_at DESC").
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// AddParticipant appends a participant. At most one row exists per
// (giveaway_id, username); a duplicate entry is a no-op and returns false.
func (s *GiveawayStore) AddParticipant(p *models.Participant) (bool, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "giveaway_id"}, {Name: "username"}},
		DoNothing: true,
	}).Create(p)
	if result.Error != nil {
		return false, fmt.Errorf("failed to add participant %s: %w", p.Username, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Participants returns all entries for a giveaway in insertion order.
func (s *GiveawayStore) Participants(giveawayID uuid.UUID) ([]models.Participant, error) {
	var parts []models.Participant
	err := s.db.Where("giveaway_id = ?", giveawayID).
		Order("created_at ASC").
		Find(&parts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load participants for %s: %w", giveawayID, err)
	}
	return parts, nil
}

// DueForDraw returns incomplete giveaways whose deadline has passed or whose
// participant target has been reached.
func (s *GiveawayStore) DueForDraw(now time.Time) ([]models.Giveaway, error) {
	var gs []models.Giveaway
	err := s.db.Where(
		"completed = ? AND ((deadline IS NOT NULL AND deadline <= ?) OR "+
			"(participant_target > 0 AND (SELECT COUNT(*) FROM participants WHERE participants.giveaway_id = giveaways.id) >= participant_target))",
		false, now,
	).Order("created_at ASC").Find(&gs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query due giveaways: %w", err)
	}
	return gs, nil
}

// ClaimDraw flips Completed to true, conditioned on it still being false.
// Whoever gets true back owns the draw; everyone else backs off. This is what
// makes a second draw attempt a no-op.
func (s *GiveawayStore) ClaimDraw(id uuid.UUID) (bool, error) {
	now := time.Now()
	result := s.db.Model(&models.Giveaway{}).
		Where("id = ? AND completed = ?", id, false).
		Updates(map[string]interface{}{
			"completed": true,
			"drawn_at":  &now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim draw for %s: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// RecordDrawResult stores the winners, the per-winner share and any payout
// transaction IDs after a completed draw.
func (s *GiveawayStore) RecordDrawResult(id uuid.UUID, winners []string, share float64, txIDs []string) error {
	result := s.db.Model(&models.Giveaway{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"winners":       pqArray(winners),
			"winner_share":  share,
			"payout_tx_ids": pqArray(txIDs),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to record draw result for %s: %w", id, result.Error)
	}
	return nil
}

// pqArray normalizes a nil slice so the column is written as an empty array
// rather than NULL.
func pqArray(ss []string) pq.StringArray {
	if ss == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(ss)
}

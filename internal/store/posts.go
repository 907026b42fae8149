// Package store wraps all database access for the pipeline. The conditional
// update in MarkPerformed is the single cross-process coordination point the
// system relies on.
package store

import (
	"fmt"
	"time"

	"solmentions/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostStore owns the posts table and every ActionPerformed transition.
// Executors never write the flag themselves; they return a result and the
// dispatcher asks the store to record it.
type PostStore struct {
	db *gorm.DB
}

// NewPostStore creates a post store
func NewPostStore(db *gorm.DB) *PostStore {
	return &PostStore{db: db}
}

// Insert stores a newly observed post. Inserting the same post ID twice is a
// no-op, not an error, so ingestion may observe a post more than once.
func (s *PostStore) Insert(post *models.Post) error {
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(post)
	if result.Error != nil {
		return fmt.Errorf("failed to insert post %s: %w", post.ID, result.Error)
	}
	return nil
}

// FetchUnprocessed returns posts that have not been evaluated yet, oldest
// first so a backlog drains in arrival order. Posts marked not-applicable are
// excluded; posts whose executor failed stay eligible.
func (s *PostStore) FetchUnprocessed(limit int) ([]models.Post, error) {
	var posts []models.Post
	q := s.db.Where("action_performed IS NULL").Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch unprocessed posts: %w", err)
	}
	return posts, nil
}

// MarkPerformed flips ActionPerformed to true, conditioned on it not already
// being true. Returns whether the transition happened; false means another
// dispatch cycle won the race. The condition lives in the UPDATE itself, never
// in a separate read.
func (s *PostStore) MarkPerformed(postID, actionKind, detail string) (bool, error) {
	result := s.db.Model(&models.Post{}).
		Where("id = ? AND action_performed IS NOT TRUE", postID).
		Updates(map[string]interface{}{
			"action_performed": true,
			"action_kind":      actionKind,
			"action_detail":    detail,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark post %s performed: %w", postID, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// MarkNotApplicable records that a post will never carry an action (e.g. it
// is neither a reply nor a direct mention). Performed posts are left alone.
func (s *PostStore) MarkNotApplicable(postID, reason string) (bool, error) {
	result := s.db.Model(&models.Post{}).
		Where("id = ? AND action_performed IS NOT TRUE", postID).
		Updates(map[string]interface{}{
			"action_performed": false,
			"action_detail":    reason,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark post %s not applicable: %w", postID, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// RecordAttempt bumps the failure bookkeeping for a post whose executor
// errored. The post stays eligible for the next batch.
func (s *PostStore) RecordAttempt(postID, errMsg string) error {
	now := time.Now()
	result := s.db.Model(&models.Post{}).
		Where("id = ?", postID).
		Updates(map[string]interface{}{
			"attempt_count":   gorm.Expr("attempt_count + 1"),
			"last_error":      errMsg,
			"last_attempt_at": &now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to record attempt for post %s: %w", postID, result.Error)
	}
	return nil
}

// ByID fetches one post.
func (s *PostStore) ByID(postID string) (*models.Post, error) {
	var post models.Post
	if err := s.db.First(&post, "id = ?", postID).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

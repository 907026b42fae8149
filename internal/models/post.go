package models

import (
	"time"
)

// Post represents a single observed social-media message (original or reply).
// Rows are created by ingestion on first sighting and never deleted; the
// pipeline only flips ActionPerformed.
type Post struct {
	ID      string `json:"id" db:"id" gorm:"primaryKey"` // platform-assigned ID (string of digits)
	Author  string `json:"author" db:"author" gorm:"index"`
	Content string `json:"content" db:"content" gorm:"type:text"`
	Link    string `json:"link" db:"link"`

	// Classification flags set at ingestion
	IsReply         bool `json:"is_reply" db:"is_reply" gorm:"default:false"`
	IsDirectMention bool `json:"is_direct_mention" db:"is_direct_mention" gorm:"default:false"`

	// ActionPerformed is the sole idempotency flag, tri-state:
	// nil = not yet evaluated, true = action performed, false = not applicable.
	// Only the store's conditional update may set it to true.
	ActionPerformed *bool `json:"action_performed" db:"action_performed" gorm:"index"`

	// Outcome bookkeeping, written alongside the flag
	ActionKind   string `json:"action_kind" db:"action_kind"`
	ActionDetail string `json:"action_detail" db:"action_detail" gorm:"type:text"`

	// Attempt tracking for posts whose executor failed
	AttemptCount  int        `json:"attempt_count" db:"attempt_count" gorm:"default:0"`
	LastError     string     `json:"last_error" db:"last_error" gorm:"type:text"`
	LastAttemptAt *time.Time `json:"last_attempt_at" db:"last_attempt_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the Post model
func (Post) TableName() string {
	return "posts"
}

// Performed reports whether the post's action has already run.
func (p *Post) Performed() bool {
	return p.ActionPerformed != nil && *p.ActionPerformed
}

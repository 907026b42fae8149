package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Giveaway represents a prize-distribution event derived from a post.
// Participants accumulate via a separate ingestion path; Completed flips
// true exactly once when the draw runs.
type Giveaway struct {
	ID            uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid"`
	SourcePostID  string    `json:"source_post_id" db:"source_post_id" gorm:"uniqueIndex;not null"`
	CreatorHandle string    `json:"creator_handle" db:"creator_handle" gorm:"index"`

	ParticipantTarget int        `json:"participant_target" db:"participant_target"`
	PrizeAmount       float64    `json:"prize_amount" db:"prize_amount"`
	TokenType         string     `json:"token_type" db:"token_type"`
	Deadline          *time.Time `json:"deadline" db:"deadline"`

	Completed bool       `json:"completed" db:"completed" gorm:"default:false;index"`
	DrawnAt   *time.Time `json:"drawn_at" db:"drawn_at"`

	// Draw outcome
	Winners     pq.StringArray `json:"winners" db:"winners" gorm:"type:text[]"`
	WinnerShare float64        `json:"winner_share" db:"winner_share"`
	PayoutTxIDs pq.StringArray `json:"payout_tx_ids" db:"payout_tx_ids" gorm:"type:text[]"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Participants []Participant `json:"participants,omitempty" gorm:"foreignKey:GiveawayID"`
}

// TableName sets the table name for the Giveaway model
func (Giveaway) TableName() string {
	return "giveaways"
}

// Participant links a giveaway to a candidate winner. At most one row may
// exist per (giveaway_id, username).
type Participant struct {
	ID            uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid"`
	GiveawayID    uuid.UUID `json:"giveaway_id" db:"giveaway_id" gorm:"type:uuid;uniqueIndex:idx_giveaway_username,priority:1;not null"`
	Username      string    `json:"username" db:"username" gorm:"uniqueIndex:idx_giveaway_username,priority:2;not null"`
	WalletAddress string    `json:"wallet_address" db:"wallet_address"`
	SourceLink    string    `json:"source_link" db:"source_link"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for the Participant model
func (Participant) TableName() string {
	return "participants"
}

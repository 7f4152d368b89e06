package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chat request statuses.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestDeclined = "declined"
)

// ChatRequest asks a previously matched counterpart to reopen a chat
// without going through the queue. At most one pending request may exist
// per match at a time.
type ChatRequest struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	MatchID     string     `gorm:"index" json:"match_id"`
	FromUserID  string     `json:"from_user_id"`
	ToUserID    string     `gorm:"index" json:"to_user_id"`
	Status      string     `gorm:"index" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// BeforeCreate assigns a fresh UUID when the ID is not set.
func (r *ChatRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Match is the durable record of a mutual-continue outcome. It is
// immutable once written except for SessionID, which is repointed when a
// chat request reopens a session between the same pair.
type Match struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserAID   string    `gorm:"index:idx_match_user_a" json:"user_a_id"`
	UserBID   string    `gorm:"index:idx_match_user_b" json:"user_b_id"`
	SessionID string    `gorm:"index" json:"session_id"`
	MatchedAt time.Time `json:"matched_at"`
}

// BeforeCreate assigns a fresh UUID when the ID is not set.
func (m *Match) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// HasUser reports whether userID is one of the matched pair.
func (m *Match) HasUser(userID string) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// OtherUser returns the counterpart of userID, or false if userID is not
// part of this match.
func (m *Match) OtherUser(userID string) (string, bool) {
	switch userID {
	case m.UserAID:
		return m.UserBID, true
	case m.UserBID:
		return m.UserAID, true
	}
	return "", false
}

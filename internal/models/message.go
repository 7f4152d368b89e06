package models

import "gorm.io/gorm"

// Message is one chat line inside a session. The embedded gorm.Model
// provides the ID and CreatedAt used for ordering. Messages are
// hard-deleted (not soft-deleted) when their session ends, so DeletedAt
// is never populated in practice.
type Message struct {
	gorm.Model

	SessionID string `gorm:"type:uuid;not null;index:idx_session_msg" json:"session_id"`
	SenderID  string `gorm:"type:text;not null" json:"sender_id"`
	Content   string `gorm:"type:text;not null" json:"content"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session phases.
const (
	PhaseSpeedDating = "speed_dating"
	PhaseExtended    = "extended"
)

// Session statuses. StatusEnded is terminal; the row is kept for the
// match ledger but never reactivated.
const (
	StatusActive        = "active"
	StatusWaitingReveal = "waiting_reveal"
	StatusEnded         = "ended"
)

// ChatSession is one pairing between two users. The pair is conceptually
// unordered; UserAID/UserBID is just storage order, so every lookup has
// to check both slots (see HasUser / OtherUser).
type ChatSession struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	UserAID   string     `gorm:"index:idx_session_user_a" json:"user_a_id"`
	UserBID   string     `gorm:"index:idx_session_user_b" json:"user_b_id"`
	Phase     string     `json:"phase"`
	Status    string     `gorm:"index" json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	// Per-participant continue decisions, nil until submitted.
	DecisionA *bool `json:"-"`
	DecisionB *bool `json:"-"`

	// Per-participant skip-to-reveal votes.
	SkipA bool `json:"-"`
	SkipB bool `json:"-"`
}

// BeforeCreate assigns a fresh UUID when the ID is not set.
func (s *ChatSession) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return
}

// HasUser reports whether userID occupies either participant slot.
func (s *ChatSession) HasUser(userID string) bool {
	return s.UserAID == userID || s.UserBID == userID
}

// OtherUser returns the counterpart of userID, or false if userID is not
// a participant.
func (s *ChatSession) OtherUser(userID string) (string, bool) {
	switch userID {
	case s.UserAID:
		return s.UserBID, true
	case s.UserBID:
		return s.UserAID, true
	}
	return "", false
}

// DecisionFor returns the continue-decision slot for userID (nil when
// not yet submitted or userID is not a participant).
func (s *ChatSession) DecisionFor(userID string) *bool {
	switch userID {
	case s.UserAID:
		return s.DecisionA
	case s.UserBID:
		return s.DecisionB
	}
	return nil
}

// SetDecision records userID's continue decision. Returns false when
// userID is not a participant.
func (s *ChatSession) SetDecision(userID string, wantsToContinue bool) bool {
	switch userID {
	case s.UserAID:
		s.DecisionA = &wantsToContinue
	case s.UserBID:
		s.DecisionB = &wantsToContinue
	default:
		return false
	}
	return true
}

// BothDecided reports whether both decision slots are filled.
func (s *ChatSession) BothDecided() bool {
	return s.DecisionA != nil && s.DecisionB != nil
}

// BothAgreed reports whether both participants decided to continue.
func (s *ChatSession) BothAgreed() bool {
	return s.DecisionA != nil && *s.DecisionA && s.DecisionB != nil && *s.DecisionB
}

// SetSkip records userID's skip vote. Voting twice is harmless (the slot
// is already true). Returns false when userID is not a participant.
func (s *ChatSession) SetSkip(userID string) bool {
	switch userID {
	case s.UserAID:
		s.SkipA = true
	case s.UserBID:
		s.SkipB = true
	default:
		return false
	}
	return true
}

// SkipCount returns how many participants have voted to skip (0-2).
func (s *ChatSession) SkipCount() int {
	n := 0
	if s.SkipA {
		n++
	}
	if s.SkipB {
		n++
	}
	return n
}

// Expired reports whether the speed-dating deadline has passed. Sessions
// without a deadline never expire.
func (s *ChatSession) Expired(now time.Time) bool {
	return s.EndsAt != nil && now.After(*s.EndsAt)
}

package dating

import (
	"time"

	"speeddate/backend/internal/models"
	"speeddate/backend/internal/storage"
	"speeddate/backend/pkg/apperr"
)

// MatchService reads the durable ledger of completed pairings.
type MatchService struct {
	Storage storage.Storage
}

// NewMatchService creates a new match service.
func NewMatchService(s storage.Storage) *MatchService {
	return &MatchService{Storage: s}
}

// MatchEntry is one ledger row enriched for the presentation layer.
type MatchEntry struct {
	MatchID           string         `json:"match_id"`
	MatchedAt         time.Time      `json:"matched_at"`
	SessionID         string         `json:"session_id"`
	HasActiveChat     bool           `json:"has_active_chat"`
	HasPendingRequest bool           `json:"has_pending_request"`
	IsRequestSender   bool           `json:"is_request_sender"`
	Counterpart       models.Profile `json:"counterpart"`
}

// List returns every match the caller is part of, most recent first,
// each with the counterpart's profile snapshot, whether the linked
// session is still active, and the pending-request state. Matches whose
// counterpart can no longer be resolved (deleted account) are dropped.
func (m *MatchService) List(userID string) ([]MatchEntry, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated("caller identity is not resolved")
	}

	matches, err := m.Storage.ListMatchesForUser(userID)
	if err != nil {
		return nil, err
	}

	entries := make([]MatchEntry, 0, len(matches))
	for i := range matches {
		match := &matches[i]

		otherID, ok := match.OtherUser(userID)
		if !ok {
			continue
		}
		other, err := m.Storage.GetUser(otherID)
		if err != nil {
			return nil, err
		}
		if other == nil {
			continue
		}

		session, err := m.Storage.GetSession(match.SessionID)
		if err != nil {
			return nil, err
		}
		pending, err := m.Storage.GetPendingRequestForMatch(match.ID)
		if err != nil {
			return nil, err
		}

		entry := MatchEntry{
			MatchID:     match.ID,
			MatchedAt:   match.MatchedAt,
			SessionID:   match.SessionID,
			Counterpart: other.Profile(),
		}
		if session != nil && session.Status == models.StatusActive {
			entry.HasActiveChat = true
		}
		if pending != nil {
			entry.HasPendingRequest = true
			entry.IsRequestSender = pending.FromUserID == userID
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

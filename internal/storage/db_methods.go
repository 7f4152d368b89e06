package storage

import (
	"errors"
	"log"
	"time"

	"speeddate/backend/internal/models"

	"gorm.io/gorm"
)

// GetSession loads a session by ID; nil without error when missing.
func (s *Service) GetSession(sessionID string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := s.DB.Where("id = ?", sessionID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to get session %s: %v", sessionID, err)
		return nil, err
	}
	return &session, nil
}

// SaveSession upserts the session row.
func (s *Service) SaveSession(session *models.ChatSession) error {
	return s.DB.Save(session).Error
}

// GetActiveSessionForUser finds the session with status=active in which
// the user occupies either participant slot. A user holds at most one.
func (s *Service) GetActiveSessionForUser(userID string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := s.DB.Where("status = ?", models.StatusActive).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to find active session for user %s: %v", userID, err)
		return nil, err
	}
	return &session, nil
}

// GetActiveSessionForPair finds the active session between two users.
// The pair is stored unordered, so both slot assignments are checked.
func (s *Service) GetActiveSessionForPair(userA, userB string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := s.DB.Where("status = ?", models.StatusActive).
		Where("(user_a_id = ? AND user_b_id = ?) OR (user_a_id = ? AND user_b_id = ?)",
			userA, userB, userB, userA).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListExpiredSpeedDating returns active speed-dating sessions whose
// deadline has already passed, for the expiry sweeper.
func (s *Service) ListExpiredSpeedDating(now time.Time) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	err := s.DB.Where("status = ? AND phase = ? AND ends_at IS NOT NULL AND ends_at < ?",
		models.StatusActive, models.PhaseSpeedDating, now).
		Find(&sessions).Error
	if err != nil {
		log.Printf("ERROR: Failed to list expired sessions: %v", err)
		return nil, err
	}
	return sessions, nil
}

// SaveMatch inserts or updates a match record.
func (s *Service) SaveMatch(match *models.Match) error {
	return s.DB.Save(match).Error
}

// GetMatch loads a match by ID; nil without error when missing.
func (s *Service) GetMatch(matchID string) (*models.Match, error) {
	var match models.Match
	err := s.DB.Where("id = ?", matchID).First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// ListMatchesForUser returns every match the user is part of, most
// recent first.
func (s *Service) ListMatchesForUser(userID string) ([]models.Match, error) {
	var matches []models.Match
	err := s.DB.Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("matched_at desc").
		Find(&matches).Error
	if err != nil {
		log.Printf("ERROR: Failed to list matches for user %s: %v", userID, err)
		return nil, err
	}
	return matches, nil
}

// SaveRequest inserts or updates a chat request.
func (s *Service) SaveRequest(req *models.ChatRequest) error {
	return s.DB.Save(req).Error
}

// GetRequest loads a chat request by ID; nil without error when missing.
func (s *Service) GetRequest(requestID string) (*models.ChatRequest, error) {
	var req models.ChatRequest
	err := s.DB.Where("id = ?", requestID).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetPendingRequestForMatch returns the pending request for a match, if
// any. The protocol allows at most one at a time.
func (s *Service) GetPendingRequestForMatch(matchID string) (*models.ChatRequest, error) {
	var req models.ChatRequest
	err := s.DB.Where("match_id = ? AND status = ?", matchID, models.RequestPending).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListPendingRequestsForUser returns pending requests addressed to the
// user, most recent first.
func (s *Service) ListPendingRequestsForUser(userID string) ([]models.ChatRequest, error) {
	var reqs []models.ChatRequest
	err := s.DB.Where("to_user_id = ? AND status = ?", userID, models.RequestPending).
		Order("created_at desc").
		Find(&reqs).Error
	if err != nil {
		log.Printf("ERROR: Failed to list pending requests for user %s: %v", userID, err)
		return nil, err
	}
	return reqs, nil
}

// SaveMessage persists one chat message.
func (s *Service) SaveMessage(msg *models.Message) error {
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for session %s: %v", msg.SessionID, err)
		return err
	}
	return nil
}

// ListRecentMessages returns at most limit of the newest messages for a
// session, in ascending creation order.
func (s *Service) ListRecentMessages(sessionID string, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := s.DB.Where("session_id = ?", sessionID).
		Order("created_at desc").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		log.Printf("ERROR: Failed to get messages for session %s: %v", sessionID, err)
		return nil, err
	}
	// Fetched newest-first for the LIMIT; flip back to chat order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// PurgeMessages irrevocably deletes every message of a session. Unscoped
// bypasses GORM's soft delete so nothing survives for recovery.
func (s *Service) PurgeMessages(sessionID string) error {
	return s.DB.Unscoped().
		Where("session_id = ?", sessionID).
		Delete(&models.Message{}).Error
}

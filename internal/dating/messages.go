package dating

import (
	"log"
	"strings"
	"unicode/utf8"

	"speeddate/backend/internal/config"
	"speeddate/backend/internal/models"
	"speeddate/backend/internal/storage"
	"speeddate/backend/pkg/apperr"
)

// MessageService is the per-session message store: bounded sends with a
// rolling rate limit, a bounded read window and the ephemeral typing
// signal.
type MessageService struct {
	Storage storage.Storage
}

// NewMessageService creates a new message service.
func NewMessageService(s storage.Storage) *MessageService {
	return &MessageService{Storage: s}
}

// MessageList is the read surface of a session: a bounded window of the
// newest messages, the session itself, the counterpart profile (only
// after reveal) and the caller's own ID for ownership comparisons.
type MessageList struct {
	Messages    []models.Message    `json:"messages"`
	Session     *models.ChatSession `json:"session"`
	Counterpart *models.Profile     `json:"counterpart,omitempty"`
	CallerID    string              `json:"caller_id"`
}

// Send stores one message in an active session the caller participates
// in. Content is bounded and empty messages are rejected; sends beyond
// the rolling window limit fail with RATE_LIMITED.
func (m *MessageService) Send(sessionID, userID, content string) error {
	if userID == "" {
		return apperr.Unauthenticated("caller identity is not resolved")
	}
	if strings.TrimSpace(content) == "" {
		return apperr.InvalidArg("message content is empty")
	}
	// The bound is in characters, so multibyte text is not penalized.
	if utf8.RuneCountInString(content) > config.MaxMessageLength {
		return apperr.InvalidArg("message content exceeds the maximum length")
	}

	var event models.Event

	err := m.Storage.Transaction(func(tx storage.Storage) error {
		session, err := tx.GetSession(sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return apperr.NotFound("session not found")
		}
		if !session.HasUser(userID) {
			return apperr.Unauthorized("user is not a participant of this session")
		}
		if session.Status != models.StatusActive {
			return apperr.InvalidPhase("session is not active")
		}

		allowed, err := tx.AllowMessage(userID, config.RateLimitMaxMessages, config.RateLimitWindow)
		if err != nil {
			return err
		}
		if !allowed {
			return apperr.RateLimited("too many messages, slow down")
		}

		msg := &models.Message{
			SessionID: sessionID,
			SenderID:  userID,
			Content:   content,
		}
		if err := tx.SaveMessage(msg); err != nil {
			return err
		}
		event = models.Event{
			Kind:      models.EventMessageSent,
			SessionID: sessionID,
			SenderID:  userID,
			UserIDs:   participants(session),
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := m.Storage.PublishEvent(event); err != nil {
		log.Printf("ERROR: Failed to publish message event for session %s: %v", sessionID, err)
	}
	return nil
}

// List returns the newest messages of a session the caller participates
// in. Ended sessions resolve to an empty window because their messages
// were purged; the counterpart profile is attached only once the
// session has reached the extended phase.
func (m *MessageService) List(sessionID, userID string) (MessageList, error) {
	if userID == "" {
		return MessageList{}, apperr.Unauthenticated("caller identity is not resolved")
	}

	session, err := m.Storage.GetSession(sessionID)
	if err != nil {
		return MessageList{}, err
	}
	if session == nil {
		return MessageList{}, apperr.NotFound("session not found")
	}
	if !session.HasUser(userID) {
		return MessageList{}, apperr.Unauthorized("user is not a participant of this session")
	}

	messages, err := m.Storage.ListRecentMessages(sessionID, config.MessageWindowSize)
	if err != nil {
		return MessageList{}, err
	}

	list := MessageList{
		Messages: messages,
		Session:  session,
		CallerID: userID,
	}

	if session.Phase == models.PhaseExtended {
		otherID, _ := session.OtherUser(userID)
		other, err := m.Storage.GetUser(otherID)
		if err != nil {
			return MessageList{}, err
		}
		if other != nil {
			profile := other.Profile()
			list.Counterpart = &profile
		}
	}
	return list, nil
}

// Typing reports which participants other than the caller currently
// hold a live typing signal in the session.
func (m *MessageService) Typing(sessionID, userID string) ([]string, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated("caller identity is not resolved")
	}

	session, err := m.Storage.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.NotFound("session not found")
	}
	if !session.HasUser(userID) {
		return nil, apperr.Unauthorized("user is not a participant of this session")
	}

	users, err := m.Storage.TypingUsers(sessionID)
	if err != nil {
		return nil, err
	}
	typing := make([]string, 0, len(users))
	for _, id := range users {
		if id != userID {
			typing = append(typing, id)
		}
	}
	return typing, nil
}

// SetTyping publishes the caller's ephemeral typing signal for the
// session. The signal expires on its own after a short TTL.
func (m *MessageService) SetTyping(sessionID, userID string) error {
	if userID == "" {
		return apperr.Unauthenticated("caller identity is not resolved")
	}

	session, err := m.Storage.GetSession(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return apperr.NotFound("session not found")
	}
	if !session.HasUser(userID) {
		return apperr.Unauthorized("user is not a participant of this session")
	}
	if session.Status != models.StatusActive {
		return apperr.InvalidPhase("session is not active")
	}

	if err := m.Storage.SetTyping(sessionID, userID, config.TypingTTL); err != nil {
		return err
	}

	otherID, _ := session.OtherUser(userID)
	if err := m.Storage.PublishEvent(models.Event{
		Kind:      models.EventTyping,
		SessionID: sessionID,
		SenderID:  userID,
		UserIDs:   []string{otherID},
	}); err != nil {
		log.Printf("ERROR: Failed to publish typing event for session %s: %v", sessionID, err)
	}
	return nil
}

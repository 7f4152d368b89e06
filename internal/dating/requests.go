package dating

import (
	"log"
	"time"

	"speeddate/backend/internal/models"
	"speeddate/backend/internal/storage"
	"speeddate/backend/pkg/apperr"
)

// RequestService lets two previously matched users reopen a chat
// without going back through the queue.
type RequestService struct {
	Storage storage.Storage
}

// NewRequestService creates a new chat-request service.
func NewRequestService(s storage.Storage) *RequestService {
	return &RequestService{Storage: s}
}

// PendingRequest is an incoming request enriched with the sender's
// profile.
type PendingRequest struct {
	RequestID string         `json:"request_id"`
	MatchID   string         `json:"match_id"`
	CreatedAt time.Time      `json:"created_at"`
	Sender    models.Profile `json:"sender"`
}

// Send creates a pending chat request on a match. A match carries at
// most one pending request at a time, and no request may be sent while
// the pair already has an active session.
func (r *RequestService) Send(matchID, userID string) (*models.ChatRequest, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated("caller identity is not resolved")
	}

	var created *models.ChatRequest

	err := r.Storage.Transaction(func(tx storage.Storage) error {
		match, err := tx.GetMatch(matchID)
		if err != nil {
			return err
		}
		if match == nil {
			return apperr.NotFound("match not found")
		}
		toUserID, ok := match.OtherUser(userID)
		if !ok {
			return apperr.Unauthorized("user is not a participant of this match")
		}

		pending, err := tx.GetPendingRequestForMatch(matchID)
		if err != nil {
			return err
		}
		if pending != nil {
			return apperr.RequestPending("a request for this match is already pending")
		}

		active, err := tx.GetActiveSessionForPair(match.UserAID, match.UserBID)
		if err != nil {
			return err
		}
		if active != nil {
			return apperr.AlreadyInActiveSession("an active chat between this pair already exists")
		}

		req := &models.ChatRequest{
			MatchID:    matchID,
			FromUserID: userID,
			ToUserID:   toUserID,
			Status:     models.RequestPending,
			CreatedAt:  time.Now(),
		}
		if err := tx.SaveRequest(req); err != nil {
			return err
		}
		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := r.Storage.PublishEvent(models.Event{
		Kind:      models.EventRequestCreated,
		MatchID:   created.MatchID,
		RequestID: created.ID,
		SenderID:  created.FromUserID,
		UserIDs:   []string{created.ToUserID},
	}); err != nil {
		log.Printf("ERROR: Failed to publish request event %s: %v", created.ID, err)
	}
	return created, nil
}

// ListPending returns pending requests addressed to the caller, most
// recent first, with the sender's profile resolved. Requests whose
// sender cannot be resolved are dropped.
func (r *RequestService) ListPending(userID string) ([]PendingRequest, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated("caller identity is not resolved")
	}

	reqs, err := r.Storage.ListPendingRequestsForUser(userID)
	if err != nil {
		return nil, err
	}

	pending := make([]PendingRequest, 0, len(reqs))
	for i := range reqs {
		req := &reqs[i]
		sender, err := r.Storage.GetUser(req.FromUserID)
		if err != nil {
			return nil, err
		}
		if sender == nil {
			continue
		}
		pending = append(pending, PendingRequest{
			RequestID: req.ID,
			MatchID:   req.MatchID,
			CreatedAt: req.CreatedAt,
			Sender:    sender.Profile(),
		})
	}
	return pending, nil
}

// Accept resolves a pending request addressed to the caller: a new
// session opens directly in the extended phase with no timer, the
// parent match is repointed at it, and the request is marked accepted.
// Returns the new session ID.
func (r *RequestService) Accept(requestID, userID string) (string, error) {
	if userID == "" {
		return "", apperr.Unauthenticated("caller identity is not resolved")
	}

	var sessionID string
	var participantIDs []string

	err := r.Storage.Transaction(func(tx storage.Storage) error {
		req, err := tx.GetRequest(requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return apperr.NotFound("request not found")
		}
		if req.ToUserID != userID {
			return apperr.Unauthorized("only the addressee may accept a request")
		}
		if req.Status != models.RequestPending {
			return apperr.InvalidPhase("request has already been resolved")
		}

		match, err := tx.GetMatch(req.MatchID)
		if err != nil {
			return err
		}
		if match == nil {
			return apperr.NotFound("match not found")
		}

		// Either participant may be mid-chat with somebody else; a user
		// holds at most one active session, so check both individually.
		for _, participantID := range []string{match.UserAID, match.UserBID} {
			active, err := tx.GetActiveSessionForUser(participantID)
			if err != nil {
				return err
			}
			if active != nil {
				return apperr.AlreadyInActiveSession("a participant already has an active chat")
			}
		}

		now := time.Now()
		session := &models.ChatSession{
			UserAID:   match.UserAID,
			UserBID:   match.UserBID,
			Phase:     models.PhaseExtended,
			Status:    models.StatusActive,
			StartedAt: now,
		}
		if err := tx.SaveSession(session); err != nil {
			return err
		}

		match.SessionID = session.ID
		if err := tx.SaveMatch(match); err != nil {
			return err
		}

		req.Status = models.RequestAccepted
		req.RespondedAt = &now
		if err := tx.SaveRequest(req); err != nil {
			return err
		}

		sessionID = session.ID
		participantIDs = participants(session)
		return nil
	})
	if err != nil {
		return "", err
	}

	if err := r.Storage.PublishEvent(models.Event{
		Kind:      models.EventRequestResolved,
		RequestID: requestID,
		SessionID: sessionID,
		UserIDs:   participantIDs,
	}); err != nil {
		log.Printf("ERROR: Failed to publish accept event %s: %v", requestID, err)
	}
	return sessionID, nil
}

// Decline resolves a pending request addressed to the caller without
// opening a session.
func (r *RequestService) Decline(requestID, userID string) error {
	if userID == "" {
		return apperr.Unauthenticated("caller identity is not resolved")
	}

	var fromUserID string

	err := r.Storage.Transaction(func(tx storage.Storage) error {
		req, err := tx.GetRequest(requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return apperr.NotFound("request not found")
		}
		if req.ToUserID != userID {
			return apperr.Unauthorized("only the addressee may decline a request")
		}
		if req.Status != models.RequestPending {
			return apperr.InvalidPhase("request has already been resolved")
		}

		now := time.Now()
		req.Status = models.RequestDeclined
		req.RespondedAt = &now
		if err := tx.SaveRequest(req); err != nil {
			return err
		}
		fromUserID = req.FromUserID
		return nil
	})
	if err != nil {
		return err
	}

	if err := r.Storage.PublishEvent(models.Event{
		Kind:      models.EventRequestResolved,
		RequestID: requestID,
		UserIDs:   []string{fromUserID, userID},
	}); err != nil {
		log.Printf("ERROR: Failed to publish decline event %s: %v", requestID, err)
	}
	return nil
}

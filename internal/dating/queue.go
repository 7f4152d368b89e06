// Package dating is the matchmaking and session-lifecycle core: queue
// membership and pairing, the chat-session state machine, the match
// ledger, the chat-request protocol and the message store. Every
// multi-step mutation runs inside a storage transaction; the package
// holds no in-process state between calls.
package dating

import (
	"log"
	"time"

	"speeddate/backend/internal/config"
	"speeddate/backend/internal/models"
	"speeddate/backend/internal/storage"
	"speeddate/backend/pkg/apperr"
)

// QueueService admits users to and removes them from the waiting pool
// and performs pairing.
type QueueService struct {
	Storage storage.Storage
}

// NewQueueService creates a new queue service.
func NewQueueService(s storage.Storage) *QueueService {
	return &QueueService{Storage: s}
}

// JoinResult is the outcome of a join call. Matched=false covers both
// "now waiting" and the race-induced re-queue; neither is an error.
type JoinResult struct {
	Matched   bool   `json:"matched"`
	SessionID string `json:"session_id,omitempty"`
}

// StatusResult mirrors the queue state for the presentation layer. A
// missing directory record yields the zero value with UserExists=false
// instead of an error, so the client can tell "still syncing" apart
// from a real failure.
type StatusResult struct {
	UserExists bool   `json:"user_exists"`
	InQueue    bool   `json:"in_queue"`
	Matched    bool   `json:"matched"`
	SessionID  string `json:"session_id,omitempty"`
}

// Join puts the caller into the waiting pool or pairs them with a
// waiting candidate using the claim-first, verify-second protocol: the
// selected candidate's queue flag is cleared before anything else, so a
// third concurrent joiner can no longer take them; only then is the
// candidate checked for an active session acquired between selection
// and claim. Losing that verification re-queues the caller, never the
// candidate (the candidate is already correctly paired elsewhere).
func (q *QueueService) Join(userID string) (JoinResult, error) {
	if userID == "" {
		return JoinResult{}, apperr.Unauthenticated("caller identity is not resolved")
	}

	var result JoinResult
	var partnerID string

	err := q.Storage.Transaction(func(tx storage.Storage) error {
		user, err := tx.GetUser(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return apperr.NotFound("user not found")
		}

		active, err := tx.GetActiveSessionForUser(userID)
		if err != nil {
			return err
		}
		if active != nil {
			return apperr.AlreadyInActiveSession("user already has an active chat")
		}

		candidate, err := tx.FindQueueCandidate(userID)
		if err != nil {
			return err
		}
		if candidate == nil {
			if err := tx.SetQueueFlag(userID, true); err != nil {
				return err
			}
			result = JoinResult{Matched: false}
			return nil
		}

		// Claim first: take the candidate out of the queue before any
		// further validation.
		claimed, err := tx.ClaimQueuedUser(candidate.ID)
		if err != nil {
			return err
		}

		// Verify second: a concurrent joiner may have completed a full
		// pairing with this candidate between selection and claim.
		if claimed {
			candidateActive, err := tx.GetActiveSessionForUser(candidate.ID)
			if err != nil {
				return err
			}
			if candidateActive != nil {
				claimed = false
			}
		}
		if !claimed {
			// Lost the race. The candidate stays out of the queue; the
			// caller goes back in and waits.
			if err := tx.SetQueueFlag(userID, true); err != nil {
				return err
			}
			result = JoinResult{Matched: false}
			return nil
		}

		now := time.Now()
		endsAt := now.Add(config.SpeedDatingDuration)
		session := &models.ChatSession{
			UserAID:   candidate.ID,
			UserBID:   userID,
			Phase:     models.PhaseSpeedDating,
			Status:    models.StatusActive,
			StartedAt: now,
			EndsAt:    &endsAt,
		}
		if err := tx.SaveSession(session); err != nil {
			return err
		}
		// The caller may carry a stale queue flag from an earlier wait.
		if err := tx.SetQueueFlag(userID, false); err != nil {
			return err
		}

		partnerID = candidate.ID
		result = JoinResult{Matched: true, SessionID: session.ID}
		return nil
	})
	if err != nil {
		return JoinResult{}, err
	}

	if result.Matched {
		log.Printf("Match found: %s and %s in session %s", userID, partnerID, result.SessionID)
		q.Storage.PublishEvent(models.Event{
			Kind:      models.EventQueueMatched,
			SessionID: result.SessionID,
			UserIDs:   []string{userID, partnerID},
		})
	}
	return result, nil
}

// Leave idempotently removes the caller from the waiting pool.
func (q *QueueService) Leave(userID string) error {
	if userID == "" {
		return apperr.Unauthenticated("caller identity is not resolved")
	}
	return q.Storage.SetQueueFlag(userID, false)
}

// Status reports the caller's queue and pairing state.
func (q *QueueService) Status(userID string) (StatusResult, error) {
	if userID == "" {
		return StatusResult{}, apperr.Unauthenticated("caller identity is not resolved")
	}

	user, err := q.Storage.GetUser(userID)
	if err != nil {
		return StatusResult{}, err
	}
	if user == nil {
		return StatusResult{UserExists: false}, nil
	}

	active, err := q.Storage.GetActiveSessionForUser(userID)
	if err != nil {
		return StatusResult{}, err
	}

	result := StatusResult{
		UserExists: true,
		InQueue:    user.InQueue,
	}
	if active != nil {
		result.Matched = true
		result.SessionID = active.ID
	}
	return result, nil
}

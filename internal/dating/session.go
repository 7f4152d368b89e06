package dating

import (
	"log"
	"time"

	"speeddate/backend/internal/models"
	"speeddate/backend/internal/storage"
	"speeddate/backend/pkg/apperr"
)

// SessionService owns the chat-session state machine: the per-user
// continue decisions after speed dating, the skip-vote side channel and
// the explicit leave.
type SessionService struct {
	Storage storage.Storage
}

// NewSessionService creates a new session service.
func NewSessionService(s storage.Storage) *SessionService {
	return &SessionService{Storage: s}
}

// DecisionResult is the outcome of a continue decision.
type DecisionResult struct {
	BothDecided  bool `json:"both_decided"`
	MatchCreated bool `json:"match_created"`
}

// SkipResult is the outcome of a skip vote. SkipCount is 0-2 for
// progress display.
type SkipResult struct {
	BothSkipped  bool `json:"both_skipped"`
	MatchCreated bool `json:"match_created"`
	SkipCount    int  `json:"skip_count"`
}

// MakeDecision records the caller's continue decision. The first
// decision parks the session in waiting_reveal. Once both slots are
// filled: mutual consent creates a Match and moves the session to the
// extended phase; anything else ends the session, clears both queue
// flags and irrevocably erases every message of the session.
func (s *SessionService) MakeDecision(sessionID, userID string, wantsToContinue bool) (DecisionResult, error) {
	if userID == "" {
		return DecisionResult{}, apperr.Unauthenticated("caller identity is not resolved")
	}

	var result DecisionResult
	var events []models.Event

	err := s.Storage.Transaction(func(tx storage.Storage) error {
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
		if session.Status == models.StatusEnded {
			return apperr.InvalidPhase("session has already ended")
		}
		if session.Phase == models.PhaseExtended {
			// Both decisions already resolved in favor of continuing;
			// a late re-submission has nothing left to decide.
			return apperr.InvalidPhase("session is already revealed")
		}

		session.SetDecision(userID, wantsToContinue)
		session.Status = models.StatusWaitingReveal

		if !session.BothDecided() {
			if err := tx.SaveSession(session); err != nil {
				return err
			}
			result = DecisionResult{BothDecided: false}
			events = append(events, models.Event{
				Kind:      models.EventSessionUpdated,
				SessionID: session.ID,
				UserIDs:   participants(session),
			})
			return nil
		}

		now := time.Now()
		if session.BothAgreed() {
			match := &models.Match{
				UserAID:   session.UserAID,
				UserBID:   session.UserBID,
				SessionID: session.ID,
				MatchedAt: now,
			}
			if err := tx.SaveMatch(match); err != nil {
				return err
			}
			session.Phase = models.PhaseExtended
			session.Status = models.StatusActive
			session.EndsAt = nil
			if err := tx.SaveSession(session); err != nil {
				return err
			}
			result = DecisionResult{BothDecided: true, MatchCreated: true}
			events = append(events, models.Event{
				Kind:      models.EventMatchCreated,
				SessionID: session.ID,
				MatchID:   match.ID,
				UserIDs:   participants(session),
			})
			return nil
		}

		// Decisions conflict: end the session, keep both users out of
		// the queue so they are not instantly re-paired, and erase the
		// conversation for good.
		session.Status = models.StatusEnded
		session.EndedAt = &now
		if err := tx.SaveSession(session); err != nil {
			return err
		}
		if err := tx.SetQueueFlag(session.UserAID, false); err != nil {
			return err
		}
		if err := tx.SetQueueFlag(session.UserBID, false); err != nil {
			return err
		}
		if err := tx.PurgeMessages(session.ID); err != nil {
			return err
		}
		result = DecisionResult{BothDecided: true, MatchCreated: false}
		events = append(events, models.Event{
			Kind:      models.EventSessionEnded,
			SessionID: session.ID,
			UserIDs:   participants(session),
		})
		return nil
	})
	if err != nil {
		return DecisionResult{}, err
	}

	s.publish(events)
	return result, nil
}

// SkipToReveal records the caller's vote to bypass the speed-dating
// timer. Voting twice counts once. When both participants have voted,
// the session takes the same mutual-consent branch as MakeDecision:
// a Match is created and the phase flips to extended without passing
// through waiting_reveal.
func (s *SessionService) SkipToReveal(sessionID, userID string) (SkipResult, error) {
	if userID == "" {
		return SkipResult{}, apperr.Unauthenticated("caller identity is not resolved")
	}

	var result SkipResult
	var events []models.Event

	err := s.Storage.Transaction(func(tx storage.Storage) error {
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
		if session.Phase != models.PhaseSpeedDating || session.Status != models.StatusActive {
			return apperr.InvalidPhase("skip votes only apply to an active speed-dating session")
		}

		session.SetSkip(userID)

		if session.SkipCount() < 2 {
			if err := tx.SaveSession(session); err != nil {
				return err
			}
			result = SkipResult{SkipCount: session.SkipCount()}
			events = append(events, models.Event{
				Kind:      models.EventSessionUpdated,
				SessionID: session.ID,
				UserIDs:   participants(session),
			})
			return nil
		}

		match := &models.Match{
			UserAID:   session.UserAID,
			UserBID:   session.UserBID,
			SessionID: session.ID,
			MatchedAt: time.Now(),
		}
		if err := tx.SaveMatch(match); err != nil {
			return err
		}
		session.Phase = models.PhaseExtended
		session.Status = models.StatusActive
		session.EndsAt = nil
		if err := tx.SaveSession(session); err != nil {
			return err
		}
		result = SkipResult{BothSkipped: true, MatchCreated: true, SkipCount: 2}
		events = append(events, models.Event{
			Kind:      models.EventMatchCreated,
			SessionID: session.ID,
			MatchID:   match.ID,
			UserIDs:   participants(session),
		})
		return nil
	})
	if err != nil {
		return SkipResult{}, err
	}

	s.publish(events)
	return result, nil
}

// LeaveChat ends the session on behalf of the caller and erases its
// messages. Leaving an already ended session succeeds without effect.
func (s *SessionService) LeaveChat(sessionID, userID string) error {
	if userID == "" {
		return apperr.Unauthenticated("caller identity is not resolved")
	}

	var events []models.Event

	err := s.Storage.Transaction(func(tx storage.Storage) error {
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
		if session.Status == models.StatusEnded {
			return nil
		}

		now := time.Now()
		session.Status = models.StatusEnded
		session.EndedAt = &now
		if err := tx.SaveSession(session); err != nil {
			return err
		}
		if err := tx.PurgeMessages(session.ID); err != nil {
			return err
		}
		events = append(events, models.Event{
			Kind:      models.EventSessionEnded,
			SessionID: session.ID,
			UserIDs:   participants(session),
		})
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(events)
	return nil
}

// SweepExpired force-transitions active speed-dating sessions past
// their deadline into waiting_reveal so a stalled client cannot hold a
// partner hostage. Returns how many sessions were moved.
func (s *SessionService) SweepExpired(now time.Time) (int, error) {
	var events []models.Event
	swept := 0

	err := s.Storage.Transaction(func(tx storage.Storage) error {
		expired, err := tx.ListExpiredSpeedDating(now)
		if err != nil {
			return err
		}
		for i := range expired {
			session := &expired[i]
			session.Status = models.StatusWaitingReveal
			if err := tx.SaveSession(session); err != nil {
				return err
			}
			swept++
			events = append(events, models.Event{
				Kind:      models.EventSessionUpdated,
				SessionID: session.ID,
				UserIDs:   participants(session),
			})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.publish(events)
	return swept, nil
}

func (s *SessionService) publish(events []models.Event) {
	for _, event := range events {
		if err := s.Storage.PublishEvent(event); err != nil {
			log.Printf("ERROR: Failed to publish %s event for session %s: %v",
				event.Kind, event.SessionID, err)
		}
	}
}

func participants(session *models.ChatSession) []string {
	return []string{session.UserAID, session.UserBID}
}

package dating_test

import (
	"testing"
	"time"

	"speeddate/backend/internal/dating"
	"speeddate/backend/internal/models"
	"speeddate/backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func boolPtr(b bool) *bool { return &b }

func speedDatingSession() *models.ChatSession {
	endsAt := time.Now().Add(15 * time.Minute)
	return &models.ChatSession{
		ID:        "session_1",
		UserAID:   "user_A",
		UserBID:   "user_B",
		Phase:     models.PhaseSpeedDating,
		Status:    models.StatusActive,
		StartedAt: time.Now(),
		EndsAt:    &endsAt,
	}
}

func TestMakeDecision_FirstDecisionWaitsForPartner(t *testing.T) {
	// Arrange
	storageMock := new(MockStorage)
	sessions := dating.NewSessionService(storageMock)
	session := speedDatingSession()

	storageMock.On("GetSession", "session_1").Return(session, nil)
	storageMock.On("SaveSession", session).Return(nil).Once()
	storageMock.On("PublishEvent", mock.AnythingOfType("models.Event")).Return(nil)

	// Act
	result, err := sessions.MakeDecision("session_1", "user_A", true)

	// Assert
	assert.NoError(t, err)
	assert.False(t, result.BothDecided)
	assert.False(t, result.MatchCreated)
	assert.Equal(t, models.StatusWaitingReveal, session.Status)
	assert.NotNil(t, session.DecisionA)
	assert.True(t, *session.DecisionA)
	assert.Nil(t, session.DecisionB)
	storageMock.AssertNotCalled(t, "SaveMatch", mock.Anything)
}

func TestMakeDecision_MutualConsentCreatesMatch(t *testing.T) {
	// Both orders must produce the same outcome.
	orders := []struct {
		name  string
		first string
	}{
		{"partner A decided first", "user_A"},
		{"partner B decided first", "user_B"},
	}

	for _, order := range orders {
		t.Run(order.name, func(t *testing.T) {
			storageMock := new(MockStorage)
			sessions := dating.NewSessionService(storageMock)

			session := speedDatingSession()
			session.Status = models.StatusWaitingReveal
			second := "user_B"
			if order.first == "user_B" {
				second = "user_A"
			}
			session.SetDecision(order.first, true)

			var match *models.Match
			storageMock.On("GetSession", "session_1").Return(session, nil)
			storageMock.On("SaveMatch", mock.AnythingOfType("*models.Match")).
				Run(func(args mock.Arguments) {
					match = args.Get(0).(*models.Match)
				}).Return(nil).Once()
			storageMock.On("SaveSession", session).Return(nil).Once()
			storageMock.On("PublishEvent", mock.AnythingOfType("models.Event")).Return(nil)

			result, err := sessions.MakeDecision("session_1", second, true)

			assert.NoError(t, err)
			assert.True(t, result.BothDecided)
			assert.True(t, result.MatchCreated)

			// The session continues revealed and without a deadline.
			assert.Equal(t, models.PhaseExtended, session.Phase)
			assert.Equal(t, models.StatusActive, session.Status)
			assert.Nil(t, session.EndsAt)

			// Exactly one match, linking this session.
			storageMock.AssertNumberOfCalls(t, "SaveMatch", 1)
			assert.Equal(t, "session_1", match.SessionID)
			assert.True(t, match.HasUser("user_A"))
			assert.True(t, match.HasUser("user_B"))
		})
	}
}

func TestMakeDecision_ConflictEndsSessionAndErasesMessages(t *testing.T) {
	tests := []struct {
		name          string
		firstDecision *bool // pre-recorded decision of user_A
		second        bool  // decision submitted by user_B
	}{
		{"continue then reject", boolPtr(true), false},
		{"reject then continue", boolPtr(false), true},
		{"reject then reject", boolPtr(false), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storageMock := new(MockStorage)
			sessions := dating.NewSessionService(storageMock)

			session := speedDatingSession()
			session.Status = models.StatusWaitingReveal
			session.DecisionA = tt.firstDecision

			storageMock.On("GetSession", "session_1").Return(session, nil)
			storageMock.On("SaveSession", session).Return(nil).Once()
			storageMock.On("SetQueueFlag", "user_A", false).Return(nil).Once()
			storageMock.On("SetQueueFlag", "user_B", false).Return(nil).Once()
			storageMock.On("PurgeMessages", "session_1").Return(nil).Once()
			storageMock.On("PublishEvent", mock.AnythingOfType("models.Event")).Return(nil)

			result, err := sessions.MakeDecision("session_1", "user_B", tt.second)

			assert.NoError(t, err)
			assert.True(t, result.BothDecided)
			assert.False(t, result.MatchCreated)
			assert.Equal(t, models.StatusEnded, session.Status)
			assert.NotNil(t, session.EndedAt)
			storageMock.AssertExpectations(t)
			storageMock.AssertNotCalled(t, "SaveMatch", mock.Anything)
		})
	}
}

func TestMakeDecision_NonParticipantRejected(t *testing.T) {
	storageMock := new(MockStorage)
	sessions := dating.NewSessionService(storageMock)

	storageMock.On("GetSession", "session_1").Return(speedDatingSession(), nil)

	_, err := sessions.MakeDecision("session_1", "user_C", true)

	assert.Error(t, err)
	assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(err))
}

func TestMakeDecision_EndedSessionRejected(t *testing.T) {
	storageMock := new(MockStorage)
	sessions := dating.NewSessionService(storageMock)

	session := speedDatingSession()
	session.Status = models.StatusEnded

	storageMock.On("GetSession", "session_1").Return(session, nil)

	_, err := sessions.MakeDecision("session_1", "user_A", true)

	assert.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidPhase, apperr.CodeOf(err))
}

func TestMakeDecision_ResubmissionAfterRevealRejected(t *testing.T) {
	storageMock := new(MockStorage)
	sessions := dating.NewSessionService(storageMock)

	session := speedDatingSession()
	session.Phase = models.PhaseExtended
	session.DecisionA = boolPtr(true)
	session.DecisionB = boolPtr(true)

	storageMock.On("GetSession", "session_1").Return(session, nil)

	_, err := sessions.MakeDecision("session_1", "user_A", false)

	assert.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidPhase, apperr.CodeOf(err))
	storageMock.AssertNotCalled(t, "SaveSession", mock.Anything)
}

func TestMakeDecision_UnknownSession(t *testing.T) {
	storageMock := new(MockStorage)
	sessions := dating.NewSessionService(storageMock)

	storageMock.On("GetSession", "missing").Return(nil, nil)

	_, err := sessions.MakeDecision("missing", "user_A", true)

	assert.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestSkipToReveal_FirstVoteCountsOnce(t *testing.T) {
	storageMock := new(MockStorage)
	sessions := dating.NewSessionService(storageMock)
	session := speedDatingSession()

	storageMock.On("GetSession", "session_1").Return(session, nil)
	storageMock.On("SaveSession", session).Return(nil)
	storageMock.On("PublishEvent", mock.AnythingOfType("models.Event")).Return(nil)

	// First vote.
	result, err := sessions.SkipToReveal("session_1", "user_A")
	assert.NoError(t, err)
	assert.False(t, result.BothSkipped)
	assert.Equal(t, 1, result.SkipCount)

	// Voting again does not move the count.
	result, err = sessions.SkipToReveal("session_1", "user_A")
	assert.NoError(t, err)
	assert.False(t, result.BothSkipped)
	assert.Equal(t, 1, result.SkipCount)
	storageMock.AssertNotCalled(t, "SaveMatch", mock.Anything)
}

func TestSkipToReveal_BothVotesCreateMatch(t *testing.T) {
	storageMock := new(MockStorage)
	sessions := dating.NewSessionService(storageMock)

	session := speedDatingSession()
	session.SkipA = true

	var match *models.Match
	storageMock.On("GetSession", "session_1").Return(session, nil)
	storageMock.On("SaveMatch", mock.AnythingOfType("*models.Match")).
		Run(func(args mock.Arguments) {
			match = args.Get(0).(*models.Match)
		}).Return(nil).Once()
	storageMock.On("SaveSession", session).Return(nil).Once()
	storageMock.On("PublishEvent", mock.AnythingOfType("models.Event")).Return(nil)

	result, err := sessions.SkipToReveal("session_1", "user_B")

	assert.NoError(t, err)
	assert.True(t, result.BothSkipped)
	assert.True(t, result.MatchCreated)
	assert.Equal(t, 2, result.SkipCount)

	// Same terminal state as the mutual-consent decision branch, with
	// the timer bypassed.
	assert.Equal(t, models.PhaseExtended, session.Phase)
	assert.Equal(t, models.StatusActive, session.Status)
	assert.Nil(t, session.EndsAt)
	assert.Equal(t, "session_1", match.SessionID)
}

func TestSkipToReveal_OnlyDuringSpeedDating(t *testing.T) {
	storageMock := new(MockStorage)
	sessions := dating.NewSessionService(storageMock)

	session := speedDatingSession()
	session.Phase = models.PhaseExtended

	storageMock.On("GetSession", "session_1").Return(session, nil)

	_, err := sessions.SkipToReveal("session_1", "user_A")

	assert.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidPhase, apperr.CodeOf(err))
}

func TestSkipToReveal_RejectedOnceDecisionRecorded(t *testing.T) {
	// The partner already submitted a decision, parking the session in
	// waiting_reveal. From there the decision flow owns the session; a
	// late skip vote must not create a match around the recorded choice.
	storageMock := new(MockStorage)
	sessions := dating.NewSessionService(storageMock)

	session := speedDatingSession()
	session.Status = models.StatusWaitingReveal
	session.DecisionA = boolPtr(false)

	storageMock.On("GetSession", "session_1").Return(session, nil)

	_, err := sessions.SkipToReveal("session_1", "user_B")

	assert.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidPhase, apperr.CodeOf(err))
	storageMock.AssertNotCalled(t, "SaveMatch", mock.Anything)
}

func TestLeaveChat_EndsSessionAndErasesMessages(t *testing.T) {
	storageMock := new(MockStorage)
	sessions := dating.NewSessionService(storageMock)
	session := speedDatingSession()

	storageMock.On("GetSession", "session_1").Return(session, nil)
	storageMock.On("SaveSession", session).Return(nil).Once()
	storageMock.On("PurgeMessages", "session_1").Return(nil).Once()
	storageMock.On("PublishEvent", mock.AnythingOfType("models.Event")).Return(nil)

	err := sessions.LeaveChat("session_1", "user_A")

	assert.NoError(t, err)
	assert.Equal(t, models.StatusEnded, session.Status)
	assert.NotNil(t, session.EndedAt)
	storageMock.AssertExpectations(t)
}

func TestLeaveChat_AlreadyEndedIsNoOp(t *testing.T) {
	storageMock := new(MockStorage)
	sessions := dating.NewSessionService(storageMock)

	session := speedDatingSession()
	session.Status = models.StatusEnded

	storageMock.On("GetSession", "session_1").Return(session, nil)

	err := sessions.LeaveChat("session_1", "user_A")

	assert.NoError(t, err)
	storageMock.AssertNotCalled(t, "SaveSession", mock.Anything)
	storageMock.AssertNotCalled(t, "PurgeMessages", mock.Anything)
}

func TestSweepExpired_MovesSessionsToWaitingReveal(t *testing.T) {
	storageMock := new(MockStorage)
	sessions := dating.NewSessionService(storageMock)

	now := time.Now()
	expired := []models.ChatSession{
		*speedDatingSession(),
		{ID: "session_2", UserAID: "user_C", UserBID: "user_D",
			Phase: models.PhaseSpeedDating, Status: models.StatusActive},
	}

	storageMock.On("ListExpiredSpeedDating", now).Return(expired, nil)
	storageMock.On("SaveSession", mock.AnythingOfType("*models.ChatSession")).
		Run(func(args mock.Arguments) {
			assert.Equal(t, models.StatusWaitingReveal, args.Get(0).(*models.ChatSession).Status)
		}).Return(nil).Twice()
	storageMock.On("PublishEvent", mock.AnythingOfType("models.Event")).Return(nil)

	swept, err := sessions.SweepExpired(now)

	assert.NoError(t, err)
	assert.Equal(t, 2, swept)
	storageMock.AssertExpectations(t)
}

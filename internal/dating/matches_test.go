package dating_test

import (
	"testing"
	"time"

	"speeddate/backend/internal/dating"
	"speeddate/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestListMatches_EnrichedEntries(t *testing.T) {
	// Arrange
	storageMock := new(MockStorage)
	matches := dating.NewMatchService(storageMock)

	now := time.Now()
	ledger := []models.Match{
		{ID: "match_1", UserAID: "user_A", UserBID: "user_B", SessionID: "session_1",
			MatchedAt: now},
		{ID: "match_2", UserAID: "user_C", UserBID: "user_A", SessionID: "session_2",
			MatchedAt: now.Add(-time.Hour)},
	}
	storageMock.On("ListMatchesForUser", "user_A").Return(ledger, nil)

	// match_1: live chat and a pending request sent by the caller.
	storageMock.On("GetUser", "user_B").Return(&models.User{ID: "user_B", Age: 27}, nil)
	storageMock.On("GetSession", "session_1").
		Return(&models.ChatSession{ID: "session_1", Status: models.StatusActive}, nil)
	storageMock.On("GetPendingRequestForMatch", "match_1").
		Return(&models.ChatRequest{ID: "request_1", FromUserID: "user_A", Status: models.RequestPending}, nil)

	// match_2: ended chat, incoming pending request.
	storageMock.On("GetUser", "user_C").Return(&models.User{ID: "user_C", Age: 33}, nil)
	storageMock.On("GetSession", "session_2").
		Return(&models.ChatSession{ID: "session_2", Status: models.StatusEnded}, nil)
	storageMock.On("GetPendingRequestForMatch", "match_2").
		Return(&models.ChatRequest{ID: "request_2", FromUserID: "user_C", Status: models.RequestPending}, nil)

	// Act
	entries, err := matches.List("user_A")

	// Assert
	assert.NoError(t, err)
	assert.Len(t, entries, 2)

	assert.Equal(t, "match_1", entries[0].MatchID)
	assert.True(t, entries[0].HasActiveChat)
	assert.True(t, entries[0].HasPendingRequest)
	assert.True(t, entries[0].IsRequestSender)
	assert.Equal(t, "user_B", entries[0].Counterpart.ID)

	assert.Equal(t, "match_2", entries[1].MatchID)
	assert.False(t, entries[1].HasActiveChat)
	assert.True(t, entries[1].HasPendingRequest)
	assert.False(t, entries[1].IsRequestSender, "the counterpart sent this one")
	assert.Equal(t, "user_C", entries[1].Counterpart.ID)
}

func TestListMatches_DropsUnresolvableCounterparts(t *testing.T) {
	storageMock := new(MockStorage)
	matches := dating.NewMatchService(storageMock)

	ledger := []models.Match{
		{ID: "match_1", UserAID: "user_A", UserBID: "user_gone", SessionID: "session_1",
			MatchedAt: time.Now()},
	}
	storageMock.On("ListMatchesForUser", "user_A").Return(ledger, nil)
	storageMock.On("GetUser", "user_gone").Return(nil, nil)

	entries, err := matches.List("user_A")

	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListMatches_EmptyLedger(t *testing.T) {
	storageMock := new(MockStorage)
	matches := dating.NewMatchService(storageMock)

	storageMock.On("ListMatchesForUser", "user_A").Return([]models.Match{}, nil)

	entries, err := matches.List("user_A")

	assert.NoError(t, err)
	assert.Empty(t, entries)
}

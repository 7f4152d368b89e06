package dating_test

import (
	"time"

	"speeddate/backend/internal/models"
	"speeddate/backend/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

// Transaction runs fn against the mock itself; the tests only care
// about the operations inside, not transaction mechanics.
func (m *MockStorage) Transaction(fn func(storage.Storage) error) error {
	return fn(m)
}

func (m *MockStorage) GetUser(userID string) (*models.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) SaveUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) SetQueueFlag(userID string, inQueue bool) error {
	args := m.Called(userID, inQueue)
	return args.Error(0)
}

func (m *MockStorage) ClaimQueuedUser(userID string) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) FindQueueCandidate(excludeID string) (*models.User, error) {
	args := m.Called(excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetSession(sessionID string) (*models.ChatSession, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatSession), args.Error(1)
}

func (m *MockStorage) SaveSession(session *models.ChatSession) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockStorage) GetActiveSessionForUser(userID string) (*models.ChatSession, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatSession), args.Error(1)
}

func (m *MockStorage) GetActiveSessionForPair(userA, userB string) (*models.ChatSession, error) {
	args := m.Called(userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatSession), args.Error(1)
}

func (m *MockStorage) ListExpiredSpeedDating(now time.Time) ([]models.ChatSession, error) {
	args := m.Called(now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatSession), args.Error(1)
}

func (m *MockStorage) SaveMatch(match *models.Match) error {
	args := m.Called(match)
	return args.Error(0)
}

func (m *MockStorage) GetMatch(matchID string) (*models.Match, error) {
	args := m.Called(matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}

func (m *MockStorage) ListMatchesForUser(userID string) ([]models.Match, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Match), args.Error(1)
}

func (m *MockStorage) SaveRequest(req *models.ChatRequest) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *MockStorage) GetRequest(requestID string) (*models.ChatRequest, error) {
	args := m.Called(requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRequest), args.Error(1)
}

func (m *MockStorage) GetPendingRequestForMatch(matchID string) (*models.ChatRequest, error) {
	args := m.Called(matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRequest), args.Error(1)
}

func (m *MockStorage) ListPendingRequestsForUser(userID string) ([]models.ChatRequest, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatRequest), args.Error(1)
}

func (m *MockStorage) SaveMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) ListRecentMessages(sessionID string, limit int) ([]models.Message, error) {
	args := m.Called(sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) PurgeMessages(sessionID string) error {
	args := m.Called(sessionID)
	return args.Error(0)
}

func (m *MockStorage) AllowMessage(senderID string, max int, window time.Duration) (bool, error) {
	args := m.Called(senderID, max, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) SetTyping(sessionID, userID string, ttl time.Duration) error {
	args := m.Called(sessionID, userID, ttl)
	return args.Error(0)
}

func (m *MockStorage) TypingUsers(sessionID string) ([]string, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) PublishEvent(event models.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

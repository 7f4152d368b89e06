package storage

import (
	"context"
	"errors"
	"time"

	"speeddate/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Storage is the persistence and notification substrate the core works
// against. Durable entities live in PostgreSQL; rate-limit counters,
// typing signals and the push-on-change event stream live in Redis.
type Storage interface {
	// Transaction runs fn against a transaction-scoped Storage. Every
	// multi-step mutation in the core goes through this so no caller
	// observes a partial effect.
	Transaction(fn func(Storage) error) error

	GetUser(userID string) (*models.User, error)
	SaveUser(user *models.User) error
	SetQueueFlag(userID string, inQueue bool) error
	ClaimQueuedUser(userID string) (bool, error)
	FindQueueCandidate(excludeID string) (*models.User, error)

	GetSession(sessionID string) (*models.ChatSession, error)
	SaveSession(session *models.ChatSession) error
	GetActiveSessionForUser(userID string) (*models.ChatSession, error)
	GetActiveSessionForPair(userA, userB string) (*models.ChatSession, error)
	ListExpiredSpeedDating(now time.Time) ([]models.ChatSession, error)

	SaveMatch(match *models.Match) error
	GetMatch(matchID string) (*models.Match, error)
	ListMatchesForUser(userID string) ([]models.Match, error)

	SaveRequest(req *models.ChatRequest) error
	GetRequest(requestID string) (*models.ChatRequest, error)
	GetPendingRequestForMatch(matchID string) (*models.ChatRequest, error)
	ListPendingRequestsForUser(userID string) ([]models.ChatRequest, error)

	SaveMessage(msg *models.Message) error
	ListRecentMessages(sessionID string, limit int) ([]models.Message, error)
	PurgeMessages(sessionID string) error

	AllowMessage(senderID string, max int, window time.Duration) (bool, error)
	SetTyping(sessionID, userID string, ttl time.Duration) error
	TypingUsers(sessionID string) ([]string, error)
	PublishEvent(event models.Event) error
}

// Service implements Storage on top of GORM and go-redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// Transaction runs fn with a Service bound to a database transaction.
// Redis side effects are not transactional; callers publish events only
// after the database outcome is decided.
func (s *Service) Transaction(fn func(Storage) error) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return fn(&Service{DB: tx, Redis: s.Redis, Ctx: s.Ctx})
	})
}

// GetUser loads a user by ID, returning nil without an error when the
// directory record does not exist yet (the caller distinguishes "still
// syncing" from a real failure).
func (s *Service) GetUser(userID string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SaveUser upserts the user row.
func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

// SetQueueFlag unconditionally sets the queue-membership flag.
func (s *Service) SetQueueFlag(userID string, inQueue bool) error {
	return s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("in_queue", inQueue).Error
}

// ClaimQueuedUser clears the queue flag only if it is still set,
// reporting whether this caller won the claim. This conditional update
// is the single compare-and-swap the pairing protocol leans on.
func (s *Service) ClaimQueuedUser(userID string) (bool, error) {
	res := s.DB.Model(&models.User{}).
		Where("id = ? AND in_queue = ?", userID, true).
		Update("in_queue", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindQueueCandidate returns the longest-waiting queued user other than
// excludeID, or nil when nobody else is waiting.
func (s *Service) FindQueueCandidate(excludeID string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("in_queue = ? AND id <> ?", true, excludeID).
		Order("updated_at asc").
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

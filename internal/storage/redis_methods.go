package storage

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"speeddate/backend/internal/models"
)

// EventsChannel is the Redis pub/sub channel every committed mutation is
// announced on. The hub subscribes here and fans out to live clients.
const EventsChannel = "events"

// AllowMessage implements the rolling-window message rate limit with a
// Redis counter: the first send in a window creates the key with an
// expiry, later sends increment it, and the limit trips once the count
// exceeds max.
func (s *Service) AllowMessage(senderID string, max int, window time.Duration) (bool, error) {
	key := "ratelimit:msg:" + senderID

	count, err := s.Redis.Incr(s.Ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := s.Redis.Expire(s.Ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(max), nil
}

// SetTyping records an ephemeral typing signal under a short TTL. The
// signal disappears on its own; there is no explicit clear.
func (s *Service) SetTyping(sessionID, userID string, ttl time.Duration) error {
	key := "typing:" + sessionID + ":" + userID
	return s.Redis.Set(s.Ctx, key, "1", ttl).Err()
}

// TypingUsers returns the user IDs with a live typing signal in the
// session.
func (s *Service) TypingUsers(sessionID string) ([]string, error) {
	prefix := "typing:" + sessionID + ":"
	keys, err := s.Redis.Keys(s.Ctx, prefix+"*").Result()
	if err != nil {
		return nil, err
	}
	users := make([]string, 0, len(keys))
	for _, key := range keys {
		users = append(users, strings.TrimPrefix(key, prefix))
	}
	return users, nil
}

// PublishEvent announces a committed mutation on the events channel.
// Publish failures are logged but never fail the mutation that already
// committed; subscribers re-sync on reconnect anyway.
func (s *Service) PublishEvent(event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := s.Redis.Publish(s.Ctx, EventsChannel, string(payload)).Err(); err != nil {
		log.Printf("ERROR: Failed to publish event: %v", err)
		return err
	}
	return nil
}

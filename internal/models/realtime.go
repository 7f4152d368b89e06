package models

// Event kinds published on every committed mutation. Subscribers use the
// kind to decide which query to refresh; the payload is deliberately
// thin so clients re-read authoritative state instead of trusting it.
const (
	EventQueueMatched    = "queue_matched"
	EventSessionUpdated  = "session_updated"
	EventSessionEnded    = "session_ended"
	EventMatchCreated    = "match_created"
	EventRequestCreated  = "request_created"
	EventRequestResolved = "request_resolved"
	EventMessageSent     = "message_sent"
	EventTyping          = "typing"
)

// Event is the push-on-change notification fanned out to the live
// connections of every affected user.
type Event struct {
	Kind      string   `json:"kind"`
	SessionID string   `json:"session_id,omitempty"`
	MatchID   string   `json:"match_id,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
	SenderID  string   `json:"sender_id,omitempty"`
	UserIDs   []string `json:"user_ids,omitempty"` // recipients for hub fan-out
}

// TypingSignal is the ephemeral per-session per-user typing flag. It
// lives only in Redis under a short TTL and is never persisted.
type TypingSignal struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

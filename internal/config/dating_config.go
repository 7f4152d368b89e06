package config

import "time"

const (
	// Speed dating
	SpeedDatingDuration = 15 * time.Minute
	SweepInterval       = 30 * time.Second

	// Messages
	MaxMessageLength  = 2000
	MessageWindowSize = 50

	// Rate limiting
	RateLimitMaxMessages = 10
	RateLimitWindow      = 10 * time.Second

	// Typing signals
	TypingTTL = 5 * time.Second
)

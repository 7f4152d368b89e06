package hub

import "speeddate/backend/internal/models"

// Client is one live subscriber connection. It abstracts the transport
// so the manager can fan events out without caring how they reach the
// user.
type Client interface {
	// GetUserID returns the user this connection belongs to.
	GetUserID() string

	// GetSendChannel returns the channel the manager pushes events
	// intended for this client into. It is a send-only channel.
	GetSendChannel() chan<- models.Event

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the connection and its channels.
	Close()
}

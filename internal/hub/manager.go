// Package hub is the push-on-change side of the substrate: every
// committed mutation is published on a Redis channel, and the manager
// fans each event out to the live connections of its affected users.
// Clients never have to poll; a subscriber observes every mutation that
// names it.
package hub

import (
	"context"
	"encoding/json"
	"log"

	"speeddate/backend/internal/models"
	"speeddate/backend/internal/storage"
)

// Manager owns the set of live subscriber connections and the Redis
// pub/sub listener feeding them.
type Manager struct {
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client

	Storage *storage.Service

	eventCh chan models.Event
}

// NewManager creates a hub manager over the shared storage service.
func NewManager(s *storage.Service) *Manager {
	return &Manager{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		Storage:      s,
		eventCh:      make(chan models.Event, 256),
	}
}

// startPubSubListener subscribes to the events channel and forwards
// parsed events into the manager loop. Runs until the subscription
// drops.
func (m *Manager) startPubSubListener() {
	go func() {
		pubsub := m.Storage.Redis.Subscribe(context.Background(), storage.EventsChannel)
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var event models.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("Error unmarshalling pub/sub event: %v", err)
				continue
			}
			m.eventCh <- event
		}
	}()
}

// Run is the main dispatcher loop. One goroutine owns the Clients map;
// registration, unregistration and fan-out all serialize through here.
func (m *Manager) Run() {
	m.startPubSubListener()

	for {
		select {
		case client := <-m.RegisterCh:
			m.register(client)
		case client := <-m.UnregisterCh:
			m.unregister(client)
		case event := <-m.eventCh:
			m.dispatch(event)
		}
	}
}

func (m *Manager) register(client Client) {
	// A newer connection for the same user replaces the old one.
	if old, ok := m.Clients[client.GetUserID()]; ok {
		old.Close()
	}
	m.Clients[client.GetUserID()] = client
}

func (m *Manager) unregister(client Client) {
	if current, ok := m.Clients[client.GetUserID()]; ok && current == client {
		delete(m.Clients, client.GetUserID())
		current.Close()
	}
}

// dispatch fans one event out to the live connections of its recipients.
func (m *Manager) dispatch(event models.Event) {
	for _, userID := range event.UserIDs {
		client, ok := m.Clients[userID]
		if !ok {
			continue
		}
		select {
		case client.GetSendChannel() <- event:
		default:
			// Client too slow to drain its buffer; drop it. It will
			// re-sync on reconnect.
			delete(m.Clients, userID)
			client.Close()
		}
	}
}

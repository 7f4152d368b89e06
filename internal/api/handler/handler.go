package handler

import (
	"speeddate/backend/internal/dating"
	"speeddate/backend/internal/hub"
	"speeddate/backend/internal/storage"
)

// Handler wires the core services to the HTTP surface.
type Handler struct {
	Storage  *storage.Service
	Hub      *hub.Manager
	Queue    *dating.QueueService
	Sessions *dating.SessionService
	Matches  *dating.MatchService
	Requests *dating.RequestService
	Messages *dating.MessageService
}

func NewHandler(s *storage.Service, h *hub.Manager) *Handler {
	return &Handler{
		Storage:  s,
		Hub:      h,
		Queue:    dating.NewQueueService(s),
		Sessions: dating.NewSessionService(s),
		Matches:  dating.NewMatchService(s),
		Requests: dating.NewRequestService(s),
		Messages: dating.NewMessageService(s),
	}
}

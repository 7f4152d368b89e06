package handler

import (
	"net/http"

	"speeddate/backend/internal/hub"
	"speeddate/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection into a push-on-change
// subscriber. The socket carries only server-to-client events; all
// mutations go through the REST operations.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := &hub.WebSocketClient{
		UserID: callerID(c),
		Conn:   conn,
		Hub:    h.Hub,
		Send:   make(chan models.Event, 256),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}

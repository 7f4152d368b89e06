package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JoinQueue admits the caller to the waiting pool or pairs them
// immediately when a candidate is waiting.
func (h *Handler) JoinQueue(c *gin.Context) {
	result, err := h.Queue.Join(callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// LeaveQueue removes the caller from the waiting pool.
func (h *Handler) LeaveQueue(c *gin.Context) {
	if err := h.Queue.Leave(callerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// QueueStatus reports the caller's queue and pairing state.
func (h *Handler) QueueStatus(c *gin.Context) {
	result, err := h.Queue.Status(callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type decisionBody struct {
	WantsToContinue *bool `json:"wants_to_continue" binding:"required"`
}

// MakeDecision records the caller's continue decision for a session.
func (h *Handler) MakeDecision(c *gin.Context) {
	var body decisionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_ARGUMENT", "error": err.Error()})
		return
	}

	result, err := h.Sessions.MakeDecision(c.Param("id"), callerID(c), *body.WantsToContinue)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SkipToReveal records the caller's vote to bypass the timer.
func (h *Handler) SkipToReveal(c *gin.Context) {
	result, err := h.Sessions.SkipToReveal(c.Param("id"), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// LeaveChat ends a session and erases its messages.
func (h *Handler) LeaveChat(c *gin.Context) {
	if err := h.Sessions.LeaveChat(c.Param("id"), callerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListMatches returns the caller's match ledger.
func (h *Handler) ListMatches(c *gin.Context) {
	entries, err := h.Matches.List(callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": entries})
}

// SendRequest creates a pending chat request on a match.
func (h *Handler) SendRequest(c *gin.Context) {
	req, err := h.Requests.Send(c.Param("id"), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request_id": req.ID})
}

// ListRequests returns pending requests addressed to the caller.
func (h *Handler) ListRequests(c *gin.Context) {
	pending, err := h.Requests.ListPending(callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": pending})
}

// AcceptRequest opens a fresh extended session from a pending request.
func (h *Handler) AcceptRequest(c *gin.Context) {
	sessionID, err := h.Requests.Accept(c.Param("id"), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID})
}

// DeclineRequest resolves a pending request without a session.
func (h *Handler) DeclineRequest(c *gin.Context) {
	if err := h.Requests.Decline(c.Param("id"), callerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type messageBody struct {
	Content string `json:"content" binding:"required"`
}

// SendMessage stores one message in an active session.
func (h *Handler) SendMessage(c *gin.Context) {
	var body messageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_ARGUMENT", "error": err.Error()})
		return
	}

	if err := h.Messages.Send(c.Param("id"), callerID(c), body.Content); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListMessages returns the session's recent message window.
func (h *Handler) ListMessages(c *gin.Context) {
	list, err := h.Messages.List(c.Param("id"), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// SetTyping publishes the caller's ephemeral typing signal.
func (h *Handler) SetTyping(c *gin.Context) {
	if err := h.Messages.SetTyping(c.Param("id"), callerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetTyping reports which counterparts are currently typing.
func (h *Handler) GetTyping(c *gin.Context) {
	typing, err := h.Messages.Typing(c.Param("id"), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"typing": typing})
}

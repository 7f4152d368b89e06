package handler

import (
	"net/http"

	"speeddate/backend/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// respondError translates the application error taxonomy into HTTP
// statuses in one place. Codes the table does not know fall through to
// 500 without leaking the underlying cause.
func respondError(c *gin.Context, err error) {
	code := apperr.CodeOf(err)

	status := http.StatusInternalServerError
	switch code {
	case apperr.CodeUnauthenticated:
		status = http.StatusUnauthorized
	case apperr.CodeUnauthorized:
		status = http.StatusForbidden
	case apperr.CodeNotFound:
		status = http.StatusNotFound
	case apperr.CodeInvalidArgument:
		status = http.StatusBadRequest
	case apperr.CodeAlreadyInActiveSession, apperr.CodeInvalidPhase, apperr.CodeRequestPending:
		status = http.StatusConflict
	case apperr.CodeRateLimited:
		status = http.StatusTooManyRequests
	}

	message := "internal error"
	if code != apperr.CodeUnknown && code != apperr.CodeInternal {
		message = err.Error()
	}
	c.JSON(status, gin.H{"code": code, "error": message})
}

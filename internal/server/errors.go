package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/meisai/internal/common"
	"github.com/Veraticus/meisai/internal/engine"
	"github.com/Veraticus/meisai/internal/ingest"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrRowNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrNothingStaged):
		return http.StatusConflict
	case errors.Is(err, ingest.ErrUnreadableFile):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrUnknownCategory),
		errors.Is(err, engine.ErrSentinelTarget),
		errors.Is(err, engine.ErrUnknownColumn):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		common.LogError(err, "request failed", "path", c.Request.URL.Path)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": common.UserMessage(err)})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

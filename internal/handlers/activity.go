package handlers

import (
	"log"
	"net/http"
	"time"

	"solmentions/internal/dispatch"

	"github.com/gin-gonic/gin"
)

// ActivityHandler exposes the dispatch pipeline over HTTP
type ActivityHandler struct {
	dispatcher *dispatch.Dispatcher
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(dispatcher *dispatch.Dispatcher) *ActivityHandler {
	return &ActivityHandler{dispatcher: dispatcher}
}

// ProcessActivity handles GET /api/activity/process: it runs one dispatch
// batch and returns the per-post report. Individual post failures are
// reported per item; only a failure to fetch the unprocessed set is a 500.
func (h *ActivityHandler) ProcessActivity(c *gin.Context) {
	report, err := h.dispatcher.ProcessBatch(c.Request.Context())
	if err != nil {
		log.Printf("Batch failed before processing any posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch unprocessed posts",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

// HealthCheck handles GET /health
func (h *ActivityHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

package server

import (
	"net/http"
	"time"

	"gemini2api/internal/core"
	"gemini2api/internal/metrics"

	"github.com/gin-gonic/gin"
)

// respondWithError returns the flat error shape the frontend expects.
func respondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"ok": false, "error": message})
}

// trackPerformance records request duration metrics
func trackPerformance(m *metrics.MetricsService, startTime time.Time) func() {
	return func() {
		duration := time.Since(startTime)
		m.RecordHTTPRequest(duration)
	}
}

// recordRequestResult records request result
func recordRequestResult(m *metrics.MetricsService, success bool, startTime time.Time, model, account string) {
	m.RecordRequest(success, time.Since(startTime).Milliseconds(), model, account)
}

// withPanicRecovery wraps handler with panic recovery
func withPanicRecovery(c *gin.Context, m *metrics.MetricsService, startTime time.Time, logger core.Logger) func() {
	return func() {
		if r := recover(); r != nil {
			logger.Error("Panic in handler: %v", r)
			m.RecordRequest(false, time.Since(startTime).Milliseconds(), "", "")
			respondWithError(c, http.StatusInternalServerError, "internal server error")
		}
	}
}

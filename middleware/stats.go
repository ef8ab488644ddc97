package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/growth-audit/backend/logging"
)

// Gin context keys set by this middleware and by the audit handler.
const (
	RequestIDKey = "requestID"
	AuditURLKey  = "auditURL"
)

// Stats tracks visitors and request latency, tagging every request with an
// ID so handler log lines can be correlated.
func Stats(statistics *logging.Statistics, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := uuid.NewString()
		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		statistics.TrackVisitor(c.ClientIP())

		c.Next()

		elapsed := time.Since(start)
		failed := c.Writer.Status() >= 400

		switch {
		case c.Request.URL.Path == "/api/audit" && c.Request.Method == "POST":
			// The handler stores the audited URL after binding the body.
			statistics.TrackAudit(c.GetString(AuditURLKey), float64(elapsed.Milliseconds()), failed)
		case c.Request.URL.Path == "/api/generate-mockup":
			statistics.TrackMockup(failed)
		}

		log.WithFields(logrus.Fields{
			"requestID": requestID,
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  elapsed.String(),
			"ip":        c.ClientIP(),
		}).Debug("Request completed")
	}
}

package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ContextKeyRequestID = "request_id"

// RequestID injects an X-Request-ID header into the request and response.
// Pipeline runs log with the same id, so one scan's output can be followed
// end to end across the access log.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// Logger writes one access line per request with the request id, the
// authenticated user when present, status, and latency. Health probes are
// not logged; orchestrators poll them every few seconds.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if path == "/healthz" || path == "/readyz" {
			return
		}

		line := "[" + c.GetString(ContextKeyRequestID) + "] "
		if user := c.GetString(ContextKeyUserID); user != "" {
			line += "user=" + user + " "
		}
		log.Printf("%s%s %s %d %s",
			line,
			c.Request.Method,
			path,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}

// Recovery turns a panic into a 500 envelope, logged under the request id.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err interface{}) {
		log.Printf("[%s] panic recovered: %v", c.GetString(ContextKeyRequestID), err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "INTERNAL", "message": "internal server error"},
		})
	})
}

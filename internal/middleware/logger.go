package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request with its route, status and latency.
func RequestLogger(logger *log.Entry) gin.HandlerFunc {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		fields := log.Fields{
			"method":   c.Request.Method,
			"route":    route,
			"status":   c.Writer.Status(),
			"total_ms": float64(time.Since(start)) / float64(time.Millisecond),
		}
		if len(c.Errors) > 0 {
			fields["error"] = c.Errors.String()
		}

		entry := logger.WithFields(fields)
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("http.request")
		case c.Writer.Status() >= 400:
			entry.Warn("http.request")
		default:
			entry.Debug("http.request")
		}
	}
}

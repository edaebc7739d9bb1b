package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID assigns each request an ID, reusing an inbound X-Request-ID when
// the caller supplies one. The ID is stored in the context and echoed in the
// response so pipeline log lines can be correlated with a single upload.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// Logger writes one line per request after the handler chain completes.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		id, _ := c.Get("request_id")
		log.Printf("http: [%v] %s %s -> %d in %s (%d bytes)",
			id, c.Request.Method, path, c.Writer.Status(), time.Since(start), c.Writer.Size())
	}
}

// Recovery converts panics into 500 responses.
func Recovery() gin.HandlerFunc {
	return gin.Recovery()
}

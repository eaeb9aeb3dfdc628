// Package admin runs the small read-only HTTP surface each node exposes
// next to its wire-protocol listener: health and stats for operators and
// load balancers that want to probe liveness, independent of the
// cmd=VERB&key=... protocol the ring and map actually speak.
package admin

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger logs every admin request with method, path, status, and latency.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[admin] %s %s | %d | %s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}

// Recovery turns a panic in a handler into a 500 instead of crashing the
// admin server.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[admin] PANIC recovered: %v", err)
				c.AbortWithStatusJSON(500, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
)

// Serialize runs the downstream handlers one request at a time. The facade
// caches are not safe for concurrent use, so every route that reaches them
// shares one lock.
func Serialize(mu *sync.Mutex) gin.HandlerFunc {
	return func(c *gin.Context) {
		mu.Lock()
		defer mu.Unlock()
		c.Next()
	}
}

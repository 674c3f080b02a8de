// internal/interfaces/http/middleware/session.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextSessionID is the context key holding the guest session ID
const ContextSessionID = "session_id"

// SessionHeader carries the anonymous session ID. Clients send the value
// back on every request; a missing or empty header gets a fresh ID which
// is echoed in the response for the client to keep.
const SessionHeader = "X-Session-ID"

// SessionMiddleware ensures every request carries a guest session ID so
// anonymous carts have a stable owner.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		if sessionID == "" || len(sessionID) > 64 {
			sessionID = uuid.NewString()
		}

		c.Set(ContextSessionID, sessionID)
		c.Header(SessionHeader, sessionID)
		c.Next()
	}
}

// GetSessionIDFromContext returns the guest session ID
func GetSessionIDFromContext(c *gin.Context) string {
	if value, exists := c.Get(ContextSessionID); exists {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}

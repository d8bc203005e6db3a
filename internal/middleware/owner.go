package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OwnerIDHeader carries the pre-authenticated caller identity. The
// authentication layer in front of this service sets it; this core only
// requires it to be present.
const OwnerIDHeader = "X-Owner-ID"

const ownerIDKey = contextKey("ownerID")

// OwnerMiddleware extracts the owner id header and stores it in the Gin
// context, rejecting requests without one.
func OwnerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := c.GetHeader(OwnerIDHeader)
		if ownerID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": OwnerIDHeader + " header required"})
			return
		}
		c.Set(string(ownerIDKey), ownerID)
		c.Next()
	}
}

// GetOwnerIDFromContext retrieves the owner id set by OwnerMiddleware.
func GetOwnerIDFromContext(c *gin.Context) (string, bool) {
	v, exists := c.Get(string(ownerIDKey))
	if !exists {
		return "", false
	}
	ownerID, ok := v.(string)
	if !ok || ownerID == "" {
		return "", false
	}
	return ownerID, true
}

package middleware

import "github.com/gin-gonic/gin"

// userIDKey and orgIDKey hold the authenticated caller's identity in the
// request context. Using a custom type prevents collisions.
const (
	userIDKey = contextKey("userID")
	orgIDKey  = contextKey("orgID")
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if val := c.Request.Context().Value(userIDKey); val != nil {
		userID, ok := val.(string)
		return userID, ok
	}
	return "", false
}

// GetOrgIDFromContext retrieves the authenticated caller's organization ID
// from the Gin context. Every tenant-scoped handler resolves the organization
// this way and passes it down as an explicit parameter.
func GetOrgIDFromContext(c *gin.Context) (string, bool) {
	if val := c.Request.Context().Value(orgIDKey); val != nil {
		orgID, ok := val.(string)
		return orgID, ok
	}
	return "", false
}

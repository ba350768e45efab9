package middleware

import (
	"context"
	"log"
	"net/http"

	"elearning-service/internal/models"
	"elearning-service/internal/service"

	"github.com/gin-gonic/gin"
)

const userContextKey = "currentUser"

// Identity resolves the caller from the gateway-asserted identity headers
// and mirrors it into the local user record. Handlers behind this
// middleware can rely on CurrentUser returning a synced user.
func Identity(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		externalID := c.GetHeader("X-User-ID")
		if externalID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}

		identity := service.Identity{
			ExternalID: externalID,
			Email:      c.GetHeader("X-User-Email"),
			Name:       c.GetHeader("X-User-Name"),
			Role:       c.GetHeader("X-User-Role"),
		}
		user, err := users.SyncUser(context.Background(), identity)
		if err != nil {
			log.Printf("identity sync failed for %s: %v", externalID, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireAdmin rejects callers whose synced role is not admin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized as an admin."})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the synced user set by Identity, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lokeshbavandla/shophub-ecommerce-app/models"
	"github.com/lokeshbavandla/shophub-ecommerce-app/repository"
	"github.com/lokeshbavandla/shophub-ecommerce-app/services"
)

// UserKey is the gin context key holding the authenticated *models.User.
const UserKey = "user"

// ProtectRoute authenticates the request from the accessToken cookie and
// attaches the user document to the context.
func ProtectRoute(tokens *services.TokenService, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie("accessToken")
		if err != nil || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized - No access token provided"})
			return
		}

		userID, err := tokens.VerifyAccessToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized - Invalid access token"})
			return
		}

		oid, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized - Invalid access token"})
			return
		}

		user, err := users.FindByID(c.Request.Context(), oid)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found"})
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// AdminRoute requires the authenticated user to have the admin role. Must
// run after ProtectRoute.
func AdminRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || user.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied - Admin only"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user attached by ProtectRoute.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(UserKey)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

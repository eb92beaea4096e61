package middleware

import (
	"net/http"
	"strings"

	"github.com/DHFin/dhf-pay-back-private/internal/models"
	"github.com/DHFin/dhf-pay-back-private/internal/repository"

	"github.com/gin-gonic/gin"
)

const (
	ctxToken = "bearer_token"
	ctxUser  = "auth_user"
)

// BearerToken requires an Authorization: Bearer header and stashes the
// raw token. The token may be either a user token or a store API key;
// handlers resolve it as needed.
func BearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token not found"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		c.Set(ctxToken, parts[1])
		c.Next()
	}
}

// UserRequired resolves the bearer token to a user record. Must run
// after BearerToken.
func UserRequired(users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.GetByToken(GetToken(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.Set(ctxUser, user)
		c.Next()
	}
}

func GetToken(c *gin.Context) string {
	return c.GetString(ctxToken)
}

func GetUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ctxUser); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vidtube/api/internal/repository"
	"vidtube/api/internal/security"
)

const CurrentUserKey = "current_user"

// Auth authenticates a request from the access token, taken from the
// accessToken cookie or a bearer header. Access tokens are stateless; no
// session lookup happens here.
func Auth(issuer *security.TokenIssuer, users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerOrCookie(c)
		if tokenStr == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := issuer.Verify(tokenStr, security.TokenKindAccess)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

func bearerOrCookie(c *gin.Context) string {
	if token, err := c.Cookie("accessToken"); err == nil && token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"statusCode": http.StatusUnauthorized,
		"message":    "invalid or expired session",
		"success":    false,
		"errors":     []string{},
	})
}

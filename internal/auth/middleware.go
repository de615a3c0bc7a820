package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/EmptyEmeraldTablet/blankpage/internal/dto"
)

// BearerToken extracts the token from the Authorization header.
// Returns "" if the header is missing or not a Bearer scheme.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// RequireToken returns a middleware that checks the Authorization header
// for a live bearer token. Missing, malformed, or expired tokens get 401;
// there is no refresh, the caller is expected to log in again.
func RequireToken(tokens *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: dto.CodeUnauthorized})
			return
		}
		ok, err := tokens.Exists(c.Request.Context(), token)
		if err != nil || !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: dto.CodeUnauthorized})
			return
		}
		c.Next()
	}
}

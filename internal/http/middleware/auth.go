package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// ctxKeyUserID is the Gin context key holding the authenticated user id.
	ctxKeyUserID = "userID"
	// ctxKeyUsername is the Gin context key holding the authenticated username.
	ctxKeyUsername = "username"
)

// RequireAuth guards a route group with bearer-token authentication. The
// Authorization header must carry an HS256 JWT signed with secret; the token's
// "sub" claim becomes the request's user id. Anything else is a 401, always
// with the same body so callers learn nothing about why the token failed.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			unauthorized(c)
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			unauthorized(c)
			return
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			unauthorized(c)
			return
		}
		c.Set(ctxKeyUserID, sub)
		if name, _ := claims["username"].(string); name != "" {
			c.Set(ctxKeyUsername, name)
		}
		c.Next()
	}
}

// UserIDFrom returns the authenticated user id set by RequireAuth, or "".
func UserIDFrom(c *gin.Context) string {
	return c.GetString(ctxKeyUserID)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme check is case-insensitive.
func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": RequestIDFrom(c),
		"code":       "unauthorized",
		"message":    "missing or invalid access token",
	})
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/tracker/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for storing the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// UsernameKey is the context key for storing the authenticated username.
	UsernameKey contextKey = "username"
)

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// GetUsername extracts the username from the context.
// Returns empty string if not found.
func GetUsername(ctx context.Context) string {
	username, _ := ctx.Value(UsernameKey).(string)
	return username
}

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, userID, username string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, UsernameKey, username)
}

// RequireAuth returns a middleware that validates bearer access tokens.
// It extracts the token from the Authorization header, validates it, and
// adds the user ID and username to the request context. Requests without a
// valid access token are rejected with 401.
func RequireAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			Reject(c, auth.ErrMissingToken)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			Unauthorized(c, "Authorization header must contain two space-delimited values: Bearer <token>.")
			return
		}

		claims, err := jwtManager.Validate(parts[1], auth.AccessToken)
		if err != nil {
			Reject(c, err)
			return
		}

		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), claims.UserID, claims.Username))
		c.Next()
	}
}

// tokenDetails maps auth package errors to client-facing details.
var tokenDetails = []struct {
	err    error
	detail string
}{
	{auth.ErrMissingToken, "Authentication credentials were not provided."},
	{auth.ErrInvalidToken, "Given token not valid for any token type."},
}

// Reject aborts with a 401 describing a token error from the auth package.
func Reject(c *gin.Context, err error) {
	for _, td := range tokenDetails {
		if errors.Is(err, td.err) {
			Unauthorized(c, td.detail)
			return
		}
	}
	Unauthorized(c, "Authentication failed.")
}

// Unauthorized aborts the request with a 401 and a bearer challenge.
func Unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}

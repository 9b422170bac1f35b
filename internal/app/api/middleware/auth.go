package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"

	"github.com/rotbot/rotbot-api/pkg/config"
	"github.com/rotbot/rotbot-api/pkg/logctx"
	"github.com/rotbot/rotbot-api/pkg/response"
)

const (
	// UserIDKey and DisplayNameKey are the gin keys set for authenticated requests.
	UserIDKey      = "user_id"
	DisplayNameKey = "display_name"
)

var (
	ErrMissingToken      = errors.New("missing bearer token")
	ErrInvalidToken      = errors.New("invalid token")
	ErrAuthNotConfigured = errors.New("auth is not configured")
)

// Claims are the parts of a Supabase access token we read.
type Claims struct {
	jwt.StandardClaims
	Email        string `json:"email,omitempty"`
	UserMetadata struct {
		Name     string `json:"name,omitempty"`
		FullName string `json:"full_name,omitempty"`
	} `json:"user_metadata"`
}

func (c *Claims) DisplayName() string {
	if n := strings.TrimSpace(c.UserMetadata.Name); n != "" {
		return n
	}
	return strings.TrimSpace(c.UserMetadata.FullName)
}

// Authenticator verifies HS256 access tokens signed with the project's JWT secret.
type Authenticator struct {
	secret []byte
	log    *zap.SugaredLogger
}

func NewAuthenticator(cfg *config.Config, log *zap.SugaredLogger) *Authenticator {
	return &Authenticator{secret: []byte(strings.TrimSpace(cfg.Auth.JWTSecret)), log: log}
}

// Parse validates a raw token and returns its claims.
func (a *Authenticator) Parse(raw string) (*Claims, error) {
	if len(a.secret) == 0 {
		return nil, ErrAuthNotConfigured
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// authenticate attaches the caller to the request. A missing token returns ErrMissingToken.
func (a *Authenticator) authenticate(c *gin.Context) error {
	raw := bearerToken(c)
	if raw == "" {
		return ErrMissingToken
	}
	claims, err := a.Parse(raw)
	if err != nil {
		return err
	}

	userID := claims.Subject
	c.Set(UserIDKey, userID)
	c.Set(DisplayNameKey, claims.DisplayName())

	ctx := context.WithValue(c.Request.Context(), logctx.UserIDKey, userID)
	l := logctx.FromGin(c, a.log).With("user_id", userID)
	c.Set(string(logctx.LoggerKey), l)
	c.Request = c.Request.WithContext(logctx.WithLogger(ctx, l))
	return nil
}

func (a *Authenticator) abort(c *gin.Context, err error) {
	logctx.FromGin(c, a.log).Infow("auth_rejected", "err", err)
	c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, err.Error()))
}

// RequireAuth rejects requests without a valid token.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.authenticate(c); err != nil {
			a.abort(c, err)
			return
		}
		c.Next()
	}
}

// OptionalAuth lets anonymous requests through but rejects bad or unverifiable tokens.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.authenticate(c); err != nil && !errors.Is(err, ErrMissingToken) {
			a.abort(c, err)
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, or "".
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func DisplayName(c *gin.Context) string {
	return c.GetString(DisplayNameKey)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rotbot/rotbot-api/pkg/config"
	"github.com/rotbot/rotbot-api/pkg/logctx"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(sub string) *Claims {
	c := &Claims{StandardClaims: jwt.StandardClaims{Subject: sub, ExpiresAt: time.Now().Add(time.Hour).Unix()}}
	c.UserMetadata.Name = "Vex"
	return c
}

func newAuthRouter(secret string, mw func(*Authenticator) gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	a := NewAuthenticator(&config.Config{Auth: config.AuthConfig{JWTSecret: secret}}, zap.NewNop().Sugar())
	r := gin.New()
	r.GET("/me", mw(a), func(c *gin.Context) {
		ctxUser, _ := c.Request.Context().Value(logctx.UserIDKey).(string)
		c.JSON(http.StatusOK, gin.H{"user": UserID(c), "name": DisplayName(c), "ctx_user": ctxUser})
	})
	return r
}

func doGet(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r := newAuthRouter(testSecret, (*Authenticator).RequireAuth)

	w := doGet(r, signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("u1")))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"user":"u1","name":"Vex","ctx_user":"u1"}`, w.Body.String())

	require.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
	require.Equal(t, http.StatusUnauthorized, doGet(r, "not-a-jwt").Code)
	require.Equal(t, http.StatusUnauthorized, doGet(r, signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims("u1"))).Code)

	expired := validClaims("u1")
	expired.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	require.Equal(t, http.StatusUnauthorized, doGet(r, signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired)).Code)

	require.Equal(t, http.StatusUnauthorized, doGet(r, signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(""))).Code)
}

func TestRequireAuth_RejectsOtherAlgorithms(t *testing.T) {
	r := newAuthRouter(testSecret, (*Authenticator).RequireAuth)
	token := signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims("u1"))
	require.Equal(t, http.StatusUnauthorized, doGet(r, token).Code)
}

func TestOptionalAuth(t *testing.T) {
	r := newAuthRouter(testSecret, (*Authenticator).OptionalAuth)

	w := doGet(r, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"user":"","name":"","ctx_user":""}`, w.Body.String())

	require.Equal(t, http.StatusUnauthorized, doGet(r, "garbage").Code)
}

func TestAuth_NotConfigured(t *testing.T) {
	r := newAuthRouter("", (*Authenticator).RequireAuth)
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("u1"))
	require.Equal(t, http.StatusUnauthorized, doGet(r, token).Code)
}

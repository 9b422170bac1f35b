package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mw "github.com/rotbot/rotbot-api/internal/app/api/middleware"
	"github.com/rotbot/rotbot-api/pkg/config"
)

const testJWTSecret = "handler-test-jwt-secret"

func newTestAuth() *mw.Authenticator {
	return mw.NewAuthenticator(&config.Config{Auth: config.AuthConfig{JWTSecret: testJWTSecret}}, zap.NewNop().Sugar())
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	claims := &mw.Claims{StandardClaims: jwt.StandardClaims{Subject: userID, ExpiresAt: time.Now().Add(time.Hour).Unix()}}
	claims.UserMetadata.Name = "Vex"
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case []byte:
			buf.Write(b)
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// envelope decodes the {code,message,data} body of /api/v1 responses.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code)
	var e envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

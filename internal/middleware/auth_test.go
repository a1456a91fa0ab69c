package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/agenda-engine/internal/config"
	"github.com/BruksfildServices01/agenda-engine/internal/credentials"
)

const secret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.com"}))
	r.GET("/me", AuthMiddleware(&config.Config{JWTSecret: secret}), func(c *gin.Context) {
		token, _ := credentials.FromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"user":     c.GetString(ContextUserID),
			"business": c.GetString(ContextBusinessID),
			"role":     c.GetString(ContextUserRole),
			"token":    token,
		})
	})
	return r
}

func get(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_Valid(t *testing.T) {
	token := sign(t, jwt.MapClaims{
		"sub":        "u1",
		"businessId": float64(42),
		"role":       "owner",
		"exp":        time.Now().Add(time.Hour).Unix(),
	}, secret)

	w := get(newRouter(), "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"u1","business":"42","role":"owner","token":"`+token+`"}`, w.Body.String())
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	r := newRouter()

	expired := sign(t, jwt.MapClaims{"sub": "u1", "businessId": "b1", "exp": time.Now().Add(-time.Hour).Unix()}, secret)
	wrongKey := sign(t, jwt.MapClaims{"sub": "u1", "businessId": "b1"}, "other")
	noBusiness := sign(t, jwt.MapClaims{"sub": "u1"}, secret)

	cases := map[string]string{
		"":                     "missing_authorization_header",
		"Token abc":            "invalid_authorization_header",
		"Bearer " + expired:    "invalid_token",
		"Bearer " + wrongKey:   "invalid_token",
		"Bearer " + noBusiness: "invalid_token_payload",
	}

	for header, code := range cases {
		w := get(r, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.Contains(t, w.Body.String(), code)
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/me", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_UnknownOriginGetsNoHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/me", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

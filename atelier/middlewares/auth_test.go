package middlewares

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"atelier/atelier/auth"
	"atelier/atelier/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(t *testing.T, cfg config.Config) (http.Handler, *uuid.UUID) {
	t.Helper()
	var seen uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserID(r.Context())
		require.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusOK)
	})
	return AuthMiddleware(cfg)(next), &seen
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	cfg := config.Config{JWTSecret: "s3cret"}
	userID := uuid.New()
	token, err := auth.GenerateToken(userID.String(), []byte(cfg.JWTSecret), time.Hour)
	require.NoError(t, err)

	handler, seen := protected(t, cfg)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, userID, *seen)
}

func TestAuthMiddleware_Failures(t *testing.T) {
	cfg := config.Config{JWTSecret: "s3cret"}
	expired, err := auth.GenerateToken(uuid.NewString(), []byte(cfg.JWTSecret), -time.Minute)
	require.NoError(t, err)
	foreign, err := auth.GenerateToken(uuid.NewString(), []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage token":  "Bearer not.a.jwt",
		"expired":        "Bearer " + expired,
		"wrong secret":   "Bearer " + foreign,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			handler, _ := protected(t, cfg)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

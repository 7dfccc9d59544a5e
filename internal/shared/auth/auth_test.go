package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	v := NewVerifier("secret")
	var seen string
	h := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	token, err := v.Sign("user-42", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "user-42", seen)
}

func TestMiddlewareRejects(t *testing.T) {
	v := NewVerifier("secret")
	other, err := NewVerifier("other").Sign("user-42", time.Minute)
	require.NoError(t, err)
	expired, err := v.Sign("user-42", -time.Minute)
	require.NoError(t, err)

	h := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer " + other, "Bearer " + expired, "Bearer garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestEmptySecretNeverVerifies(t *testing.T) {
	_, err := NewVerifier("").UserID("anything")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

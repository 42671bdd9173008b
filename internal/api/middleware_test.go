package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuth_MissingHeader(t *testing.T) {
	ts := setupServer(t)

	status, envelope := ts.request(t, http.MethodGet, "/api/v1/users/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, envelope.Success)
}

func TestRequireAuth_GarbageToken(t *testing.T) {
	ts := setupServer(t)

	status, _ := ts.request(t, http.MethodGet, "/api/v1/users/me", "not-a-real-token", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestRequireAuth_WriteRoutesProtected(t *testing.T) {
	ts := setupServer(t)

	status, _ := ts.request(t, http.MethodPost, "/api/v1/books", "", map[string]string{
		"title":       "Anonymous",
		"description": "should not land",
	})
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.RateLimit.RPS = 1
	cfg.RateLimit.Burst = 2
	ts := setupServerWithConfig(t, cfg)

	var limited bool
	for range 5 {
		status, _ := ts.request(t, http.MethodGet, "/health", "", nil)
		if status == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited, "expected a 429 after the burst is spent")
}

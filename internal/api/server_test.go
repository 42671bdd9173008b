package api_test

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/api"
	"github.com/inkwellapp/inkwell-server/internal/auth"
	"github.com/inkwellapp/inkwell-server/internal/config"
	"github.com/inkwellapp/inkwell-server/internal/events"
	"github.com/inkwellapp/inkwell-server/internal/http/response"
	"github.com/inkwellapp/inkwell-server/internal/logger"
	"github.com/inkwellapp/inkwell-server/internal/media/images"
	"github.com/inkwellapp/inkwell-server/internal/ratelimit"
	"github.com/inkwellapp/inkwell-server/internal/service"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/trigger"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// testServer wires a full server against a temp-dir store.
type testServer struct {
	handler http.Handler
	bus     *events.Bus
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	return setupServerWithConfig(t, testConfig(t.TempDir()))
}

func testConfig(dir string) *config.Config {
	return &config.Config{
		App:    config.AppConfig{Environment: "development"},
		Logger: config.LoggerConfig{Level: "error"},
		Data:   config.DataConfig{BasePath: dir},
		Server: config.ServerConfig{
			Port:           "0",
			AllowedOrigins: []string{"*"},
		},
		Auth: config.AuthConfig{
			AccessTokenKey:      strings.Repeat("0f", 32),
			AccessTokenDuration: time.Hour,
		},
		RateLimit: config.RateLimitConfig{RPS: 1000, Burst: 1000},
		Upload:    config.UploadConfig{MaxBytes: 10 << 20},
	}
}

func setupServerWithConfig(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()

	log := logger.Discard()

	bus := events.NewBus(log.Logger)
	s, err := store.New(filepath.Join(cfg.Data.BasePath, "db"), log.Logger, bus)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	trigger.Register(bus, s, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Start(ctx)

	tokens, err := auth.NewTokenService(cfg.Auth.AccessTokenKey, cfg.Auth.AccessTokenDuration)
	require.NoError(t, err)

	covers, err := images.NewStorage(cfg.Data.MediaPath(), "covers")
	require.NoError(t, err)
	avatars, err := images.NewStorage(cfg.Data.MediaPath(), "avatars")
	require.NoError(t, err)

	limiter := ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	t.Cleanup(limiter.Stop)

	v := validation.New()
	server := api.NewServer(
		cfg,
		tokens,
		service.NewAuthService(s, tokens, v, log.Logger),
		service.NewBookService(s, covers, v, log.Logger),
		service.NewChapterService(s, v, log.Logger),
		service.NewSocialService(s, v, log.Logger),
		service.NewNotificationService(s, log.Logger),
		service.NewUserService(s, avatars, v, log.Logger),
		limiter,
		log.Logger,
	)
	return &testServer{handler: server, bus: bus}
}

// request performs an HTTP request against the server and decodes the
// envelope. A non-empty token is sent as a Bearer credential.
func (ts *testServer) request(t *testing.T, method, path, token string, body any) (int, response.Envelope) {
	t.Helper()

	var reader *bytes.Reader
	if raw, ok := body.([]byte); ok {
		reader = bytes.NewReader(raw)
	} else if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var envelope response.Envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	}
	return rec.Code, envelope
}

// signup registers a user and returns their access token.
func (ts *testServer) signup(t *testing.T, handle string) string {
	t.Helper()

	status, envelope := ts.request(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"handle":   handle,
		"email":    handle + "@example.com",
		"password": "a long enough password",
	})
	require.Equal(t, http.StatusCreated, status)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok, "unexpected data shape: %v", envelope.Data)
	token, ok := data["token"].(string)
	require.True(t, ok)
	return token
}

// createBook publishes a book and returns its ID.
func (ts *testServer) createBook(t *testing.T, token, title string) string {
	t.Helper()

	status, envelope := ts.request(t, http.MethodPost, "/api/v1/books", token, map[string]string{
		"title":       title,
		"description": "a description",
	})
	require.Equal(t, http.StatusCreated, status)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	id, ok := data["id"].(string)
	require.True(t, ok)
	return id
}

func TestHealthCheck(t *testing.T) {
	ts := setupServer(t)

	status, envelope := ts.request(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.True(t, envelope.Success)
}

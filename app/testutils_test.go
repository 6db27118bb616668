package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/bloglist/internal/blogservice"
	"github.com/sushihentaime/bloglist/internal/common"
	"github.com/sushihentaime/bloglist/internal/memstore"
	"github.com/sushihentaime/bloglist/internal/userservice"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

// newTestApplication wires the application against an in-memory store.
func newTestApplication(t *testing.T) (*application, *userservice.TokenManager) {
	t.Helper()

	cfg := &Config{
		Environment:   "testing",
		Version:       "1.0.0",
		StorageDriver: "memory",
		JWTSecret:     "test-secret",
		JWTIssuer:     "bloglist",
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memstore.New()
	metrics := common.NewMetrics()

	tokens, err := userservice.NewTokenManager(userservice.TokenConfig{
		SigningSecret: []byte(cfg.JWTSecret),
		Issuer:        cfg.JWTIssuer,
		TTL:           time.Hour,
	})
	require.NoError(t, err)

	app := &application{
		config:      cfg,
		logger:      logger,
		metrics:     metrics,
		userService: userservice.NewUserService(store, tokens),
		blogService: blogservice.NewBlogService(store, common.NewCache(time.Minute, 2*time.Minute), nil, metrics, logger),
	}

	return app, tokens
}

func (ts *testServer) do(t *testing.T, method, path, token string, payload any) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res.StatusCode, responseBody
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))

	return v
}

// registerAndLogin creates a user through the API and returns its login token.
func (ts *testServer) registerAndLogin(t *testing.T, username string) userservice.AuthToken {
	t.Helper()

	status, body := ts.do(t, http.MethodPost, "/api/users", "", map[string]string{
		"username": username,
		"name":     "Test " + username,
		"password": "salainen",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = ts.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"username": username,
		"password": "salainen",
	})
	require.Equal(t, http.StatusOK, status, string(body))

	return decode[userservice.AuthToken](t, body)
}

func (ts *testServer) createBlog(t *testing.T, token string, payload map[string]any) blogservice.Blog {
	t.Helper()

	status, body := ts.do(t, http.MethodPost, "/api/blogs", token, payload)
	require.Equal(t, http.StatusCreated, status, string(body))

	return decode[blogservice.Blog](t, body)
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlaslearn/atlas/backend/llm"
	"github.com/atlaslearn/atlas/backend/repository"
	"github.com/atlaslearn/atlas/backend/sarvam"
)

type testEnv struct {
	store    *repository.MemoryRepository
	server   *httptest.Server
	client   *http.Client
	cacheDir string
}

type envOptions struct {
	provider      llm.Provider
	interviewURL  string
	summarizerURL string
	sarvamURL     string
}

// unreachableURL returns the address of a server that is already closed.
func unreachableURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	if opts.interviewURL == "" {
		opts.interviewURL = unreachableURL(t)
	}
	if opts.summarizerURL == "" {
		opts.summarizerURL = unreachableURL(t)
	}

	cfg := &Config{
		Server:   ServerConfig{Port: "0", Environment: "test"},
		Database: DatabaseConfig{Driver: DriverMemory},
		AI:       llm.Config{Provider: "none"},
		Upstream: UpstreamConfig{
			InterviewURL:      opts.interviewURL,
			InterviewTimeout:  2 * time.Second,
			SummarizerURL:     opts.summarizerURL,
			SummarizerTimeout: 2 * time.Second,
		},
		JWT:       JWTConfig{Secret: "test-secret"},
		WebSocket: WebSocketConfig{AllowedOrigins: "http://localhost:3000"},
		Audio:     AudioConfig{CacheDir: t.TempDir()},
	}
	if opts.sarvamURL != "" {
		cfg.Sarvam = sarvam.Config{APIKey: "test-key", BaseURL: opts.sarvamURL, Timeout: 2 * time.Second}
	}

	store := repository.NewMemoryRepository()
	server := NewServer(cfg, store)
	if opts.provider != nil {
		server.SetProvider(opts.provider)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, server.InitializeServices(ctx))

	srv := httptest.NewServer(server.SetupRoutes())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{store: store, server: srv, client: &http.Client{Jar: jar}, cacheDir: cfg.Audio.CacheDir}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func (e *testEnv) post(t *testing.T, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	return e.do(t, http.MethodPost, path, body)
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, map[string]any) {
	t.Helper()
	return e.do(t, http.MethodGet, path, nil)
}

// signup registers and signs in a student on the env's cookie jar.
func (e *testEnv) signup(t *testing.T, email string) {
	t.Helper()
	resp, _ := e.post(t, "/api/auth/signup", map[string]string{
		"name":     "Asha",
		"email":    email,
		"password": "secret123",
		"standard": "10th",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	resp, body := env.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "not configured", body["database"])
}

func TestInitializeServicesRequiresSecretInProduction(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Environment: "production"},
		Database: DatabaseConfig{Driver: DriverMemory},
		AI:       llm.Config{Provider: "none"},
		Audio:    AudioConfig{CacheDir: t.TempDir()},
	}
	server := NewServer(cfg, repository.NewMemoryRepository())
	err := server.InitializeServices(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret")
}

func TestResolveDriver(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{"empty url", DatabaseConfig{}, DriverMemory},
		{"postgres url", DatabaseConfig{URL: "postgres://localhost/atlas"}, DriverPostgres},
		{"mongo url", DatabaseConfig{URL: "mongodb://localhost:27017"}, DriverMongo},
		{"mongo srv url", DatabaseConfig{URL: "mongodb+srv://cluster.example.net"}, DriverMongo},
		{"explicit driver wins", DatabaseConfig{Driver: DriverMemory, URL: "postgres://localhost/atlas"}, DriverMemory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.ResolveDriver())
		})
	}
}

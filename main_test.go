package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svc "github.com/atlaslearn/atlas/backend/services"
)

// The tutor socket only accepts the origins listed in the deployment's
// env file: the React dev server and the hosted frontend.
func TestTutorSocketOrigins(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "atlas.env")
	content := "WEBSOCKET_ALLOWED_ORIGINS=\"http://localhost:3000, https://learn.atlas.example\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	cfg := svc.LoadConfig(path)

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"react dev server", "http://localhost:3000", true},
		{"hosted frontend", "https://learn.atlas.example", true},
		{"interview service port", "http://localhost:5001", false},
		{"plain http to hosted frontend", "http://learn.atlas.example", false},
		{"trailing slash", "https://learn.atlas.example/", false},
		{"other site", "https://quiz-answers.example", false},
		{"no origin header", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/chat/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, svc.CheckOrigin(req, cfg.WebSocket.AllowedOrigins))
		})
	}
}

func TestTutorSocketRejectsAllWithoutConfiguredOrigins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/chat/ws", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	assert.False(t, svc.CheckOrigin(req, ""))
}

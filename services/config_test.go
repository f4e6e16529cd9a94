package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.False(t, cfg.Server.Production())
	assert.Equal(t, "atlas", cfg.Database.Name)
	assert.Equal(t, DriverMemory, cfg.Database.ResolveDriver())
	assert.Equal(t, "http://localhost:5001", cfg.Upstream.InterviewURL)
	assert.Equal(t, 3*time.Second, cfg.Upstream.InterviewTimeout)
	assert.Equal(t, "http://localhost:5000", cfg.Upstream.SummarizerURL)
	assert.Equal(t, 5*time.Second, cfg.Upstream.SummarizerTimeout)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Gemini.Model)
	assert.Equal(t, "en", cfg.Sarvam.DefaultLanguage)
	assert.Equal(t, "./audio_cache", cfg.Audio.CacheDir)
}

func TestLoadConfigFromFileAndEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "atlas.env")
	content := "SERVER_PORT=9090\nJWT_SECRET=from-file\nINTERVIEW_API_URL=http://interview:5001\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("WEBSOCKET_ALLOWED_ORIGINS", "http://localhost:3000")
	t.Setenv("DATABASE_URL", "mongodb://db:27017")

	cfg := LoadConfig(path)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, "http://interview:5001", cfg.Upstream.InterviewURL)
	assert.Equal(t, "http://localhost:3000", cfg.WebSocket.AllowedOrigins)
	assert.Equal(t, DriverMongo, cfg.Database.ResolveDriver())
}

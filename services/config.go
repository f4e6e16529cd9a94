package services

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/atlaslearn/atlas/backend/llm"
	"github.com/atlaslearn/atlas/backend/sarvam"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	AI        llm.Config
	Sarvam    sarvam.Config
	Upstream  UpstreamConfig
	JWT       JWTConfig
	WebSocket WebSocketConfig
	Audio     AudioConfig
}

type ServerConfig struct {
	Port        string
	Environment string
}

func (c ServerConfig) Production() bool {
	return c.Environment == "production"
}

type DatabaseConfig struct {
	// Driver is postgres, mongo or memory.
	Driver       string
	URL          string
	Name         string
	Seed         bool
	LogLevel     string
	MaxIdleConns int
	MaxOpenConns int
}

// UpstreamConfig points at the interview and summarizer services.
type UpstreamConfig struct {
	InterviewURL      string
	InterviewTimeout  time.Duration
	SummarizerURL     string
	SummarizerTimeout time.Duration
}

type JWTConfig struct {
	Secret string
}

type WebSocketConfig struct {
	AllowedOrigins string
}

type AudioConfig struct {
	CacheDir string
}

// envBindings maps config keys to their environment variables. The same
// names are accepted as keys in the .env file.
var envBindings = []struct {
	key  string
	envs []string
}{
	{"server.port", []string{"SERVER_PORT"}},
	{"server.environment", []string{"ENVIRONMENT"}},
	{"database.driver", []string{"DATABASE_DRIVER"}},
	{"database.url", []string{"DATABASE_URL", "MONGODB_URI"}},
	{"database.name", []string{"DATABASE_NAME"}},
	{"database.seed", []string{"DATABASE_SEED"}},
	{"database.log_level", []string{"DATABASE_LOG_LEVEL"}},
	{"database.max_idle_conns", []string{"DATABASE_MAX_IDLE_CONNS"}},
	{"database.max_open_conns", []string{"DATABASE_MAX_OPEN_CONNS"}},
	{"ai.provider", []string{"AI_PROVIDER"}},
	{"ai.timeout", []string{"AI_TIMEOUT"}},
	{"gemini.api_key", []string{"GEMINI_API_KEY"}},
	{"gemini.model", []string{"GEMINI_MODEL"}},
	{"openai.api_key", []string{"OPENAI_API_KEY"}},
	{"openai.model", []string{"OPENAI_MODEL"}},
	{"openai.base_url", []string{"OPENAI_BASE_URL"}},
	{"anthropic.api_key", []string{"ANTHROPIC_API_KEY"}},
	{"anthropic.model", []string{"ANTHROPIC_MODEL"}},
	{"sarvam.api_key", []string{"SARVAM_API_KEY"}},
	{"sarvam.base_url", []string{"SARVAM_BASE_URL"}},
	{"sarvam.timeout", []string{"SARVAM_TIMEOUT"}},
	{"sarvam.default_language", []string{"SARVAM_DEFAULT_LANGUAGE"}},
	{"upstream.interview_url", []string{"INTERVIEW_API_URL"}},
	{"upstream.interview_timeout", []string{"INTERVIEW_API_TIMEOUT"}},
	{"upstream.summarizer_url", []string{"SUMMARIZER_API_URL"}},
	{"upstream.summarizer_timeout", []string{"SUMMARIZER_API_TIMEOUT"}},
	{"jwt.secret", []string{"JWT_SECRET"}},
	{"websocket.allowed_origins", []string{"WEBSOCKET_ALLOWED_ORIGINS"}},
	{"audio.cache_dir", []string{"AUDIO_CACHE_DIR"}},
}

// applyFileValues copies VAR=value lines from the .env file onto their
// dotted keys unless the process environment already sets them.
func applyFileValues() {
	for _, b := range envBindings {
		for _, env := range b.envs {
			if _, set := os.LookupEnv(env); set {
				break
			}
			fileKey := strings.ToLower(env)
			if viper.InConfig(fileKey) {
				viper.Set(b.key, viper.Get(fileKey))
				break
			}
		}
	}
}

// LoadConfig loads configuration from environment variables and config
// files. An empty path means ./.env.
func LoadConfig(path string) *Config {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName(".env")
		viper.AddConfigPath(".")
	}
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	defaults := llm.DefaultConfig()

	// Set defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.environment", "development")
	viper.SetDefault("database.driver", "")
	viper.SetDefault("database.url", "")
	viper.SetDefault("database.name", "atlas")
	viper.SetDefault("database.seed", "false")
	viper.SetDefault("database.log_level", "silent")
	viper.SetDefault("database.max_idle_conns", "10")
	viper.SetDefault("database.max_open_conns", "100")
	viper.SetDefault("ai.provider", "")
	viper.SetDefault("ai.timeout", defaults.Timeout)
	viper.SetDefault("gemini.api_key", "")
	viper.SetDefault("gemini.model", "gemini-2.0-flash")
	viper.SetDefault("openai.api_key", "")
	viper.SetDefault("openai.model", defaults.OpenAI.Model)
	viper.SetDefault("openai.base_url", "")
	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("anthropic.model", defaults.Anthropic.Model)
	viper.SetDefault("sarvam.api_key", "")
	viper.SetDefault("sarvam.base_url", sarvam.DefaultBaseURL)
	viper.SetDefault("sarvam.timeout", 30*time.Second)
	viper.SetDefault("sarvam.default_language", sarvam.DefaultLanguage)
	viper.SetDefault("upstream.interview_url", "http://localhost:5001")
	viper.SetDefault("upstream.interview_timeout", 3*time.Second)
	viper.SetDefault("upstream.summarizer_url", "http://localhost:5000")
	viper.SetDefault("upstream.summarizer_timeout", 5*time.Second)
	viper.SetDefault("jwt.secret", "")
	viper.SetDefault("websocket.allowed_origins", "")
	viper.SetDefault("audio.cache_dir", "./audio_cache")

	// Map environment variables to config keys
	for _, b := range envBindings {
		viper.BindEnv(append([]string{b.key}, b.envs...)...)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("Config file not found, using defaults and environment variables")
		} else {
			slog.Error("Error reading config file", "error", err)
		}
	}
	applyFileValues()

	ai := defaults
	ai.Provider = viper.GetString("ai.provider")
	ai.Timeout = viper.GetDuration("ai.timeout")
	ai.Gemini = llm.GeminiConfig{
		APIKey: viper.GetString("gemini.api_key"),
		Model:  viper.GetString("gemini.model"),
	}
	ai.OpenAI = llm.OpenAIConfig{
		APIKey:  viper.GetString("openai.api_key"),
		Model:   viper.GetString("openai.model"),
		BaseURL: viper.GetString("openai.base_url"),
	}
	ai.Anthropic = llm.AnthropicConfig{
		APIKey: viper.GetString("anthropic.api_key"),
		Model:  viper.GetString("anthropic.model"),
	}

	return &Config{
		Server: ServerConfig{
			Port:        viper.GetString("server.port"),
			Environment: viper.GetString("server.environment"),
		},
		Database: DatabaseConfig{
			Driver:       viper.GetString("database.driver"),
			URL:          viper.GetString("database.url"),
			Name:         viper.GetString("database.name"),
			Seed:         viper.GetBool("database.seed"),
			LogLevel:     viper.GetString("database.log_level"),
			MaxIdleConns: viper.GetInt("database.max_idle_conns"),
			MaxOpenConns: viper.GetInt("database.max_open_conns"),
		},
		AI: ai,
		Sarvam: sarvam.Config{
			APIKey:          viper.GetString("sarvam.api_key"),
			BaseURL:         viper.GetString("sarvam.base_url"),
			Timeout:         viper.GetDuration("sarvam.timeout"),
			DefaultLanguage: viper.GetString("sarvam.default_language"),
		},
		Upstream: UpstreamConfig{
			InterviewURL:      viper.GetString("upstream.interview_url"),
			InterviewTimeout:  viper.GetDuration("upstream.interview_timeout"),
			SummarizerURL:     viper.GetString("upstream.summarizer_url"),
			SummarizerTimeout: viper.GetDuration("upstream.summarizer_timeout"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("jwt.secret"),
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins: viper.GetString("websocket.allowed_origins"),
		},
		Audio: AudioConfig{
			CacheDir: viper.GetString("audio.cache_dir"),
		},
	}
}

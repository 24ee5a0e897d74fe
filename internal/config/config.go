package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Log       LogConfig
	Auth      AuthConfig
	SkillAPI  SkillAPIConfig
	Assistant AssistantConfig
	Catalog   CatalogConfig
}

type ServerConfig struct {
	Port int
	// AllowedOrigins is a comma-separated list of origins allowed to open
	// the chat websocket. Empty allows same-origin requests only.
	AllowedOrigins string
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
	File  string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type SkillAPIConfig struct {
	BaseURL string
	Enabled bool
	Timeout time.Duration
}

type AssistantConfig struct {
	HistoryLimit int
	// Seed fixes the reply randomness. Zero picks a random seed.
	Seed int
}

type CatalogConfig struct {
	// Path overrides the embedded catalog. Empty uses the embedded one.
	Path string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 5000,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		SkillAPI: SkillAPIConfig{
			BaseURL: "http://localhost:5001",
			Enabled: true,
			Timeout: 10 * time.Second,
		},
		Assistant: AssistantConfig{
			HistoryLimit: 50,
		},
	}
}

// Load reads configuration from the YAML config file, an optional .env
// file, and environment variables, in increasing order of precedence.
//
// The config file lives at $XDG_CONFIG_HOME/skillmap/config.yaml. envFile
// names a dotenv file whose variables are exported before SKILLMAP_*
// overrides are applied; variables already set in the environment win.
// A missing envFile is not an error.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}
	return loadWith(newPlatformBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.Auth.JWTSecret == "" {
		return Config{}, errors.New("missing required config: JWT secret. " +
			"Set it via environment variable SKILLMAP_AUTH_JWT_SECRET or in a .env file")
	}

	return cfg, nil
}

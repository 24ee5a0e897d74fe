package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
	kDuration
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "SKILLMAP_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.allowed_origins", typ: kString, env: "SKILLMAP_SERVER_ALLOWED_ORIGINS",
		apply:   func(cfg *Config, v any) { cfg.Server.AllowedOrigins = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.AllowedOrigins },
	},
	{
		key: "storage.data_dir", typ: kString, env: "SKILLMAP_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", typ: kString, env: "SKILLMAP_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
	{
		key: "log.file", typ: kString, env: "SKILLMAP_LOG_FILE",
		apply:   func(cfg *Config, v any) { cfg.Log.File = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.File },
	},
	{
		key: "auth.jwt_secret", typ: kString, env: "SKILLMAP_AUTH_JWT_SECRET",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Auth.JWTSecret = v.(string) },
		extract: func(cfg Config) any { return cfg.Auth.JWTSecret },
	},
	{
		key: "auth.token_ttl", typ: kDuration, env: "SKILLMAP_AUTH_TOKEN_TTL",
		apply:   func(cfg *Config, v any) { cfg.Auth.TokenTTL = v.(time.Duration) },
		extract: func(cfg Config) any { return cfg.Auth.TokenTTL },
	},
	{
		key: "skillapi.base_url", typ: kString, env: "SKILLMAP_SKILLAPI_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.SkillAPI.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.SkillAPI.BaseURL },
	},
	{
		key: "skillapi.enabled", typ: kBool, env: "SKILLMAP_SKILLAPI_ENABLED",
		apply:   func(cfg *Config, v any) { cfg.SkillAPI.Enabled = v.(bool) },
		extract: func(cfg Config) any { return cfg.SkillAPI.Enabled },
	},
	{
		key: "skillapi.timeout", typ: kDuration, env: "SKILLMAP_SKILLAPI_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.SkillAPI.Timeout = v.(time.Duration) },
		extract: func(cfg Config) any { return cfg.SkillAPI.Timeout },
	},
	{
		key: "assistant.history_limit", typ: kInt, env: "SKILLMAP_ASSISTANT_HISTORY_LIMIT",
		apply:   func(cfg *Config, v any) { cfg.Assistant.HistoryLimit = v.(int) },
		extract: func(cfg Config) any { return cfg.Assistant.HistoryLimit },
	},
	{
		key: "assistant.seed", typ: kInt, env: "SKILLMAP_ASSISTANT_SEED",
		apply:   func(cfg *Config, v any) { cfg.Assistant.Seed = v.(int) },
		extract: func(cfg Config) any { return cfg.Assistant.Seed },
	},
	{
		key: "catalog.path", typ: kString, env: "SKILLMAP_CATALOG_PATH",
		apply:   func(cfg *Config, v any) { cfg.Catalog.Path = v.(string) },
		extract: func(cfg Config) any { return cfg.Catalog.Path },
	},
}

// parseValue converts raw into the Go type for t.
func parseValue(t keyType, raw string) (any, error) {
	switch t {
	case kInt:
		return strconv.Atoi(raw)
	case kBool:
		return strconv.ParseBool(raw)
	case kDuration:
		return time.ParseDuration(raw)
	default:
		return raw, nil
	}
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kBool, kDuration:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if !ok || v == "" {
				continue
			}
			if parsed, err := parseValue(s.typ, v); err == nil {
				s.apply(cfg, parsed)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse config key %s=%q: %v. Using default value.\n", s.key, v, err)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		v, err := parseValue(s.typ, raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] could not parse env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			continue
		}
		s.apply(cfg, v)
	}
}

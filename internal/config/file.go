package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const appDir = "skillmap"

// xdgDir resolves an XDG base directory, falling back to ~/<homeRel>.
func xdgDir(env, homeRel, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appDir)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, homeRel, appDir)
	}
	return fallback
}

func defaultDataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"), "skillmap-data")
}

// FilePath is where "skillmap config set" persists keys.
func FilePath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config", "."), "config.yaml")
}

// yamlBackend keeps dotted keys as a flat YAML mapping, e.g.
//
//	server.port: 8000
//	skillapi.enabled: "true"
type yamlBackend struct {
	path   string
	values map[string]any
}

func newPlatformBackend() ConfigBackend {
	return newYAMLBackend(FilePath())
}

// newYAMLBackend reads path eagerly. An unreadable or malformed file is
// logged and treated as empty so defaults still apply.
func newYAMLBackend(path string) *yamlBackend {
	b := &yamlBackend{path: path, values: map[string]any{}}
	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		slog.Warn("config file unreadable, using defaults", "path", path, "error", err)
	default:
		if err := yaml.Unmarshal(raw, &b.values); err != nil {
			slog.Warn("config file malformed, using defaults", "path", path, "error", err)
			b.values = map[string]any{}
		}
	}
	return b
}

func (b *yamlBackend) flush() error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	out, err := yaml.Marshal(b.values)
	if err != nil {
		return err
	}
	return os.WriteFile(b.path, out, 0o600)
}

func (b *yamlBackend) GetString(key string) (string, bool, error) {
	v, ok := b.values[key]
	if !ok {
		return "", false, nil
	}
	switch val := v.(type) {
	case string:
		return val, true, nil
	case map[string]any, []any:
		return "", true, fmt.Errorf("%s: expected a scalar value", key)
	default:
		return fmt.Sprint(val), true, nil
	}
}

func (b *yamlBackend) GetInt(key string) (int, bool, error) {
	v, ok := b.values[key]
	if !ok {
		return 0, false, nil
	}
	switch val := v.(type) {
	case int:
		return val, true, nil
	case string:
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, true, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return i, true, nil
	default:
		return 0, true, fmt.Errorf("invalid integer for %s: %v", key, val)
	}
}

func (b *yamlBackend) SetString(key, val string) error {
	b.values[key] = val
	return b.flush()
}

func (b *yamlBackend) SetInt(key string, val int) error {
	b.values[key] = val
	return b.flush()
}

func (b *yamlBackend) Delete(key string) error {
	delete(b.values, key)
	return b.flush()
}

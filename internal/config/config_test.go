package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memBackend is an in-memory ConfigBackend.
type memBackend struct {
	strings map[string]string
	ints    map[string]int
}

func newMemBackend() *memBackend {
	return &memBackend{strings: map[string]string{}, ints: map[string]int{}}
}

func (m *memBackend) GetString(key string) (string, bool, error) {
	v, ok := m.strings[key]
	return v, ok, nil
}

func (m *memBackend) GetInt(key string) (int, bool, error) {
	v, ok := m.ints[key]
	return v, ok, nil
}

func (m *memBackend) SetString(key, val string) error { m.strings[key] = val; return nil }
func (m *memBackend) SetInt(key string, val int) error  { m.ints[key] = val; return nil }
func (m *memBackend) Delete(key string) error {
	delete(m.strings, key)
	delete(m.ints, key)
	return nil
}

func TestDefaults(t *testing.T) {
	t.Setenv("SKILLMAP_AUTH_JWT_SECRET", "s3cret")

	cfg, err := loadWith(newMemBackend())
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "http://localhost:5001", cfg.SkillAPI.BaseURL)
	assert.True(t, cfg.SkillAPI.Enabled)
	assert.Equal(t, 10*time.Second, cfg.SkillAPI.Timeout)
	assert.Equal(t, 50, cfg.Assistant.HistoryLimit)
	assert.Zero(t, cfg.Assistant.Seed)
	assert.Empty(t, cfg.Catalog.Path)
	assert.NotEmpty(t, cfg.Storage.DataDir)
}

func TestMissingJWTSecret(t *testing.T) {
	t.Setenv("SKILLMAP_AUTH_JWT_SECRET", "")

	_, err := loadWith(newMemBackend())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required config")
}

func TestBackendValues(t *testing.T) {
	t.Setenv("SKILLMAP_AUTH_JWT_SECRET", "s3cret")
	b := newMemBackend()
	b.ints["server.port"] = 8080
	b.strings["skillapi.enabled"] = "false"
	b.strings["skillapi.timeout"] = "3s"
	b.strings["auth.token_ttl"] = "not-a-duration"
	b.strings["catalog.path"] = "/etc/skillmap/catalog.yaml"
	// Secrets are never read from the backend.
	b.strings["auth.jwt_secret"] = "from-file"

	cfg, err := loadWith(b)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.SkillAPI.Enabled)
	assert.Equal(t, 3*time.Second, cfg.SkillAPI.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "/etc/skillmap/catalog.yaml", cfg.Catalog.Path)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestEnvOverride(t *testing.T) {
	b := newMemBackend()
	b.ints["server.port"] = 8080
	t.Setenv("SKILLMAP_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("SKILLMAP_SERVER_PORT", "9090")
	t.Setenv("SKILLMAP_ASSISTANT_SEED", "42")
	t.Setenv("SKILLMAP_AUTH_TOKEN_TTL", "1h")
	t.Setenv("SKILLMAP_ASSISTANT_HISTORY_LIMIT", "lots")

	cfg, err := loadWith(b)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 42, cfg.Assistant.Seed)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 50, cfg.Assistant.HistoryLimit, "unparseable values keep the default")
}

func TestLoad_DotEnvAndConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "skillmap"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skillmap", "config.yaml"),
		[]byte("server.port: 7000\nlog.level: debug\n"), 0o600))

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile,
		[]byte("SKILLMAP_AUTH_JWT_SECRET=from-dotenv\nSKILLMAP_LOG_FILE=/tmp/skillmap.log\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("SKILLMAP_AUTH_JWT_SECRET")
		os.Unsetenv("SKILLMAP_LOG_FILE")
	})

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Auth.JWTSecret)
	assert.Equal(t, "/tmp/skillmap.log", cfg.Log.File)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SKILLMAP_AUTH_JWT_SECRET", "s3cret")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestYAMLBackend_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skillmap", "config.yaml")
	b := newYAMLBackend(path)
	require.NoError(t, setKeyWith(b, "server.port", "6000"))
	require.NoError(t, setKeyWith(b, "skillapi.timeout", "2s"))

	reloaded := newYAMLBackend(path)
	port, ok, err := reloaded.GetInt("server.port")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 6000, port)

	timeout, ok, err := reloaded.GetString("skillapi.timeout")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2s", timeout)

	require.NoError(t, reloaded.Delete("server.port"))
	_, ok, err = newYAMLBackend(path).GetInt("server.port")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetKey_Validation(t *testing.T) {
	b := newMemBackend()

	assert.ErrorContains(t, setKeyWith(b, "auth.jwt_secret", "x"), "SKILLMAP_AUTH_JWT_SECRET")
	assert.ErrorContains(t, setKeyWith(b, "nope", "x"), "unknown config key")
	assert.Error(t, setKeyWith(b, "server.port", "abc"))
	assert.Error(t, setKeyWith(b, "skillapi.enabled", "maybe"))
	assert.Error(t, setKeyWith(b, "auth.token_ttl", "soon"))

	require.NoError(t, setKeyWith(b, "skillapi.enabled", "false"))
	assert.Equal(t, "false", b.strings["skillapi.enabled"])
}

func TestShowAllHidesSecrets(t *testing.T) {
	cfg := defaults()
	cfg.Auth.JWTSecret = "hidden"

	infos := ShowAll(cfg)
	assert.Len(t, infos, len(ValidKeys()))
	for _, info := range infos {
		assert.NotEqual(t, "auth.jwt_secret", info.Key)
		assert.NotEqual(t, "hidden", info.Value)
	}
	assert.Contains(t, ValidKeys(), "skillapi.base_url")
	assert.NotContains(t, ValidKeys(), "auth.jwt_secret")
}

func TestYAMLBackend_MalformedFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server.port: [unclosed"), 0o600))

	b := newYAMLBackend(path)
	_, ok, err := b.GetInt("server.port")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestYAMLBackend_NonIntegerValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server.port: eighty\n"), 0o600))

	_, ok, err := newYAMLBackend(path).GetInt("server.port")
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestFilePath_UsesXDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "skillmap", "config.yaml"), FilePath())
}

func TestUnsetKey(t *testing.T) {
	b := newMemBackend()
	require.NoError(t, setKeyWith(b, "server.port", "6000"))
	require.NoError(t, unsetKeyWith(b, "server.port"))
	_, ok := b.ints["server.port"]
	assert.False(t, ok)

	assert.ErrorContains(t, unsetKeyWith(b, "auth.jwt_secret"), "SKILLMAP_AUTH_JWT_SECRET")
	assert.ErrorContains(t, unsetKeyWith(b, "nope"), "unknown config key")
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
	assert.Equal(t, 0, cfg.Backend.MaxRetries)
	assert.Equal(t, 22, cfg.Policy.BusinessDays)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[backend]
base_url = "https://ponto.example.com/api"
manager_id = 42

[policy]
business_days_mode = "calendar"
holidays_source = "feriados.ics"
`), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://ponto.example.com/api", cfg.Backend.BaseURL)
	assert.Equal(t, int64(42), cfg.Backend.ManagerID)
	assert.Equal(t, "calendar", cfg.Policy.BusinessDaysMode)
	assert.Equal(t, 30, cfg.Backend.TimeoutSeconds, "unset keys keep defaults")
	assert.Equal(t, 8.0, cfg.Policy.DefaultDailyHours)
}

func TestLoadFileInvalidTOML(t *testing.T) {
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[backend\n"), 0644))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "parsing config file")
}

func TestEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PONTO_API_URL", "http://env:9000")
	t.Setenv("PONTO_TOKEN", "tok")
	t.Setenv("PONTO_MANAGER_ID", "7")
	t.Setenv("PONTO_LOG_LEVEL", "debug")
	t.Setenv("PONTO_DB_PATH", "/tmp/ponto.db")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "http://env:9000", cfg.Backend.BaseURL)
	assert.Equal(t, "tok", cfg.Backend.Token)
	assert.Equal(t, int64(7), cfg.Backend.ManagerID)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/ponto.db", cfg.Store.Path)
}

func TestEnvOverrideInvalidManager(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PONTO_MANAGER_ID", "abc")

	_, err := LoadFile(filepath.Join(t.TempDir(), "config.toml"))
	assert.ErrorContains(t, err, "PONTO_MANAGER_ID")
}

func TestDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PONTO_TOKEN=from-dotenv\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("PONTO_TOKEN") })

	cfg, err := LoadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Backend.Token)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Backend.BaseURL = ""
	assert.ErrorIs(t, cfg.Validate(), ErrMissingBaseURL)

	cfg = DefaultConfig()
	cfg.Policy.BusinessDaysMode = "lunar"
	assert.ErrorContains(t, cfg.Validate(), "lunar")

	cfg = DefaultConfig()
	cfg.Policy.BusinessDays = -1
	assert.Error(t, cfg.Validate())
}

func TestSaveManagerIDPreservesOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(`
[backend]
base_url = "https://ponto.example.com"

[log]
level = "debug"
`), 0644))

	require.NoError(t, SaveManagerID(path, 99))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Config
	require.NoError(t, toml.Unmarshal(data, &got))
	assert.Equal(t, int64(99), got.Backend.ManagerID)
	assert.Equal(t, "https://ponto.example.com", got.Backend.BaseURL)
	assert.Equal(t, "debug", got.Log.Level)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "config.toml")
	require.NoError(t, WriteDefault(path))

	t.Chdir(t.TempDir())
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

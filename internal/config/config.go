package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

var (
	ErrMissingBaseURL = errors.New("backend base_url not configured (run 'ponto config' or set PONTO_API_URL)")
	ErrMissingManager = errors.New("manager_id not configured (pass --manager or set PONTO_MANAGER_ID)")
)

type Config struct {
	Backend BackendConfig `toml:"backend"`
	Policy  PolicyConfig  `toml:"policy"`
	Server  ServerConfig  `toml:"server"`
	Store   StoreConfig   `toml:"store"`
	Log     LogConfig     `toml:"log"`
}

type BackendConfig struct {
	BaseURL        string `toml:"base_url"`
	Token          string `toml:"token"`
	ManagerID      int64  `toml:"manager_id"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
}

type PolicyConfig struct {
	BusinessDays      int     `toml:"business_days"`
	BusinessDaysMode  string  `toml:"business_days_mode"` // "fixed" or "calendar"
	HolidaysSource    string  `toml:"holidays_source"`    // ICS URL or file path
	DefaultDailyHours float64 `toml:"default_daily_hours"`
}

type ServerConfig struct {
	Addr           string   `toml:"addr"`
	StaticDir      string   `toml:"static_dir"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type StoreConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Level string `toml:"level"`
	// File receives the server's request log, rotated by size. Empty
	// means stdout.
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8080",
			TimeoutSeconds: 30,
			MaxRetries:     0,
		},
		Policy: PolicyConfig{
			BusinessDays:      22,
			BusinessDaysMode:  "fixed",
			DefaultDailyHours: 8,
		},
		Server: ServerConfig{
			Addr:           ":3000",
			StaticDir:      "public",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "ponto"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads ~/.config/ponto/config.toml on top of the defaults and applies
// environment overrides, including those from a .env in the working directory.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PONTO_API_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("PONTO_TOKEN"); v != "" {
		cfg.Backend.Token = v
	}
	if v := os.Getenv("PONTO_MANAGER_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid PONTO_MANAGER_ID: %w", err)
		}
		cfg.Backend.ManagerID = id
	}
	if v := os.Getenv("PONTO_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PONTO_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("PONTO_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
	return nil
}

// Validate checks the settings every backend-facing command needs.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return ErrMissingBaseURL
	}
	switch c.Policy.BusinessDaysMode {
	case "", "fixed", "calendar":
	default:
		return fmt.Errorf("unknown business_days_mode %q (want \"fixed\" or \"calendar\")", c.Policy.BusinessDaysMode)
	}
	if c.Policy.BusinessDays < 0 {
		return errors.New("business_days must not be negative")
	}
	if c.Policy.DefaultDailyHours < 0 {
		return errors.New("default_daily_hours must not be negative")
	}
	return nil
}

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// WriteDefault writes the default configuration to path as TOML.
func WriteDefault(path string) error {
	out, err := toml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}

// SaveManagerID persists the manager ID to the config file using a
// read-modify-write approach to preserve other settings.
func SaveManagerID(path string, managerID int64) error {
	cfg := make(map[string]any)

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}
	if len(data) > 0 {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	backend, ok := cfg["backend"].(map[string]any)
	if !ok {
		backend = make(map[string]any)
	}
	backend["manager_id"] = managerID
	cfg["backend"] = backend

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	out, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}

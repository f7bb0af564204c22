package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultDaemonURL      = "http://localhost:5279"
	DefaultUIURL          = "http://127.0.0.1:5380"
	DefaultDataDirName    = ".alexandria"
	DefaultDBFileName     = "alexandria.db"
	DefaultWorkers        = 32
	DefaultSearchPageSize = 50
	DefaultSearchCacheTTL = 5 * time.Minute
	MaxSearchPageSize     = 50
	DefaultLogLevel       = "warn"

	configFileName  = ".alexandria.toml"
	configDirEnvKey = "ALEXANDRIA_CONFIG_DIR"
)

// SearchConfig controls free-text searches from the UI.
type SearchConfig struct {
	PageSize int      `toml:"page_size"`
	CacheTTL Duration `toml:"cache_ttl"`
}

// UIConfig controls the local web UI.
type UIConfig struct {
	// PasswordHash is a bcrypt hash; empty disables the password prompt.
	PasswordHash string `toml:"password_hash"`
}

// Config defines runtime configuration for alexandria.
type Config struct {
	DaemonURL   string       `toml:"daemon_url"`
	UIURL       string       `toml:"ui_url"`
	DBPath      string       `toml:"db_path"`
	DownloadDir string       `toml:"download_dir"`
	OwnDir      bool         `toml:"own_dir"`
	Workers     int          `toml:"workers"`
	LogLevel    string       `toml:"log_level"`
	Search      SearchConfig `toml:"search"`
	UI          UIConfig     `toml:"ui"`
}

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := parseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		DaemonURL: DefaultDaemonURL,
		UIURL:     DefaultUIURL,
		OwnDir:    true,
		Workers:   DefaultWorkers,
		Search: SearchConfig{
			PageSize: DefaultSearchPageSize,
			CacheTTL: Duration{DefaultSearchCacheTTL},
		},
	}
}

// ThumbnailDir is where cached thumbnails live, next to the database.
func (c *Config) ThumbnailDir() string {
	return filepath.Join(filepath.Dir(c.DBPath), "thumbnails")
}

// LockPath is the single-instance lock file of the UI server.
func (c *Config) LockPath() string {
	return filepath.Join(filepath.Dir(c.DBPath), "ui.lock")
}

func loadFile(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

var allowedKeys = []string{
	"daemon_url",
	"ui_url",
	"db_path",
	"download_dir",
	"own_dir",
	"workers",
	"log_level",
	"search.page_size",
	"search.cache_ttl",
	"ui.password_hash",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "daemon_url":
		return c.DaemonURL, nil
	case "ui_url":
		return c.UIURL, nil
	case "db_path":
		return c.DBPath, nil
	case "download_dir":
		return c.DownloadDir, nil
	case "own_dir":
		return strconv.FormatBool(c.OwnDir), nil
	case "workers":
		return strconv.Itoa(c.Workers), nil
	case "log_level":
		return c.LogLevel, nil
	case "search.page_size":
		return strconv.Itoa(c.Search.PageSize), nil
	case "search.cache_ttl":
		return c.Search.CacheTTL.String(), nil
	case "ui.password_hash":
		return c.UI.PasswordHash, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the config file.
func GlobalPath() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return filepath.Join(dir, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads the config file and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := GlobalPath()
	if err == nil {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("ALEXANDRIA_DAEMON_URL"); v != "" {
		cfg.DaemonURL = v
	}
	if v := os.Getenv("ALEXANDRIA_UI_URL"); v != "" {
		cfg.UIURL = v
	}
	if v := os.Getenv("ALEXANDRIA_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("ALEXANDRIA_DOWNLOAD_DIR"); v != "" {
		cfg.DownloadDir = v
	}
	if v := os.Getenv("ALEXANDRIA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	home, homeErr := os.UserHomeDir()
	if c.DBPath == "" {
		if homeErr != nil {
			return fmt.Errorf("resolve default db path: %w", homeErr)
		}
		c.DBPath = filepath.Join(home, DefaultDataDirName, DefaultDBFileName)
	}
	if c.DownloadDir == "" && homeErr == nil {
		c.DownloadDir = filepath.Join(home, "Downloads")
	}
	if homeErr == nil {
		c.DBPath = expandHome(c.DBPath, home)
		c.DownloadDir = expandHome(c.DownloadDir, home)
	}
	if c.DaemonURL == "" {
		c.DaemonURL = DefaultDaemonURL
	}
	if c.UIURL == "" {
		c.UIURL = DefaultUIURL
	}
	if c.Workers < 0 {
		c.Workers = DefaultWorkers
	}
	if c.Search.PageSize <= 0 || c.Search.PageSize > MaxSearchPageSize {
		c.Search.PageSize = DefaultSearchPageSize
	}
	if c.Search.CacheTTL.Duration < 0 {
		c.Search.CacheTTL.Duration = DefaultSearchCacheTTL
	}
	return nil
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "workers":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("%s must be a non-negative integer", key)
		}
		return int64(parsed), nil
	case "search.page_size":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 || parsed > MaxSearchPageSize {
			return nil, fmt.Errorf("%s must be between 1 and %d", key, MaxSearchPageSize)
		}
		return int64(parsed), nil
	case "own_dir":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", key)
		}
		return parsed, nil
	case "search.cache_ttl":
		parsed, err := parseDuration(value)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("%s must be a duration such as 5m", key)
		}
		return parsed.String(), nil
	case "daemon_url", "ui_url":
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return nil, fmt.Errorf("%s must be an http(s) URL", key)
		}
		return value, nil
	case "ui.password_hash":
		if value != "" && !strings.HasPrefix(value, "$2") {
			return nil, fmt.Errorf("%s must be a bcrypt hash; use 'alexandria hash-password'", key)
		}
		return value, nil
	default:
		return value, nil
	}
}

func parseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	return time.Duration(seconds) * time.Second, nil
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

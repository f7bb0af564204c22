package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.DaemonURL != "http://localhost:5279" {
		t.Fatalf("expected default daemon URL, got %q", cfg.DaemonURL)
	}
	if cfg.UIURL != "http://127.0.0.1:5380" {
		t.Fatalf("expected default UI URL, got %q", cfg.UIURL)
	}
	if cfg.DBPath != "" {
		t.Fatalf("expected empty db path, got %q", cfg.DBPath)
	}
	if !cfg.OwnDir {
		t.Fatal("expected own_dir default true")
	}
	if cfg.Workers != DefaultWorkers {
		t.Fatalf("expected %d workers, got %d", DefaultWorkers, cfg.Workers)
	}
	if cfg.Search.PageSize != DefaultSearchPageSize || cfg.Search.CacheTTL.Duration != DefaultSearchCacheTTL {
		t.Fatalf("unexpected search defaults: %+v", cfg.Search)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".alexandria.toml")
	if err := os.WriteFile(path, []byte(`daemon_url = "http://localhost:9999"
log_level = "warn"
own_dir = false
workers = 4

[search]
page_size = 20
cache_ttl = "90s"
`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DaemonURL != "http://localhost:9999" {
		t.Fatalf("expected daemon_url override, got %q", cfg.DaemonURL)
	}
	if cfg.LogLevel != "warn" || cfg.OwnDir || cfg.Workers != 4 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Search.PageSize != 20 || cfg.Search.CacheTTL.Duration != 90*time.Second {
		t.Fatalf("unexpected search config: %+v", cfg.Search)
	}
	if cfg.UIURL != DefaultUIURL {
		t.Fatalf("defaults should be preserved, got ui_url %q", cfg.UIURL)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFile("/nonexistent/path/.alexandria.toml", &cfg); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.DaemonURL != DefaultDaemonURL {
		t.Fatalf("defaults should be preserved")
	}
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".alexandria.toml")
	if err := os.WriteFile(path, []byte("daemon_url = \n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg := Default()
	if err := loadFile(path, &cfg); err == nil || !strings.Contains(err.Error(), "failed to parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(configDirEnvKey, dir)
	t.Setenv("HOME", dir)
	if err := os.WriteFile(filepath.Join(dir, ".alexandria.toml"), []byte(`daemon_url = "http://file:1"
db_path = "~/data/a.db"
`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ALEXANDRIA_DB", "")
	t.Setenv("ALEXANDRIA_DAEMON_URL", "http://env:2")
	t.Setenv("ALEXANDRIA_DOWNLOAD_DIR", "/srv/media")
	t.Setenv("ALEXANDRIA_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DaemonURL != "http://env:2" {
		t.Fatalf("env should win over file, got %q", cfg.DaemonURL)
	}
	if cfg.DBPath != filepath.Join(dir, "data", "a.db") {
		t.Fatalf("expected ~ expansion, got %q", cfg.DBPath)
	}
	if cfg.DownloadDir != "/srv/media" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.ThumbnailDir() != filepath.Join(dir, "data", "thumbnails") {
		t.Fatalf("unexpected thumbnail dir %q", cfg.ThumbnailDir())
	}
	if cfg.LockPath() != filepath.Join(dir, "data", "ui.lock") {
		t.Fatalf("unexpected lock path %q", cfg.LockPath())
	}
}

func TestLoadDefaultsPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(configDirEnvKey, t.TempDir())
	t.Setenv("ALEXANDRIA_DB", "")
	t.Setenv("ALEXANDRIA_DOWNLOAD_DIR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != filepath.Join(home, ".alexandria", "alexandria.db") {
		t.Fatalf("unexpected default db path %q", cfg.DBPath)
	}
	if cfg.DownloadDir != filepath.Join(home, "Downloads") {
		t.Fatalf("unexpected default download dir %q", cfg.DownloadDir)
	}
}

func TestIsAllowedKey(t *testing.T) {
	for _, key := range []string{
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
	} {
		if !IsAllowedKey(key) {
			t.Fatalf("expected %q to be allowed", key)
		}
	}
	if IsAllowedKey("invalid") {
		t.Fatal("expected 'invalid' to not be allowed")
	}
}

func TestGetKey(t *testing.T) {
	cfg := Default()
	cfg.DBPath = "/tmp/test.db"
	cfg.LogLevel = "warn"

	cases := map[string]string{
		"daemon_url":       DefaultDaemonURL,
		"db_path":          "/tmp/test.db",
		"own_dir":          "true",
		"workers":          "32",
		"log_level":        "warn",
		"search.page_size": "50",
		"search.cache_ttl": "5m0s",
	}
	for key, want := range cases {
		got, err := cfg.Get(key)
		if err != nil || got != want {
			t.Fatalf("%s: expected %q, got %q (err: %v)", key, want, got, err)
		}
	}
	if _, err := cfg.Get("nope"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestSetKeyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", ".alexandria.toml")

	for key, value := range map[string]string{
		"daemon_url":       "http://10.0.0.2:5279",
		"workers":          "8",
		"own_dir":          "false",
		"search.page_size": "25",
		"search.cache_ttl": "120",
		"ui.password_hash": "$2a$10$abcdefghijklmnopqrstuv",
	} {
		if err := SetKey(path, key, value); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DaemonURL != "http://10.0.0.2:5279" || cfg.Workers != 8 || cfg.OwnDir {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Search.PageSize != 25 || cfg.Search.CacheTTL.Duration != 2*time.Minute {
		t.Fatalf("unexpected search config: %+v", cfg.Search)
	}
	if cfg.UI.PasswordHash != "$2a$10$abcdefghijklmnopqrstuv" {
		t.Fatalf("unexpected password hash %q", cfg.UI.PasswordHash)
	}
}

func TestSetKeyValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".alexandria.toml")
	for key, value := range map[string]string{
		"unknown":          "x",
		"workers":          "-1",
		"own_dir":          "maybe",
		"search.page_size": "500",
		"search.cache_ttl": "soon",
		"daemon_url":       "localhost:5279",
		"ui.password_hash": "plaintext",
	} {
		if err := SetKey(path, key, value); err == nil {
			t.Fatalf("expected %s=%q to be rejected", key, value)
		}
	}
}

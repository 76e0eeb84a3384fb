package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./reelist.db" {
			t.Errorf("expected database path ./reelist.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.OMDb.CacheTTL != 5*time.Minute {
			t.Errorf("expected omdb cache ttl 5m, got %v", config.OMDb.CacheTTL)
		}

		if config.Lists.MembershipConcurrency != 4 {
			t.Errorf("expected membership concurrency 4, got %d", config.Lists.MembershipConcurrency)
		}

		if len(config.Credentials.OAuth.Scopes) != 3 {
			t.Errorf("expected 3 oauth scopes, got %v", config.Credentials.OAuth.Scopes)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080

[omdb]
api_key = "test_api_key"
cache_ttl = "90s"

[lists]
delete_concurrency = 2
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}

		if config.OMDb.CacheTTL != 90*time.Second {
			t.Errorf("expected cache ttl 90s, got %v", config.OMDb.CacheTTL)
		}

		if config.Lists.DeleteConcurrency != 2 {
			t.Errorf("expected delete concurrency 2, got %d", config.Lists.DeleteConcurrency)
		}

		if config.Lists.MembershipConcurrency != 4 {
			t.Errorf("expected default membership concurrency to survive, got %d", config.Lists.MembershipConcurrency)
		}
	})

	t.Run("LoadConfig Invalid", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[database\npath = "), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		env := map[string]string{
			"OMDB_API_KEY":      "from-omdb",
			"REELIST_DB_PATH":   "/tmp/env.db",
			"REELIST_LOG_LEVEL": "debug",
		}
		config := DefaultConfig()
		config.ApplyEnv(func(k string) string { return env[k] })

		if config.OMDb.APIKey != "from-omdb" {
			t.Errorf("expected api key from env, got %s", config.OMDb.APIKey)
		}
		if config.Database.Path != "/tmp/env.db" {
			t.Errorf("expected db path from env, got %s", config.Database.Path)
		}
		if config.Log.Level != "debug" {
			t.Errorf("expected log level from env, got %s", config.Log.Level)
		}

		env["REELIST_OMDB_API_KEY"] = "prefixed"
		config.ApplyEnv(func(k string) string { return env[k] })
		if config.OMDb.APIKey != "prefixed" {
			t.Errorf("expected prefixed variable to win, got %s", config.OMDb.APIKey)
		}
	})
}

package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	OMDb        OMDbConfig        `toml:"omdb"`
	Lists       ListsConfig       `toml:"lists"`
	Log         LogConfig         `toml:"log"`
	Session     SessionConfig     `toml:"session"`
}

// CredentialsConfig contains third-party credentials.
type CredentialsConfig struct {
	OAuth OAuthConfig `toml:"oauth"`
}

// OAuthConfig describes the OAuth2 provider used by `auth oauth`.
type OAuthConfig struct {
	Provider     string   `toml:"provider"`
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	AuthURL      string   `toml:"auth_url"`
	TokenURL     string   `toml:"token_url"`
	UserInfoURL  string   `toml:"userinfo_url"`
	RedirectURI  string   `toml:"redirect_uri"`
	Scopes       []string `toml:"scopes"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// OMDbConfig contains movie provider settings.
type OMDbConfig struct {
	BaseURL   string        `toml:"base_url"`
	APIKey    string        `toml:"api_key"`
	CacheTTL  time.Duration `toml:"cache_ttl"`
	CacheSize int           `toml:"cache_size"`
	RateLimit float64       `toml:"rate_limit"`
	Retries   uint          `toml:"retries"`
	Timeout   time.Duration `toml:"timeout"`
}

// ListsConfig bounds the fan-out used by membership checks and cascade deletes.
type ListsConfig struct {
	MembershipConcurrency int `toml:"membership_concurrency"`
	DeleteConcurrency     int `toml:"delete_concurrency"`
}

// LogConfig contains logger settings. An empty File logs to stderr.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// SessionConfig contains CLI session and API token settings.
type SessionConfig struct {
	Path     string        `toml:"path"`
	TokenTTL time.Duration `toml:"token_ttl"`
}

// SessionPath returns the session file path with a leading ~ expanded.
func (s SessionConfig) SessionPath() string {
	return ExpandHome(s.Path)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides config values from REELIST_* environment variables.
//
// OMDB_API_KEY is honoured as well since it is the name the provider documents.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv("OMDB_API_KEY"); v != "" {
		c.OMDb.APIKey = v
	}
	if v := getenv("REELIST_OMDB_API_KEY"); v != "" {
		c.OMDb.APIKey = v
	}
	if v := getenv("REELIST_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := getenv("REELIST_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("REELIST_OAUTH_CLIENT_ID"); v != "" {
		c.Credentials.OAuth.ClientID = v
	}
	if v := getenv("REELIST_OAUTH_CLIENT_SECRET"); v != "" {
		c.Credentials.OAuth.ClientSecret = v
	}
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

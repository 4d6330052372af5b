package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Store   Store   `yaml:"store"`
	Server  Server  `yaml:"server"`
	Webhook Webhook `yaml:"webhook"`
	Logging Logging `yaml:"logging"`
}

type Store struct {
	// Driver selects the backing store: "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	// Path is the sqlite database file; empty means the XDG data dir.
	Path string `yaml:"path"`
	// DSNEnv names the environment variable holding the Postgres DSN.
	DSNEnv string `yaml:"dsn_env"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Webhook struct {
	// URLEnv names the environment variable holding the forwarding
	// webhook URL. The URL itself stays out of config files.
	URLEnv string `yaml:"url_env"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for apodash.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "apodash")
}

// DataDir returns the XDG data directory for apodash.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "apodash")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/apodash/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'apodash init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file. A .env file in the
// working directory is folded into the environment first, so the
// env-named secrets (DSN, webhook URL) can live there locally.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Store: Store{
			Driver: "sqlite",
			DSNEnv: "DATABASE_URL",
		},
		Server:  Server{Port: 8000},
		Webhook: Webhook{URLEnv: "N8N_WEBHOOK_URL"},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// DBPath returns the effective sqlite file path.
func (c *Config) DBPath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(DataDir(), "apodash.db")
}

// DSN returns the Postgres DSN from the configured environment
// variable, or empty when unset.
func (c *Config) DSN() string {
	return os.Getenv(c.Store.DSNEnv)
}

// WebhookURL returns the forwarding webhook URL from the configured
// environment variable, or empty when unset.
func (c *Config) WebhookURL() string {
	return os.Getenv(c.Webhook.URLEnv)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

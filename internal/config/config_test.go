package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := parse([]byte(""))
	if err != nil {
		t.Fatalf("parsing empty config: %v", err)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %q", cfg.Store.Driver)
	}
	if cfg.Store.DSNEnv != "DATABASE_URL" {
		t.Errorf("unexpected dsn env %q", cfg.Store.DSNEnv)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Webhook.URLEnv != "N8N_WEBHOOK_URL" {
		t.Errorf("unexpected webhook env %q", cfg.Webhook.URLEnv)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("expected INFO level, got %q", cfg.Logging.Level)
	}
}

func TestParseOverrides(t *testing.T) {
	cfg, err := parse([]byte(`
store:
  driver: postgres
  dsn_env: APODASH_DSN
server:
  port: 9001
logging:
  level: DEBUG
`))
	if err != nil {
		t.Fatalf("parsing config: %v", err)
	}
	if cfg.Store.Driver != "postgres" {
		t.Errorf("expected postgres driver, got %q", cfg.Store.Driver)
	}
	if cfg.Store.DSNEnv != "APODASH_DSN" {
		t.Errorf("unexpected dsn env %q", cfg.Store.DSNEnv)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("expected port 9001, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("expected DEBUG level, got %q", cfg.Logging.Level)
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := parse([]byte("store: [not a map")); err == nil {
		t.Error("expected parse error for invalid YAML")
	}
}

func TestDefaultConfigYAMLParses(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("embedded default config does not parse: %v", err)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("expected sqlite driver in default config, got %q", cfg.Store.Driver)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "store:\n  path: /tmp/custom.db\nserver:\n  port: 8080\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.Store.Path != "/tmp/custom.db" {
		t.Errorf("unexpected store path %q", cfg.Store.Path)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestResolveConfigPathExplicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	resolved, err := ResolveConfigPath(path)
	if err != nil {
		t.Fatalf("resolving explicit path: %v", err)
	}
	if resolved != path {
		t.Errorf("expected %q, got %q", path, resolved)
	}

	if _, err := ResolveConfigPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit path")
	}
}

func TestDBPath(t *testing.T) {
	cfg := &Config{Store: Store{Path: "/data/x.db"}}
	if got := cfg.DBPath(); got != "/data/x.db" {
		t.Errorf("expected explicit path, got %q", got)
	}

	cfg = &Config{}
	if got := cfg.DBPath(); !strings.HasSuffix(got, filepath.Join("apodash", "apodash.db")) {
		t.Errorf("expected XDG default path, got %q", got)
	}
}

func TestEnvIndirection(t *testing.T) {
	cfg := &Config{
		Store:   Store{DSNEnv: "TEST_APODASH_DSN"},
		Webhook: Webhook{URLEnv: "TEST_APODASH_WEBHOOK"},
	}

	t.Setenv("TEST_APODASH_DSN", "postgres://localhost/apodash")
	t.Setenv("TEST_APODASH_WEBHOOK", "https://hooks.example.com/chat")

	if got := cfg.DSN(); got != "postgres://localhost/apodash" {
		t.Errorf("unexpected DSN %q", got)
	}
	if got := cfg.WebhookURL(); got != "https://hooks.example.com/chat" {
		t.Errorf("unexpected webhook URL %q", got)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
server:
  host: "0.0.0.0"
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "workouts"
  user: "workouts"
  password: "secret"
  sslmode: "disable"
auth:
  api_key: "test-key-123"
garmin:
  token_dir: "/tmp/garmin-tokens"
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadValid verifies that a well-formed YAML config loads with all fields populated.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "workouts" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "workouts")
	}
	if cfg.Auth.APIKey != "test-key-123" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "test-key-123")
	}
	if cfg.Garmin.TokenDir != "/tmp/garmin-tokens" {
		t.Errorf("garmin.token_dir = %q", cfg.Garmin.TokenDir)
	}
}

// TestEnvOverride verifies that WORKOUTS_ env vars take precedence over YAML
// values, so deployments can override config via environment.
func TestEnvOverride(t *testing.T) {
	t.Setenv("WORKOUTS_DB_HOST", "override-host")
	t.Setenv("WORKOUTS_DB_PORT", "9999")
	t.Setenv("WORKOUTS_AUTH_API_KEY", "env-key")
	t.Setenv("WORKOUTS_GARMIN_TOKEN_DIR", "/var/lib/tokens")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Host != "override-host" {
		t.Errorf("database.host = %q, want %q", cfg.Database.Host, "override-host")
	}
	if cfg.Database.Port != 9999 {
		t.Errorf("database.port = %d, want 9999", cfg.Database.Port)
	}
	if cfg.Auth.APIKey != "env-key" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "env-key")
	}
	if cfg.Garmin.TokenDir != "/var/lib/tokens" {
		t.Errorf("garmin.token_dir = %q", cfg.Garmin.TokenDir)
	}
	// Unchanged fields keep YAML values.
	if cfg.Database.Name != "workouts" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "workouts")
	}
}

// TestValidation verifies required fields are enforced.
func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		mangle  func(string) string
		wantErr string
	}{
		{"missing api key", func(y string) string {
			return strings.Replace(y, `api_key: "test-key-123"`, `api_key: ""`, 1)
		}, "api_key"},
		{"missing db host", func(y string) string {
			return strings.Replace(y, `host: "localhost"`, `host: ""`, 1)
		}, "database.host"},
		{"missing server port", func(y string) string {
			return strings.Replace(y, "port: 8080", "port: 0", 1)
		}, "server.port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTemp(t, tt.mangle(validYAML)))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

// TestTailscaleValidation verifies the hostname requirement only applies
// when tailscale is enabled.
func TestTailscaleValidation(t *testing.T) {
	yaml := validYAML + "\ntailscale:\n  enabled: true\n"
	if _, err := Load(writeTemp(t, yaml)); err == nil {
		t.Error("expected error for enabled tailscale without hostname")
	}

	yaml += "  hostname: \"workouts\"\n"
	if _, err := Load(writeTemp(t, yaml)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestDSN verifies the connection string format and the sslmode default.
func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "workouts", User: "u", Password: "p"}
	want := "postgres://u:p@db:5432/workouts?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}

	d.SSLMode = "require"
	if got := d.DSN(); !strings.HasSuffix(got, "sslmode=require") {
		t.Errorf("DSN = %q, want sslmode=require", got)
	}
}

// TestMissingFile verifies a useful error for an absent config path.
func TestMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error")
	}
}

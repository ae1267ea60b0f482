package config

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: production
gate:
  backend: "https://media.example.com"
session:
  cookie:
    secure: true
    same_site: strict
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Environment != EnvProduction {
		t.Errorf("Environment = %q, want production", cfg.Environment)
	}
	// untouched keys keep their defaults
	if cfg.Session.RenewAhead != 7*24*time.Hour {
		t.Errorf("RenewAhead = %v, want default 7 days", cfg.Session.RenewAhead)
	}

	cc, err := cfg.Session.Cookie.CookieConfig()
	if err != nil {
		t.Fatalf("CookieConfig() error: %v", err)
	}
	if !cc.Secure || cc.SameSite != http.SameSiteStrictMode {
		t.Errorf("CookieConfig = %+v, want secure strict", cc)
	}
}

func TestAPIBase(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "development base",
			cfg: Config{
				Environment: EnvDevelopment,
				API:         APIConfig{DevelopmentBase: "http://localhost:8080/api"},
			},
			want: "http://localhost:8080/api",
		},
		{
			name: "production explicit base",
			cfg: Config{
				Environment: EnvProduction,
				API:         APIConfig{ProductionBase: "https://media.example.com/api"},
			},
			want: "https://media.example.com/api",
		},
		{
			name: "production derived from backend",
			cfg: Config{
				Environment: EnvProduction,
				Gate:        GateConfig{Backend: "https://media.example.com/"},
			},
			want: "https://media.example.com/api",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.APIBase(); got != tt.want {
				t.Errorf("APIBase() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"unknown environment", func(c *Config) { c.Environment = "staging" }, true},
		{"missing development base", func(c *Config) { c.API.DevelopmentBase = "" }, true},
		{"negative renew window", func(c *Config) { c.Session.RenewAhead = -time.Hour }, true},
		{"bad same_site", func(c *Config) { c.Session.Cookie.SameSite = "sideways" }, true},
		{
			"production without any base",
			func(c *Config) {
				c.Environment = EnvProduction
				c.API.ProductionBase = ""
				c.Gate.Backend = ""
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() of missing file succeeded")
	}
}

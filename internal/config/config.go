// Package config holds the runtime configuration of the client: which
// backend to talk to per environment, how the web gate listens, and the
// session cookie attributes shared by every store call site.
package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/hienao/openlist-strm/internal/session"
	"github.com/hienao/openlist-strm/internal/token"
)

type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

type Config struct {
	Environment Environment   `yaml:"environment"`
	API         APIConfig     `yaml:"api"`
	Gate        GateConfig    `yaml:"gate"`
	Session     SessionConfig `yaml:"session"`
}

// APIConfig resolves the outbound API base per environment, so no call
// site ever hardcodes an address.
type APIConfig struct {
	// DevelopmentBase is the absolute API base used in development.
	DevelopmentBase string `yaml:"development_base"`

	// ProductionBase is the API base used in production. When empty it
	// is derived from the gate's backend origin.
	ProductionBase string `yaml:"production_base"`
}

// GateConfig configures the web gate front server.
type GateConfig struct {
	// Listen is the address the gate serves on.
	Listen string `yaml:"listen"`

	// Backend is the origin of the openlist-strm backend the gate
	// proxies API calls to.
	Backend string `yaml:"backend"`
}

type SessionConfig struct {
	// RenewAhead is the proactive renewal window before token expiry.
	RenewAhead time.Duration `yaml:"renew_ahead"`

	Cookie CookieSettings `yaml:"cookie"`
}

// CookieSettings is the single source of cookie attributes for both
// session slots.
type CookieSettings struct {
	Path     string        `yaml:"path"`
	Secure   bool          `yaml:"secure"`
	SameSite string        `yaml:"same_site"` // lax, strict or none
	MaxAge   time.Duration `yaml:"max_age"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	return &Config{
		Environment: EnvDevelopment,
		API: APIConfig{
			DevelopmentBase: "http://localhost:8080/api",
		},
		Gate: GateConfig{
			Listen:  ":3000",
			Backend: "http://localhost:8080",
		},
		Session: SessionConfig{
			RenewAhead: token.DefaultRenewAhead,
			Cookie: CookieSettings{
				Path:     "/",
				SameSite: "lax",
				MaxAge:   14 * 24 * time.Hour,
			},
		},
	}
}

// Load reads and parses the configuration file at the given path,
// layered over the defaults. It returns the merged Config or an error
// if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file '%s': %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file '%s': %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}
	if c.Environment == EnvDevelopment && c.API.DevelopmentBase == "" {
		return fmt.Errorf("api.development_base is required in development")
	}
	if c.Environment == EnvProduction && c.API.ProductionBase == "" && c.Gate.Backend == "" {
		return fmt.Errorf("either api.production_base or gate.backend is required in production")
	}
	if c.Session.RenewAhead <= 0 {
		return fmt.Errorf("session.renew_ahead must be positive")
	}
	if _, err := c.Session.Cookie.sameSite(); err != nil {
		return err
	}
	return nil
}

// APIBase returns the environment-appropriate outbound base address.
func (c *Config) APIBase() string {
	if c.Environment == EnvProduction {
		if c.API.ProductionBase != "" {
			return c.API.ProductionBase
		}
		return strings.TrimRight(c.Gate.Backend, "/") + "/api"
	}
	return c.API.DevelopmentBase
}

// CookieConfig translates the configured attributes into the session
// package's cookie config.
func (s CookieSettings) CookieConfig() (session.CookieConfig, error) {
	sameSite, err := s.sameSite()
	if err != nil {
		return session.CookieConfig{}, err
	}
	return session.CookieConfig{
		Path:     s.Path,
		MaxAge:   s.MaxAge,
		Secure:   s.Secure,
		SameSite: sameSite,
	}, nil
}

func (s CookieSettings) sameSite() (http.SameSite, error) {
	switch strings.ToLower(s.SameSite) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("unknown same_site value %q", s.SameSite)
	}
}

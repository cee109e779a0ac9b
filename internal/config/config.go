package config

import (
	"errors"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Config struct {
	ListenAddr string
	BaseURL    string

	// ConfigEndpoint is the local collaborator that hands out the
	// platform connection parameters at /api/config.
	ConfigEndpoint string

	Session struct {
		Secret string
	}

	Environment       string
	PrometheusEnabled bool
	TrustedProxies    []string
}

// Load reads the application server configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.ListenAddr = getenvDefault("ACTLOG_LISTEN_ADDR", ":8080")
	cfg.BaseURL = getenvDefault("ACTLOG_BASE_URL", "http://localhost:8080")
	cfg.ConfigEndpoint = getenvDefault("ACTLOG_CONFIG_ENDPOINT", "http://localhost:3000")
	cfg.Session.Secret = os.Getenv("ACTLOG_SESSION_SECRET")
	cfg.Environment = getenvDefault("ACTLOG_ENV", "development")
	cfg.PrometheusEnabled = getenvBool("ACTLOG_PROMETHEUS_ENDPOINT_ENABLED", false)
	cfg.TrustedProxies = getenvList("ACTLOG_TRUSTED_PROXIES")

	if cfg.Session.Secret == "" {
		return nil, errors.New("ACTLOG_SESSION_SECRET is required")
	}
	if len(cfg.Session.Secret) < 32 {
		return nil, errors.New("ACTLOG_SESSION_SECRET must be at least 32 characters long")
	}

	if len(cfg.TrustedProxies) == 0 {
		logrus.Warn("no ACTLOG_TRUSTED_PROXIES configured; trusting all proxies is not recommended for public environments")
	}

	return cfg, nil
}

// CollaboratorConfig holds the settings of the local config/static server.
type CollaboratorConfig struct {
	ListenAddr  string
	StaticDir   string
	Environment string

	// ServiceURL and ServiceKey are handed to clients via /api/config.
	// Their absence is a warning, not a startup failure.
	ServiceURL string
	ServiceKey string
}

// LoadCollaborator reads the config/static server settings from the environment.
func LoadCollaborator() *CollaboratorConfig {
	cfg := &CollaboratorConfig{
		ListenAddr:  getenvDefault("ACTLOG_CONFIG_LISTEN_ADDR", ":3000"),
		StaticDir:   getenvDefault("ACTLOG_STATIC_DIR", "./public"),
		Environment: getenvDefault("ACTLOG_ENV", "development"),
		ServiceURL:  os.Getenv("ACTLOG_SERVICE_URL"),
		ServiceKey:  os.Getenv("ACTLOG_SERVICE_KEY"),
	}

	if cfg.ServiceURL == "" || cfg.ServiceKey == "" {
		logrus.Warn("ACTLOG_SERVICE_URL / ACTLOG_SERVICE_KEY are not set; clients will fail to initialize")
	}

	return cfg
}

func (c *Config) Development() bool {
	return c.Environment != "production"
}

func (c *CollaboratorConfig) Development() bool {
	return c.Environment != "production"
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return def
}

func getenvList(key string) []string {
	if v := os.Getenv(key); v != "" {
		var result []string
		for _, item := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return nil
}

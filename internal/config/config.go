package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"sourcecheck/internal/catalog"
)

type Config struct {
	Addr         string // API bind address
	LogDir       string // logs directory
	CatalogURL   string // extension index to check
	Lang         string // keep only extensions of this language; empty = all
	SlackWebhook string // empty disables notifications
	DiagnoseDNS  bool   // append DNS class to failed-probe details

	MaxConcurrentProbes int
	ProbeTimeout        time.Duration

	PublicAPIKeys []string
	AdminAPIKeys  []string
	PublicRPM     int
	PublicBurst   int
	AdminRPM      int
	AdminBurst    int
}

// FromEnv reads configuration from the environment. Values are taken as
// given, including out-of-range ones; Validate decides what is acceptable.
func FromEnv() Config {
	cfg := Config{
		Addr:                "127.0.0.1:8080",
		LogDir:              "logs",
		CatalogURL:          catalog.DefaultIndexURL,
		MaxConcurrentProbes: 8,
		ProbeTimeout:        10 * time.Second,
		PublicRPM:           120,
		PublicBurst:         60,
		AdminRPM:            60,
		AdminBurst:          30,
	}

	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("CATALOG_URL"); v != "" {
		cfg.CatalogURL = v
	}
	cfg.Lang = os.Getenv("CATALOG_LANG")
	cfg.SlackWebhook = os.Getenv("SLACK_WEBHOOK")
	cfg.DiagnoseDNS = os.Getenv("DIAGNOSE_DNS") == "1"

	if v := os.Getenv("MAX_CONCURRENT_PROBES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxConcurrentProbes = n
		}
	}
	if v := os.Getenv("PROBE_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.ProbeTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	cfg.PublicAPIKeys = splitKeys(os.Getenv("PUBLIC_API_KEYS"))
	cfg.AdminAPIKeys = splitKeys(os.Getenv("ADMIN_API_KEYS"))
	if n, ok := envInt("PUBLIC_RPM"); ok {
		cfg.PublicRPM = n
	}
	if n, ok := envInt("PUBLIC_BURST"); ok {
		cfg.PublicBurst = n
	}
	if n, ok := envInt("ADMIN_RPM"); ok {
		cfg.AdminRPM = n
	}
	if n, ok := envInt("ADMIN_BURST"); ok {
		cfg.AdminBurst = n
	}
	return cfg
}

// fileConfig mirrors Config with optional fields so a YAML file only
// overrides what it names.
type fileConfig struct {
	Addr                *string `yaml:"addr"`
	LogDir              *string `yaml:"log_dir"`
	CatalogURL          *string `yaml:"catalog_url"`
	Lang                *string `yaml:"lang"`
	SlackWebhook        *string `yaml:"slack_webhook"`
	DiagnoseDNS         *bool   `yaml:"diagnose_dns"`
	MaxConcurrentProbes *int    `yaml:"max_concurrent_probes"`
	ProbeTimeoutMS      *int    `yaml:"probe_timeout_ms"`
}

// Overlay applies a YAML config file on top of cfg and returns the result.
func Overlay(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	if fc.Addr != nil {
		cfg.Addr = *fc.Addr
	}
	if fc.LogDir != nil {
		cfg.LogDir = *fc.LogDir
	}
	if fc.CatalogURL != nil {
		cfg.CatalogURL = *fc.CatalogURL
	}
	if fc.Lang != nil {
		cfg.Lang = *fc.Lang
	}
	if fc.SlackWebhook != nil {
		cfg.SlackWebhook = *fc.SlackWebhook
	}
	if fc.DiagnoseDNS != nil {
		cfg.DiagnoseDNS = *fc.DiagnoseDNS
	}
	if fc.MaxConcurrentProbes != nil {
		cfg.MaxConcurrentProbes = *fc.MaxConcurrentProbes
	}
	if fc.ProbeTimeoutMS != nil {
		cfg.ProbeTimeout = time.Duration(*fc.ProbeTimeoutMS) * time.Millisecond
	}
	return cfg, nil
}

// Validate rejects invalid values outright instead of clamping them, so a
// typo in the environment fails the run before any probing starts.
func (c Config) Validate() error {
	var errs error
	if c.MaxConcurrentProbes < 1 {
		errs = multierr.Append(errs, fmt.Errorf("MAX_CONCURRENT_PROBES must be positive, got %d", c.MaxConcurrentProbes))
	}
	if c.ProbeTimeout <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("PROBE_TIMEOUT_MS must be positive, got %v", c.ProbeTimeout))
	}
	if c.CatalogURL == "" {
		errs = multierr.Append(errs, fmt.Errorf("CATALOG_URL must not be empty"))
	}
	if c.PublicRPM < 0 || c.AdminRPM < 0 {
		errs = multierr.Append(errs, fmt.Errorf("rate limits must not be negative"))
	}
	return errs
}

func splitKeys(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

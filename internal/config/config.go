package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
)

// Config represents the application configuration.
type Config struct {
	SDKRoot    string        `yaml:"sdk_root,omitempty"`
	SDKVersion string        `yaml:"sdk_version,omitempty"`
	Tools      ToolsConfig   `yaml:"tools"`
	Build      BuildConfig   `yaml:"build"`
	Metrics    MetricsConfig `yaml:"metrics"`
	Logging    LoggingConfig `yaml:"logging"`
}

// ToolsConfig overrides the executables located on PATH. Empty fields fall back
// to PATH discovery of the default names.
type ToolsConfig struct {
	Doxygen string `yaml:"doxygen,omitempty"`
	CMake   string `yaml:"cmake,omitempty"`
	Apidoc  string `yaml:"apidoc,omitempty"`
	Sphinx  string `yaml:"sphinx,omitempty"`
}

// BuildConfig controls scheduling and the naming conventions of the SDK.
type BuildConfig struct {
	Workers     int `yaml:"workers,omitempty"`      // extraction/conversion pool; 0 = NumCPU-1 (min 1)
	SiteWorkers int `yaml:"site_workers,omitempty"` // concurrent site-generator runs

	ExtractTimeout string `yaml:"extract_timeout,omitempty"`
	ApidocTimeout  string `yaml:"apidoc_timeout,omitempty"`
	SiteTimeout    string `yaml:"site_timeout,omitempty"`
	ExportTimeout  string `yaml:"export_timeout,omitempty"`

	CoreComponent    string `yaml:"core_component,omitempty"`
	PrimaryComponent string `yaml:"primary_component,omitempty"`

	// Graph filtering.
	SDKPrefix            string   `yaml:"sdk_prefix,omitempty"`
	RuntimeSupportPrefix string   `yaml:"runtime_support_prefix,omitempty"`
	ExcludeKeywords      []string `yaml:"exclude_keywords,omitempty"`

	// ExportMacroPrefix is stripped from a component name to derive its export macro.
	ExportMacroPrefix string `yaml:"export_macro_prefix,omitempty"`

	// KeepSources leaves the per-component source-<component> trees on disk
	// after their site build.
	KeepSources bool `yaml:"keep_sources,omitempty"`
}

// MetricsConfig configures the optional Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// Load builds the configuration. Environment files (.env, .env.local) are loaded
// first without overriding the process environment. An empty configPath yields
// the defaults; a non-empty path must exist.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	var cfg Config
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.ConfigError("configuration file not found").
					WithContext("path", configPath).Build()
			}
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
				Fatal().WithContext("path", configPath).Build()
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
				Fatal().WithContext("path", configPath).Build()
		}
	}

	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	_ = applyDefaults(&cfg)
	return &cfg
}

// loadEnvFiles loads .env and .env.local when present. godotenv.Load never
// overrides variables that are already set.
func loadEnvFiles() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			fmt.Fprintf(os.Stderr, "Note: %s could not be loaded: %v\n", envPath, err)
		}
	}
}

// ExtractTimeoutDuration returns the per-component extraction timeout.
func (b BuildConfig) ExtractTimeoutDuration() time.Duration {
	return mustDuration(b.ExtractTimeout, DefaultExtractTimeout)
}

// ApidocTimeoutDuration returns the per-component conversion timeout.
func (b BuildConfig) ApidocTimeoutDuration() time.Duration {
	return mustDuration(b.ApidocTimeout, DefaultApidocTimeout)
}

// SiteTimeoutDuration returns the per-component site generator timeout.
func (b BuildConfig) SiteTimeoutDuration() time.Duration {
	return mustDuration(b.SiteTimeout, DefaultSiteTimeout)
}

// ExportTimeoutDuration returns the graph exporter timeout.
func (b BuildConfig) ExportTimeoutDuration() time.Duration {
	return mustDuration(b.ExportTimeout, DefaultExportTimeout)
}

func mustDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

package config

import (
	"runtime"
	"time"
)

// Default values, mirrored by applyDefaults.
const (
	DefaultCoreComponent        = "aws-cpp-sdk-core"
	DefaultSDKPrefix            = "aws-cpp"
	DefaultRuntimeSupportPrefix = "aws-crt-cpp"
	DefaultExportMacroPrefix    = "aws-cpp-sdk-"
	DefaultSiteWorkers          = 4

	DefaultExtractTimeout = 180 * time.Second
	DefaultApidocTimeout  = 10 * time.Minute
	DefaultSiteTimeout    = time.Hour
	DefaultExportTimeout  = 10 * time.Minute
)

// DefaultExcludeKeywords drops edges of test and sample targets from the exported graph.
var DefaultExcludeKeywords = []string{"test", "sample"}

// DefaultWorkers returns the pool size used when build.workers is unset:
// available parallelism minus one, never below one.
func DefaultWorkers() int {
	return max(runtime.NumCPU()-1, 1)
}

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// BuildDefaultApplier handles Build configuration defaults.
type BuildDefaultApplier struct{}

func (BuildDefaultApplier) Domain() string { return "build" }

func (BuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	b := &cfg.Build
	if b.Workers <= 0 {
		b.Workers = DefaultWorkers()
	}
	if b.SiteWorkers <= 0 {
		b.SiteWorkers = DefaultSiteWorkers
	}
	if b.ExtractTimeout == "" {
		b.ExtractTimeout = DefaultExtractTimeout.String()
	}
	if b.ApidocTimeout == "" {
		b.ApidocTimeout = DefaultApidocTimeout.String()
	}
	if b.SiteTimeout == "" {
		b.SiteTimeout = DefaultSiteTimeout.String()
	}
	if b.ExportTimeout == "" {
		b.ExportTimeout = DefaultExportTimeout.String()
	}
	if b.CoreComponent == "" {
		b.CoreComponent = DefaultCoreComponent
	}
	// The core component's site is the merge target unless told otherwise.
	if b.PrimaryComponent == "" {
		b.PrimaryComponent = b.CoreComponent
	}
	if b.SDKPrefix == "" {
		b.SDKPrefix = DefaultSDKPrefix
	}
	if b.RuntimeSupportPrefix == "" {
		b.RuntimeSupportPrefix = DefaultRuntimeSupportPrefix
	}
	if b.ExcludeKeywords == nil {
		b.ExcludeKeywords = append([]string(nil), DefaultExcludeKeywords...)
	}
	if b.ExportMacroPrefix == "" {
		b.ExportMacroPrefix = DefaultExportMacroPrefix
	}
	return nil
}

// LoggingDefaultApplier handles Logging configuration defaults.
type LoggingDefaultApplier struct{}

func (LoggingDefaultApplier) Domain() string { return "logging" }

func (LoggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	return nil
}

// SDKDefaultApplier resolves the SDK root.
type SDKDefaultApplier struct{}

func (SDKDefaultApplier) Domain() string { return "sdk" }

func (SDKDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.SDKRoot == "" {
		cfg.SDKRoot = DefaultSDKRoot
	}
	return nil
}

// DefaultSDKRoot assumes the tool is started from docs/sphinx/source of the SDK checkout.
const DefaultSDKRoot = "../../.."

func applyDefaults(cfg *Config) error {
	appliers := []DefaultApplier{
		SDKDefaultApplier{},
		BuildDefaultApplier{},
		LoggingDefaultApplier{},
	}
	for _, a := range appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

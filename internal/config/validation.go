package config

import (
	"time"

	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
)

// Validate checks the configuration after defaults have been applied.
func (c *Config) Validate() error {
	durations := map[string]string{
		"build.extract_timeout": c.Build.ExtractTimeout,
		"build.apidoc_timeout":  c.Build.ApidocTimeout,
		"build.site_timeout":    c.Build.SiteTimeout,
		"build.export_timeout":  c.Build.ExportTimeout,
	}
	for field, raw := range durations {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return errors.WrapError(err, errors.CategoryValidation, "invalid duration").
				Fatal().WithContext("field", field).Build()
		}
		if d <= 0 {
			return errors.ValidationError("duration must be positive").
				WithContext("field", field).Build()
		}
	}
	if c.Build.CoreComponent == "" {
		return errors.ValidationError("build.core_component must not be empty").Build()
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
)

func TestLoad_EmptyPathAppliesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultSDKRoot, cfg.SDKRoot)
	assert.Equal(t, DefaultWorkers(), cfg.Build.Workers)
	assert.GreaterOrEqual(t, cfg.Build.Workers, 1)
	assert.Equal(t, DefaultSiteWorkers, cfg.Build.SiteWorkers)
	assert.Equal(t, 180*time.Second, cfg.Build.ExtractTimeoutDuration())
	assert.Equal(t, time.Hour, cfg.Build.SiteTimeoutDuration())
	assert.Equal(t, "aws-cpp-sdk-core", cfg.Build.CoreComponent)
	assert.Equal(t, "aws-cpp-sdk-core", cfg.Build.PrimaryComponent)
	assert.Equal(t, []string{"test", "sample"}, cfg.Build.ExcludeKeywords)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
}

func TestLoad_YAMLWithEnvExpansion(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("SDKDOCS_TEST_DOXYGEN", "/opt/doxygen/bin/doxygen")

	path := filepath.Join(dir, "sdkdocs.yaml")
	content := `
sdk_root: /src/aws-sdk-cpp
tools:
  doxygen: ${SDKDOCS_TEST_DOXYGEN}
build:
  workers: 3
  extract_timeout: 30s
  primary_component: aws-cpp-sdk-s3
  keep_sources: true
logging:
  level: DEBUG
  format: json
metrics:
  textfile: /var/lib/node_exporter/sdkdocs.prom
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/src/aws-sdk-cpp", cfg.SDKRoot)
	assert.Equal(t, "/opt/doxygen/bin/doxygen", cfg.Tools.Doxygen)
	assert.Equal(t, 3, cfg.Build.Workers)
	assert.Equal(t, 30*time.Second, cfg.Build.ExtractTimeoutDuration())
	assert.Equal(t, "aws-cpp-sdk-s3", cfg.Build.PrimaryComponent)
	assert.Equal(t, "aws-cpp-sdk-core", cfg.Build.CoreComponent)
	assert.True(t, cfg.Build.KeepSources)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, "/var/lib/node_exporter/sdkdocs.prom", cfg.Metrics.Textfile)
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("SDKDOCS_TEST_SPHINX", "from-process")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("SDKDOCS_TEST_SPHINX=from-dotenv\nSDKDOCS_TEST_APIDOC=/usr/bin/breathe-apidoc\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SDKDOCS_TEST_APIDOC") })

	path := filepath.Join(dir, "sdkdocs.yaml")
	require.NoError(t, os.WriteFile(path,
		[]byte("tools:\n  sphinx: ${SDKDOCS_TEST_SPHINX}\n  apidoc: ${SDKDOCS_TEST_APIDOC}\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-process", cfg.Tools.Sphinx)
	assert.Equal(t, "/usr/bin/breathe-apidoc", cfg.Tools.Apidoc)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("build: [unterminated"), 0o600))
	_, err = Load(bad)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("build:\n  site_timeout: soon\n"), 0o600))
	_, err = Load(invalid)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestLogLevelMapping(t *testing.T) {
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel(" Warn "))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("verbose"))
	assert.Equal(t, "DEBUG", LogLevelDebug.SlogLevel().String())
	assert.Equal(t, "ERROR", LogLevelError.SlogLevel().String())
}

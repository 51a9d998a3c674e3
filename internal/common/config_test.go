package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/turngreen-e2e/internal/models"
)

// isolateEnv clears every variable the loader reads and moves into an empty
// directory so no stray .env file is picked up.
func isolateEnv(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"ENV", "CI", "HEADLESS", "BASE_URL", "FUSION_EMAIL", "FUSION_PASSWORD",
		"TURNGREEN_WORKERS", "TURNGREEN_RETRIES", "TURNGREEN_SCENARIO_TIMEOUT",
		"TURNGREEN_RESULTS_DIR", "TURNGREEN_CHROME_PATH", "TURNGREEN_BADGER_PATH",
		"TURNGREEN_SCHEDULE", "TURNGREEN_LOG_LEVEL", "TURNGREEN_LOG_OUTPUT",
	} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNewDefaultConfig_IsValidLocalProfile(t *testing.T) {
	config := NewDefaultConfig()

	require.NoError(t, config.Validate())
	assert.False(t, config.Browser.Headless)
	assert.Equal(t, 0, config.Retries)
	assert.Equal(t, 1, config.Workers)
	assert.Equal(t, 90*time.Second, config.ScenarioTimeoutDuration())
	assert.Equal(t, 5*time.Second, config.ExpectTimeoutDuration())
	assert.Equal(t, "/qa-service", config.ServicePath)
}

func TestLoadFromFiles_LaterFileWins(t *testing.T) {
	dir := isolateEnv(t)
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")
	writeFile(t, base, "base_url = \"https://base.example\"\nworkers = 2\n[logging]\nlevel = \"debug\"\n")
	writeFile(t, override, "workers = 3\n")

	config, err := LoadFromFiles(base, override)
	require.NoError(t, err)

	assert.Equal(t, "https://base.example", config.BaseURL)
	assert.Equal(t, 3, config.Workers)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	isolateEnv(t)

	_, err := LoadFromFiles("does-not-exist.toml")
	assert.Error(t, err)
}

func TestLoadFromFiles_EnvFilesAndEnvironmentOrder(t *testing.T) {
	dir := isolateEnv(t)
	writeFile(t, filepath.Join(dir, ".env"), "BASE_URL=https://from-dotenv.example\nFUSION_EMAIL=qa@turngreen.pt\n")
	writeFile(t, filepath.Join(dir, ".env.staging"), "BASE_URL=\"https://staging.example\"\n")
	t.Setenv("ENV", "staging")

	config, err := LoadFromFiles()
	require.NoError(t, err)
	assert.Equal(t, "staging", config.Environment)
	assert.Equal(t, "https://staging.example", config.BaseURL)
	assert.Equal(t, "qa@turngreen.pt", config.Value("FUSION_EMAIL"))

	t.Setenv("BASE_URL", "https://from-process.example")
	config, err = LoadFromFiles()
	require.NoError(t, err)
	assert.Equal(t, "https://from-process.example", config.BaseURL)
}

func TestLoadForEnvironment_SelectsEnvFile(t *testing.T) {
	dir := isolateEnv(t)
	writeFile(t, filepath.Join(dir, ".env"), "ENV=local\n")
	writeFile(t, filepath.Join(dir, ".env.staging"), "BASE_URL=https://staging.example\nFUSION_EMAIL=stg@turngreen.pt\n")
	writeFile(t, filepath.Join(dir, ".env.production"), "BASE_URL=https://prod.example\n")
	t.Setenv("ENV", "production")

	config, err := LoadForEnvironment("staging")
	require.NoError(t, err)
	assert.Equal(t, "staging", config.Environment)
	assert.Equal(t, "https://staging.example", config.BaseURL)
	assert.Equal(t, "stg@turngreen.pt", config.Value("FUSION_EMAIL"))
}

func TestLoadFromFiles_DotEnvNamesEnvironment(t *testing.T) {
	dir := isolateEnv(t)
	writeFile(t, filepath.Join(dir, ".env"), "ENV=staging\n")
	writeFile(t, filepath.Join(dir, ".env.staging"), "BASE_URL=https://staging.example\n")

	config, err := LoadFromFiles()
	require.NoError(t, err)
	assert.Equal(t, "staging", config.Environment)
	assert.Equal(t, "https://staging.example", config.BaseURL)
}

func TestLoadFromFiles_CIProfile(t *testing.T) {
	isolateEnv(t)
	t.Setenv("CI", "true")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.True(t, config.CI)
	assert.True(t, config.Browser.Headless)
	assert.Equal(t, 2, config.Retries)
	assert.Equal(t, 1, config.Workers)
}

func TestLoadFromFiles_ExplicitOverridesBeatCIProfile(t *testing.T) {
	isolateEnv(t)
	t.Setenv("CI", "1")
	t.Setenv("HEADLESS", "false")
	t.Setenv("TURNGREEN_RETRIES", "1")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.False(t, config.Browser.Headless)
	assert.Equal(t, 1, config.Retries)
}

func TestLoadFromFiles_ResolvesKeyReferences(t *testing.T) {
	dir := isolateEnv(t)
	writeFile(t, filepath.Join(dir, ".env"), "STAGING_HOST=staging.turngreen.example\n")
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, "base_url = \"https://{STAGING_HOST}\"\n")

	config, err := LoadFromFiles(path)
	require.NoError(t, err)
	assert.Equal(t, "https://staging.turngreen.example", config.BaseURL)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()
	workers, retries, headless, env := 4, 1, true, "staging"

	ApplyFlagOverrides(config, FlagOverrides{
		Environment: &env,
		Workers:     &workers,
		Retries:     &retries,
		Headless:    &headless,
	})

	assert.Equal(t, "staging", config.Environment)
	assert.Equal(t, 4, config.Workers)
	assert.Equal(t, 1, config.Retries)
	assert.True(t, config.Browser.Headless)
	assert.Equal(t, "./results", config.ResultsDir, "unset flags leave values alone")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad base url", func(c *Config) { c.BaseURL = "not a url" }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"too many retries", func(c *Config) { c.Retries = 9 }},
		{"relative service path", func(c *Config) { c.ServicePath = "qa-service" }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad duration", func(c *Config) { c.ScenarioTimeout = "ninety" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestValidate_BadDurationIsConfigurationError(t *testing.T) {
	config := NewDefaultConfig()
	config.Browser.NavTimeout = "-1s"

	err := config.Validate()
	var ce *models.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "browser.nav_timeout", ce.Name)
}

func TestRequiredValue(t *testing.T) {
	isolateEnv(t)
	config := NewDefaultConfig()

	_, err := config.RequiredValue("FUSION_EMAIL")
	var ce *models.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "FUSION_EMAIL", ce.Name)

	config.SetValue("FUSION_EMAIL", "   ")
	_, err = config.RequiredValue("FUSION_EMAIL")
	assert.True(t, models.IsConfiguration(err), "whitespace-only is empty")

	config.SetValue("FUSION_EMAIL", "qa@turngreen.pt")
	v, err := config.RequiredValue("FUSION_EMAIL")
	require.NoError(t, err)
	assert.Equal(t, "qa@turngreen.pt", v)

	t.Setenv("FUSION_EMAIL", "ci@turngreen.pt")
	v, err = config.RequiredValue("FUSION_EMAIL")
	require.NoError(t, err)
	assert.Equal(t, "ci@turngreen.pt", v, "process environment wins over .env")
}

func TestRequiredValue_KeepsEdgeWhitespace(t *testing.T) {
	dir := isolateEnv(t)
	writeFile(t, filepath.Join(dir, ".env"), "FUSION_PASSWORD=\"  s3cret \"\n")

	config, err := LoadFromFiles()
	require.NoError(t, err)
	v, err := config.RequiredValue("FUSION_PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, "  s3cret ", v)

	config.SetValue("FUSION_EMAIL", " qa@turngreen.pt")
	v, err = config.RequiredValue("FUSION_EMAIL")
	require.NoError(t, err)
	assert.Equal(t, " qa@turngreen.pt", v)
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		valid    bool
	}{
		{"*/30 * * * *", true},
		{"0 6 * * 1-5", true},
		{"*/5 * * * *", true},
		{"* * * * *", false},
		{"*/2 * * * *", false},
		{"not cron", false},
	}

	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			err := ValidateSchedule(tt.schedule)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestIsProduction(t *testing.T) {
	config := NewDefaultConfig()
	assert.False(t, config.IsProduction())
	config.Environment = "Production"
	assert.True(t, config.IsProduction())
}

package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/turngreen-e2e/internal/models"
)

// Config represents the suite configuration
type Config struct {
	Environment     string         `toml:"environment" validate:"required"` // "local", "staging", "production"
	CI              bool           `toml:"ci"`                              // CI profile: headless, retries 2, workers 1
	BaseURL         string         `toml:"base_url" validate:"omitempty,url"`
	ServicePath     string         `toml:"service_path" validate:"required,startswith=/"`
	Workers         int            `toml:"workers" validate:"gte=1,lte=16"`
	Retries         int            `toml:"retries" validate:"gte=0,lte=5"`
	ScenarioTimeout string         `toml:"scenario_timeout" validate:"required"` // e.g. "90s"
	ExpectTimeout   string         `toml:"expect_timeout" validate:"required"`   // assertion retry window
	ResultsDir      string         `toml:"results_dir" validate:"required"`
	EnvFiles        []string       `toml:"env_files"` // extra .env style files, loaded after .env and .env.{environment}
	Browser         BrowserConfig  `toml:"browser"`
	Logging         LoggingConfig  `toml:"logging"`
	Storage         StorageConfig  `toml:"storage"`
	Schedule        ScheduleConfig `toml:"schedule"`

	// values holds KEY=value pairs read from .env files.
	values map[string]string
	// envPinned is set when --env or ENV chose the environment.
	envPinned bool
}

type BrowserConfig struct {
	Headless        bool    `toml:"headless"`
	NoSandbox       bool    `toml:"no_sandbox"`
	ExecPath        string  `toml:"exec_path"` // Chrome binary, empty for auto-detection
	Proxy           string  `toml:"proxy"`
	UserAgent       string  `toml:"user_agent"`
	WindowWidth     int     `toml:"window_width" validate:"gte=320"`
	WindowHeight    int     `toml:"window_height" validate:"gte=240"`
	ActionTimeout   string  `toml:"action_timeout"`
	NavTimeout      string  `toml:"nav_timeout"`
	RecordFPS       float64 `toml:"record_fps" validate:"gte=0,lte=30"`
	RecordMaxFrames int     `toml:"record_max_frames" validate:"gte=0"`
	Debug           bool    `toml:"debug"` // log CDP traffic
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=trace debug info warn error"`
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // default "15:04:05"
	Dir        string   `toml:"dir"`         // log and crash file directory
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path, empty disables run history
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup
	KeepRuns       int    `toml:"keep_runs"`        // Runs kept per scenario by history pruning, 0 keeps all
}

type ScheduleConfig struct {
	Cron string `toml:"cron"` // 5-field cron expression for the schedule command
}

// NewDefaultConfig creates a configuration for local runs.
func NewDefaultConfig() *Config {
	return &Config{
		Environment:     "local",
		ServicePath:     "/qa-service",
		Workers:         1,
		Retries:         0,
		ScenarioTimeout: "90s",
		ExpectTimeout:   "5s",
		ResultsDir:      "./results",
		Browser: BrowserConfig{
			Headless:        false,
			NoSandbox:       true,
			WindowWidth:     1920,
			WindowHeight:    1080,
			ActionTimeout:   "10s",
			NavTimeout:      "30s",
			RecordFPS:       2,
			RecordMaxFrames: 240,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
			Dir:        "./logs",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:     "./data/runs",
				KeepRuns: 50,
			},
		},
		Schedule: ScheduleConfig{
			Cron: "*/30 * * * *",
		},
		values: map[string]string{},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> .env -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> .env files -> CI profile -> env.
// Later files override earlier files. CLI flags are applied by the caller with
// ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	return LoadForEnvironment("", paths...)
}

// LoadForEnvironment is LoadFromFiles with the environment chosen by the
// caller, usually the --env flag. A non-empty env wins over ENV and the
// config files, and selects the .env.{env} file that is loaded.
func LoadForEnvironment(env string, paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// The environment selects the .env.{env} file, so it is settled before
	// the env files are read.
	switch {
	case env != "":
		config.Environment = env
		config.envPinned = true
	case os.Getenv("ENV") != "":
		config.Environment = os.Getenv("ENV")
		config.envPinned = true
	}

	if err := config.loadEnvFiles(); err != nil {
		return nil, err
	}

	// {KEY} references in string settings resolve against .env values and the environment.
	if err := ReplaceInStruct(config, config.lookupMap(), GetLogger()); err != nil {
		return nil, fmt.Errorf("failed to resolve key references: %w", err)
	}

	applyEnvOverrides(config)

	return config, nil
}

func (c *Config) loadEnvFiles() error {
	if err := c.mergeEnvFile(".env"); err != nil {
		return err
	}
	// .env may name the environment whose .env.{env} file comes next.
	if v := c.values["ENV"]; v != "" && !c.envPinned {
		c.Environment = v
	}

	var files []string
	if c.Environment != "" {
		files = append(files, ".env."+c.Environment)
	}
	files = append(files, c.EnvFiles...)
	for _, file := range files {
		if err := c.mergeEnvFile(file); err != nil {
			return err
		}
	}

	// Settings that may live in .env rather than the process environment.
	if v := c.values["BASE_URL"]; v != "" {
		c.BaseURL = v
	}
	if v, ok := parseBool(c.values["CI"]); ok {
		c.CI = v
	}
	if v, ok := parseBool(c.values["HEADLESS"]); ok {
		c.Browser.Headless = v
	}
	return nil
}

func (c *Config) mergeEnvFile(file string) error {
	values, err := LoadEnvFile(file)
	if err != nil {
		return fmt.Errorf("failed to load env file %s: %w", file, err)
	}
	for k, v := range values {
		c.values[k] = v
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		config.BaseURL = baseURL
	}

	if ci, ok := parseBool(os.Getenv("CI")); ok {
		config.CI = ci
	}
	if config.CI {
		applyCIProfile(config)
	}

	if headless, ok := parseBool(os.Getenv("HEADLESS")); ok {
		config.Browser.Headless = headless
	}

	if workers := os.Getenv("TURNGREEN_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil {
			config.Workers = w
		}
	}
	if retries := os.Getenv("TURNGREEN_RETRIES"); retries != "" {
		if r, err := strconv.Atoi(retries); err == nil {
			config.Retries = r
		}
	}
	if timeout := os.Getenv("TURNGREEN_SCENARIO_TIMEOUT"); timeout != "" {
		config.ScenarioTimeout = timeout
	}
	if dir := os.Getenv("TURNGREEN_RESULTS_DIR"); dir != "" {
		config.ResultsDir = dir
	}
	if chrome := os.Getenv("TURNGREEN_CHROME_PATH"); chrome != "" {
		config.Browser.ExecPath = chrome
	}
	if badgerPath := os.Getenv("TURNGREEN_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if schedule := os.Getenv("TURNGREEN_SCHEDULE"); schedule != "" {
		config.Schedule.Cron = schedule
	}

	if level := os.Getenv("TURNGREEN_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("TURNGREEN_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// applyCIProfile mirrors the pipeline defaults: no display, a single worker
// and two retries for flaky infrastructure.
func applyCIProfile(config *Config) {
	config.Browser.Headless = true
	config.Workers = 1
	config.Retries = 2
}

// FlagOverrides carries command-line values. Nil fields were not set.
type FlagOverrides struct {
	Environment *string
	Workers     *int
	Retries     *int
	Headless    *bool
	ResultsDir  *string
	LogLevel    *string
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, flags FlagOverrides) {
	if flags.Environment != nil && *flags.Environment != "" {
		config.Environment = *flags.Environment
	}
	if flags.Workers != nil && *flags.Workers > 0 {
		config.Workers = *flags.Workers
	}
	if flags.Retries != nil && *flags.Retries >= 0 {
		config.Retries = *flags.Retries
	}
	if flags.Headless != nil {
		config.Browser.Headless = *flags.Headless
	}
	if flags.ResultsDir != nil && *flags.ResultsDir != "" {
		config.ResultsDir = *flags.ResultsDir
	}
	if flags.LogLevel != nil && *flags.LogLevel != "" {
		config.Logging.Level = *flags.LogLevel
	}
}

// Validate checks field constraints and duration syntax.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	durations := map[string]string{
		"scenario_timeout":       c.ScenarioTimeout,
		"expect_timeout":         c.ExpectTimeout,
		"browser.action_timeout": c.Browser.ActionTimeout,
		"browser.nav_timeout":    c.Browser.NavTimeout,
	}
	for name, value := range durations {
		if value == "" {
			continue
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return &models.ConfigurationError{Name: name, Reason: fmt.Sprintf("invalid duration %q", value)}
		}
		if d <= 0 {
			return &models.ConfigurationError{Name: name, Reason: "must be positive"}
		}
	}
	return nil
}

// RequiredValue resolves name from the process environment, then from the
// loaded .env files. Missing or empty values are a ConfigurationError.
func (c *Config) RequiredValue(name string) (string, error) {
	// Only blank-ness is judged on trimmed text; the value itself is returned
	// as configured, since passwords may carry edge whitespace.
	if v := c.Value(name); strings.TrimSpace(v) != "" {
		return v, nil
	}
	return "", &models.ConfigurationError{Name: name, Reason: "not defined in .env or the environment"}
}

// Value returns name from the process environment or the loaded .env files.
func (c *Config) Value(name string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return c.values[name]
}

// SetValue stores a .env style value. Process environment still takes precedence.
func (c *Config) SetValue(name, value string) {
	if c.values == nil {
		c.values = map[string]string{}
	}
	c.values[name] = value
}

// lookupMap merges .env values with the process environment for {KEY} replacement.
func (c *Config) lookupMap() map[string]string {
	m := make(map[string]string, len(c.values))
	for k, v := range c.values {
		m[k] = v
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && v != "" {
			m[k] = v
		}
	}
	return m
}

// ScenarioTimeoutDuration returns the per-scenario bound.
func (c *Config) ScenarioTimeoutDuration() time.Duration {
	return parseDurationOr(c.ScenarioTimeout, 90*time.Second)
}

// ExpectTimeoutDuration returns the assertion retry window.
func (c *Config) ExpectTimeoutDuration() time.Duration {
	return parseDurationOr(c.ExpectTimeout, 5*time.Second)
}

func (b BrowserConfig) ActionTimeoutDuration() time.Duration {
	return parseDurationOr(b.ActionTimeout, 10*time.Second)
}

func (b BrowserConfig) NavTimeoutDuration() time.Duration {
	return parseDurationOr(b.NavTimeout, 30*time.Second)
}

// ResultsPath returns the absolute results directory.
func (c *Config) ResultsPath() string {
	if abs, err := filepath.Abs(c.ResultsDir); err == nil {
		return abs
	}
	return c.ResultsDir
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}

// ValidateSchedule validates a cron schedule expression and ensures a minimum
// 5-minute interval so monitoring runs cannot overlap.
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	parts := strings.Fields(schedule)
	if len(parts) < 5 {
		return fmt.Errorf("invalid cron format: expected 5 fields")
	}

	minuteField := parts[0]
	if minuteField == "*" {
		return fmt.Errorf("schedule must have minimum 5-minute interval (every minute is not allowed)")
	}
	if strings.HasPrefix(minuteField, "*/") {
		interval, err := strconv.Atoi(strings.TrimPrefix(minuteField, "*/"))
		if err == nil && interval < 5 {
			return fmt.Errorf("schedule interval must be at least 5 minutes, got %d", interval)
		}
	}
	return nil
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

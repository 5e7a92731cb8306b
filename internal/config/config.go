package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/babylog/internal/errs"
	"github.com/crimson-sun/babylog/internal/output"
)

// Sink names accepted in Output.Sinks.
const (
	SinkPostHog  = "posthog"
	SinkStdout   = "stdout"
	SinkFile     = "file"
	SinkLedger   = "ledger"
	SinkCalendar = "calendar"
)

var knownSinks = []string{SinkPostHog, SinkStdout, SinkFile, SinkLedger, SinkCalendar}

// KeyringService is the OS keyring service the PostHog key is stored under.
const KeyringService = "babylog"

// Config holds all babylog configuration.
type Config struct {
	Connector ConnectorConfig `yaml:"connector"`
	Engine    EngineConfig    `yaml:"engine"`
	Output    OutputConfig    `yaml:"output"`
	PostHog   PostHogConfig   `yaml:"posthog"`
	LogLevel  string          `yaml:"log_level"`

	// Emission window, naive local date-times. Empty means unbounded.
	Since string `yaml:"since"`
	Until string `yaml:"until"`
}

// ConnectorConfig holds source settings.
type ConnectorConfig struct {
	Provider string            `yaml:"provider"`
	Path     string            `yaml:"path"`
	Extra    map[string]string `yaml:"extra"`
}

// EngineConfig holds normalization and derivation settings.
type EngineConfig struct {
	Timezone       string        `yaml:"timezone"`
	Birth          string        `yaml:"birth"`
	SubjectID      string        `yaml:"subject_id"`
	SleepMaxGap    time.Duration `yaml:"sleep_max_gap"`
	NightStartHour int           `yaml:"night_start_hour"`
	NightEndHour   int           `yaml:"night_end_hour"`
}

// OutputConfig holds sink selection and local sink settings.
type OutputConfig struct {
	Sinks        []string `yaml:"sinks"`
	Pretty       bool     `yaml:"pretty"`
	Verbosity    string   `yaml:"verbosity"` // "minimal", "standard"
	FilePath     string   `yaml:"file_path"`
	FileMaxSize  int64    `yaml:"file_max_size"`
	FileTruncate bool     `yaml:"file_truncate"`
	LedgerPath   string   `yaml:"ledger_path"`
	CalendarPath string   `yaml:"calendar_path"`
}

// PostHogConfig holds the capture API settings.
type PostHogConfig struct {
	APIKey      string        `yaml:"api_key"`
	Host        string        `yaml:"host"`
	Pacing      time.Duration `yaml:"pacing"`
	Timeout     time.Duration `yaml:"timeout"`
	KeyringUser string        `yaml:"keyring_user"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Connector: ConnectorConfig{
			Provider: "csv",
			Path:     "data/export.csv",
		},
		Engine: EngineConfig{
			Timezone:       "America/New_York",
			SubjectID:      "9098",
			SleepMaxGap:    10 * time.Minute,
			NightStartHour: 19,
			NightEndHour:   7,
		},
		Output: OutputConfig{
			Sinks:        []string{SinkPostHog},
			Verbosity:    "standard",
			FilePath:     "events.ndjson",
			LedgerPath:   "babylog.db",
			CalendarPath: "babylog.ics",
		},
		PostHog: PostHogConfig{
			Host:        "https://us.i.posthog.com",
			Pacing:      150 * time.Millisecond,
			Timeout:     30 * time.Second,
			KeyringUser: "posthog",
		},
		LogLevel: "info",
	}
}

// Load builds the configuration from, in increasing precedence: defaults,
// the YAML file at path (or BABYLOG_CONFIG, default babylog.yaml), and
// BABYLOG_* environment variables. A .env file in the working directory
// seeds the environment without overriding it. When the PostHog key is
// still unset it is looked up in the OS keyring.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = getenv("BABYLOG_CONFIG", "babylog.yaml")
		explicit = os.Getenv("BABYLOG_CONFIG") != ""
	}
	if err := loadFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return cfg, errs.Configuration("read config file "+path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.PostHog.APIKey == "" && cfg.HasSink(SinkPostHog) {
		key, err := keyring.Get(KeyringService, cfg.PostHog.KeyringUser)
		if err == nil {
			cfg.PostHog.APIKey = key
		} else if !errors.Is(err, keyring.ErrNotFound) {
			slog.Debug("keyring lookup failed", "service", KeyringService, "user", cfg.PostHog.KeyringUser, "error", err)
		}
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnv(cfg *Config) {
	cfg.Connector.Provider = getenv("BABYLOG_CONNECTOR", cfg.Connector.Provider)
	cfg.Connector.Path = getenv("BABYLOG_INPUT", cfg.Connector.Path)
	if v := os.Getenv("BABYLOG_CSV_DELIMITER"); v != "" {
		if cfg.Connector.Extra == nil {
			cfg.Connector.Extra = make(map[string]string)
		}
		cfg.Connector.Extra["comma"] = v
	}

	cfg.Engine.Timezone = getenv("BABYLOG_TIMEZONE", cfg.Engine.Timezone)
	cfg.Engine.Birth = getenv("BABYLOG_BIRTH", cfg.Engine.Birth)
	cfg.Engine.SubjectID = getenv("BABYLOG_SUBJECT_ID", cfg.Engine.SubjectID)
	cfg.Engine.SleepMaxGap = getenvDuration("BABYLOG_SLEEP_MAX_GAP", cfg.Engine.SleepMaxGap)

	if v := os.Getenv("BABYLOG_OUTPUT"); v != "" {
		cfg.Output.Sinks = SplitSinks(v)
	}
	cfg.Output.Pretty = getenvBool("BABYLOG_OUTPUT_PRETTY", cfg.Output.Pretty)
	cfg.Output.Verbosity = getenv("BABYLOG_OUTPUT_VERBOSITY", cfg.Output.Verbosity)
	cfg.Output.FilePath = getenv("BABYLOG_OUTPUT_FILE", cfg.Output.FilePath)
	cfg.Output.FileMaxSize = int64(getenvInt("BABYLOG_OUTPUT_FILE_MAX_SIZE", int(cfg.Output.FileMaxSize)))
	cfg.Output.FileTruncate = getenvBool("BABYLOG_OUTPUT_FILE_TRUNCATE", cfg.Output.FileTruncate)
	cfg.Output.LedgerPath = getenv("BABYLOG_LEDGER_PATH", cfg.Output.LedgerPath)
	cfg.Output.CalendarPath = getenv("BABYLOG_CALENDAR_PATH", cfg.Output.CalendarPath)

	cfg.PostHog.APIKey = getenv("BABYLOG_POSTHOG_API_KEY", cfg.PostHog.APIKey)
	cfg.PostHog.Host = getenv("BABYLOG_POSTHOG_HOST", cfg.PostHog.Host)
	cfg.PostHog.Pacing = getenvDuration("BABYLOG_PACING", cfg.PostHog.Pacing)
	cfg.PostHog.Timeout = getenvDuration("BABYLOG_HTTP_TIMEOUT", cfg.PostHog.Timeout)
	cfg.PostHog.KeyringUser = getenv("BABYLOG_KEYRING_USER", cfg.PostHog.KeyringUser)

	cfg.LogLevel = getenv("BABYLOG_LOG_LEVEL", cfg.LogLevel)
	cfg.Since = getenv("BABYLOG_SINCE", cfg.Since)
	cfg.Until = getenv("BABYLOG_UNTIL", cfg.Until)
}

// HasSink reports whether the named sink is selected.
func (c Config) HasSink(name string) bool {
	for _, s := range c.Output.Sinks {
		if s == name {
			return true
		}
	}
	return false
}

// SplitSinks parses a comma-separated sink list, dropping blanks and
// duplicates.
func SplitSinks(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// Validate checks the configuration and returns every problem found, as a
// single configuration error.
func (c Config) Validate() error {
	var problems []error

	if c.Connector.Path == "" {
		problems = append(problems, errors.New("input path is empty (BABYLOG_INPUT)"))
	}
	if _, err := time.LoadLocation(c.Engine.Timezone); err != nil || c.Engine.Timezone == "" {
		problems = append(problems, fmt.Errorf("unknown time zone %q (BABYLOG_TIMEZONE)", c.Engine.Timezone))
	}
	if strings.TrimSpace(c.Engine.Birth) == "" {
		problems = append(problems, errors.New("birth date is required (BABYLOG_BIRTH)"))
	}
	if strings.TrimSpace(c.Engine.SubjectID) == "" {
		problems = append(problems, errors.New("subject id is empty (BABYLOG_SUBJECT_ID)"))
	}
	if c.Engine.SleepMaxGap <= 0 {
		problems = append(problems, fmt.Errorf("sleep max gap must be positive, got %s", c.Engine.SleepMaxGap))
	}
	if c.Engine.NightStartHour < 1 || c.Engine.NightStartHour > 23 {
		problems = append(problems, fmt.Errorf("night start hour must be 1-23, got %d", c.Engine.NightStartHour))
	}
	if c.Engine.NightEndHour < 1 || c.Engine.NightEndHour > 23 {
		problems = append(problems, fmt.Errorf("night end hour must be 1-23, got %d", c.Engine.NightEndHour))
	}

	if len(c.Output.Sinks) == 0 {
		problems = append(problems, errors.New("no output sink selected (BABYLOG_OUTPUT)"))
	}
	for _, s := range c.Output.Sinks {
		if !contains(knownSinks, s) {
			problems = append(problems, fmt.Errorf("unknown output sink %q, want one of %s", s, strings.Join(knownSinks, ", ")))
		}
	}
	if _, err := output.ParseVerbosity(c.Output.Verbosity); err != nil {
		problems = append(problems, fmt.Errorf("output verbosity: %w", err))
	}
	if c.Output.FileMaxSize < 0 {
		problems = append(problems, errors.New("output file max size must not be negative"))
	}

	if c.HasSink(SinkPostHog) {
		if c.PostHog.APIKey == "" {
			problems = append(problems, fmt.Errorf("PostHog API key missing: set BABYLOG_POSTHOG_API_KEY or store it in the keyring (service %q, user %q)", KeyringService, c.PostHog.KeyringUser))
		}
		if !strings.HasPrefix(c.PostHog.Host, "http://") && !strings.HasPrefix(c.PostHog.Host, "https://") {
			problems = append(problems, fmt.Errorf("PostHog host %q must be an http(s) URL", c.PostHog.Host))
		}
	}
	if c.PostHog.Pacing < 0 {
		problems = append(problems, errors.New("pacing must not be negative"))
	}
	if c.PostHog.Timeout <= 0 {
		problems = append(problems, errors.New("http timeout must be positive"))
	}

	if len(problems) == 0 {
		return nil
	}
	return errs.Configuration("invalid configuration", errors.Join(problems...))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getenvInt returns the integer value of key, or fallback when it is unset
// or not a number.
func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

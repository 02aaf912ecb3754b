package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/vango-dev/hostbridge/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "hostbridge.json"

	// DefaultDemo is the demo backend run when none is named.
	DefaultDemo = "box"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default log handler format.
	DefaultLogFormat = "text"

	// DefaultBlinkInterval is the default toggle interval of blinking demos.
	DefaultBlinkInterval = "1s"

	// DefaultMetricsNamespace is the default Prometheus namespace.
	DefaultMetricsNamespace = "hostbridge"
)

// Config represents the complete hostbridge configuration.
type Config struct {
	// Demo is the demo backend to run ("box" or "pancake").
	Demo string `json:"demo,omitempty" toml:"demo"`

	// Duration stops the run after the given time (e.g., "10s").
	// Empty runs until interrupted.
	Duration string `json:"duration,omitempty" toml:"duration"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty" toml:"log"`

	// Blink contains the timer settings of the blinking demos.
	Blink BlinkConfig `json:"blink,omitempty" toml:"blink"`

	// Inspect contains the HTTP inspector configuration.
	Inspect InspectConfig `json:"inspect,omitempty" toml:"inspect"`

	// Snapshot contains render snapshot export configuration.
	Snapshot SnapshotConfig `json:"snapshot,omitempty" toml:"snapshot"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty" toml:"metrics"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty" toml:"level"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty" toml:"format"`
}

// BlinkConfig contains timer settings.
type BlinkConfig struct {
	// Interval is the toggle period (e.g., "500ms").
	Interval string `json:"interval,omitempty" toml:"interval"`
}

// InspectConfig contains inspector settings.
type InspectConfig struct {
	// Addr is the listen address. Empty disables the inspector.
	Addr string `json:"addr,omitempty" toml:"addr"`
}

// SnapshotConfig contains snapshot export settings.
type SnapshotConfig struct {
	// Stdout writes a JSON snapshot line after every render pass.
	Stdout bool `json:"stdout,omitempty" toml:"stdout"`

	// S3 uploads every snapshot to a bucket.
	S3 S3Config `json:"s3,omitempty" toml:"s3"`
}

// S3Config contains S3 sink settings.
type S3Config struct {
	// Bucket is the target bucket. Empty disables the sink.
	Bucket string `json:"bucket,omitempty" toml:"bucket"`

	// Prefix is prepended to object keys.
	Prefix string `json:"prefix,omitempty" toml:"prefix"`

	// Region is the bucket region.
	Region string `json:"region,omitempty" toml:"region"`

	// Endpoint overrides the service endpoint (S3-compatible stores).
	Endpoint string `json:"endpoint,omitempty" toml:"endpoint"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty" toml:"namespace"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Demo: DefaultDemo,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Blink: BlinkConfig{
			Interval: DefaultBlinkInterval,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultMetricsNamespace,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for hostbridge.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from path. Files ending in ".toml" are
// decoded as TOML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E040").
				WithDetail("No configuration file at " + path).
				WithSuggestion("Create " + ConfigFileName + " or pass --config")
		}
		return nil, errors.New("E040").Wrap(err)
	}

	cfg := New()
	if isTOML(path) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, errors.New("E040").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid TOML")
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E040").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// SaveTo writes the configuration to path, as TOML when path ends in
// ".toml".
func (c *Config) SaveTo(path string) error {
	var data []byte
	if isTOML(path) {
		var sb strings.Builder
		if err := toml.NewEncoder(&sb).Encode(c); err != nil {
			return errors.New("E040").Wrap(err)
		}
		data = []byte(sb.String())
	} else {
		var err error
		data, err = json.MarshalIndent(c, "", "  ")
		if err != nil {
			return errors.New("E040").Wrap(err)
		}
		data = append(data, '\n')
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E040").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Demo == "" {
		c.Demo = DefaultDemo
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Blink.Interval == "" {
		c.Blink.Interval = DefaultBlinkInterval
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("E041").
			WithDetail("log.format must be \"text\" or \"json\", got " + quote(c.Log.Format))
	}

	interval, err := parseDuration("blink.interval", c.Blink.Interval)
	if err != nil {
		return err
	}
	if interval <= 0 {
		return errors.New("E041").
			WithDetail("blink.interval must be positive")
	}

	if c.Duration != "" {
		d, err := parseDuration("duration", c.Duration)
		if err != nil {
			return err
		}
		if d < 0 {
			return errors.New("E041").WithDetail("duration must not be negative")
		}
	}

	if c.Snapshot.S3.Bucket == "" && (c.Snapshot.S3.Prefix != "" || c.Snapshot.S3.Endpoint != "") {
		return errors.New("E041").
			WithDetail("snapshot.s3 settings require snapshot.s3.bucket").
			WithSuggestion("Set the bucket or remove the snapshot.s3 section")
	}
	return nil
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, errors.New("E041").
			WithDetail("log.level must be debug, info, warn or error, got " + quote(c.Log.Level))
	}
	return level, nil
}

// BlinkInterval returns the parsed blink interval, or the default when
// the configured value does not parse.
func (c *Config) BlinkInterval() time.Duration {
	d, err := time.ParseDuration(c.Blink.Interval)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultBlinkInterval)
	}
	return d
}

// RunDuration returns the parsed run duration, 0 meaning unbounded.
func (c *Config) RunDuration() time.Duration {
	d, err := time.ParseDuration(c.Duration)
	if err != nil {
		return 0
	}
	return d
}

func parseDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.New("E041").
			WithDetail(field + " is not a duration: " + quote(value)).
			WithSuggestion("Use Go duration syntax such as 500ms or 2s")
	}
	return d, nil
}

func quote(s string) string {
	return "\"" + s + "\""
}

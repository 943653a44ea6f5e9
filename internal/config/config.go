// Package config defines process configuration and how it is loaded.
//
// Values are layered from defaults, an optional YAML file and the
// environment. See Load.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// ResultsDir is where submission payloads are written.
	ResultsDir string `koanf:"results_dir"`

	// Commit is copied verbatim into every submission.
	Commit string `koanf:"commit"`

	// RunDurationSeconds is the length of the k6 run, used for RPS.
	RunDurationSeconds int `koanf:"run_duration_seconds"`

	// FailWeight and WriteWeight tune the scoring formula.
	FailWeight  int `koanf:"fail_weight"`
	WriteWeight int `koanf:"write_weight"`

	// MaxLineBytes bounds a single event log line.
	MaxLineBytes int `koanf:"max_line_bytes"`

	// ValidateSubmission checks payloads against the embedded schema.
	ValidateSubmission bool `koanf:"validate_submission"`

	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `koanf:"metrics_file"`

	// WatchDir is the directory scored by the watch command.
	WatchDir string `koanf:"watch_dir"`

	// WatchSettleMS is how long a file must stay quiet before it is scored.
	WatchSettleMS int `koanf:"watch_settle_ms"`

	// WorkerCount sets the number of scoring workers in watch mode.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the pending job queue in watch mode.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize caps the number of remembered file fingerprints. Zero
	// keeps every fingerprint.
	DedupeSize int `koanf:"dedupe_size"`

	// MetricsAddr, when set, serves /metrics and /healthz in watch mode.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		ResultsDir:         "/scoring/score",
		RunDurationSeconds: 60,
		FailWeight:         20,
		WriteWeight:        10,
		MaxLineBytes:       1 << 20,
		ValidateSubmission: true,
		WatchSettleMS:      2000,
		WorkerCount:        1,
		QueueSize:          64,
		DedupeSize:         10_000,
	}
}

// RunDuration returns RunDurationSeconds as a duration.
func (c *Config) RunDuration() time.Duration {
	return time.Duration(c.RunDurationSeconds) * time.Second
}

// WatchSettle returns WatchSettleMS as a duration.
func (c *Config) WatchSettle() time.Duration {
	return time.Duration(c.WatchSettleMS) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.ResultsDir == "":
		return invalid("results_dir must not be empty")
	case c.RunDurationSeconds <= 0:
		return invalid("run_duration_seconds must be positive")
	case c.FailWeight <= 0:
		return invalid("fail_weight must be positive")
	case c.WriteWeight <= 0:
		return invalid("write_weight must be positive")
	case c.MaxLineBytes <= 0:
		return invalid("max_line_bytes must be positive")
	case c.WorkerCount <= 0:
		return invalid("worker_count must be positive")
	case c.QueueSize <= 0:
		return invalid("queue_size must be positive")
	case c.WatchSettleMS < 0:
		return invalid("watch_settle_ms must not be negative")
	case c.DedupeSize < 0:
		return invalid("dedupe_size must not be negative")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return invalid("log_format must be text or json")
	}
	return nil
}

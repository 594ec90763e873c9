// Package config defines service configuration and its loading.
//
// Values are layered: defaults from New, then an optional YAML file named by
// PREP_CONFIG, then PREP_* environment variables.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`
	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// MaxSessions bounds live sessions; creation beyond it is rejected.
	MaxSessions int `koanf:"max_sessions"`
	// SessionTTL is how long an idle session is retained.
	SessionTTL time.Duration `koanf:"session_ttl"`
	// SweepInterval is how often expired sessions are dropped.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	SecondsPerQuestion    int `koanf:"seconds_per_question"`
	DefaultTotalQuestions int `koanf:"default_total_questions"`
	MaxTotalQuestions     int `koanf:"max_total_questions"`

	MaxRecommendations  int `koanf:"max_recommendations"`
	MaxKeywordsPerMatch int `koanf:"max_keywords_per_match"`
	MaxResumeBytes      int `koanf:"max_resume_bytes"`

	// CatalogPath points at a YAML job catalog; empty uses the built-in one.
	CatalogPath string `koanf:"catalog_path"`
	// QuestionBankPath points at a YAML question bank; empty disables topics.
	QuestionBankPath string `koanf:"question_bank_path"`

	// RateLimitRPM and RateLimitBurst shape the per-client limiter. RPM 0 disables it.
	RateLimitRPM   int `koanf:"rate_limit_rpm"`
	RateLimitBurst int `koanf:"rate_limit_burst"`

	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// TraceExporter is none, stdout or otlp.
	TraceExporter   string  `koanf:"trace_exporter"`
	OTLPEndpoint    string  `koanf:"otlp_endpoint"`
	TraceSampleRate float64 `koanf:"trace_sample_rate"`

	// RandomSeed fixes question selection when non-zero.
	RandomSeed int64 `koanf:"random_seed"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		ShutdownTimeout:       10 * time.Second,
		MaxSessions:           10_000,
		SessionTTL:            time.Hour,
		SweepInterval:         30 * time.Second,
		SecondsPerQuestion:    120,
		DefaultTotalQuestions: 10,
		MaxTotalQuestions:     50,
		MaxRecommendations:    5,
		MaxKeywordsPerMatch:   5,
		MaxResumeBytes:        64 << 10,
		RateLimitRPM:          120,
		RateLimitBurst:        20,
		CORSAllowedOrigins:    []string{"*"},
		TraceExporter:         "none",
		TraceSampleRate:       1,
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.SecondsPerQuestion <= 0:
		return fmt.Errorf("%w: seconds_per_question must be positive", ErrInvalidConfig)
	case c.MaxTotalQuestions <= 0:
		return fmt.Errorf("%w: max_total_questions must be positive", ErrInvalidConfig)
	case c.DefaultTotalQuestions <= 0 || c.DefaultTotalQuestions > c.MaxTotalQuestions:
		return fmt.Errorf("%w: default_total_questions must be within 1..%d", ErrInvalidConfig, c.MaxTotalQuestions)
	case c.MaxRecommendations <= 0:
		return fmt.Errorf("%w: max_recommendations must be positive", ErrInvalidConfig)
	case c.MaxKeywordsPerMatch <= 0:
		return fmt.Errorf("%w: max_keywords_per_match must be positive", ErrInvalidConfig)
	case c.MaxResumeBytes <= 0:
		return fmt.Errorf("%w: max_resume_bytes must be positive", ErrInvalidConfig)
	case c.SessionTTL <= 0:
		return fmt.Errorf("%w: session_ttl must be positive", ErrInvalidConfig)
	case c.RateLimitRPM < 0 || c.RateLimitBurst < 0:
		return fmt.Errorf("%w: rate limits must not be negative", ErrInvalidConfig)
	case c.TraceSampleRate <= 0 || c.TraceSampleRate > 1:
		return fmt.Errorf("%w: trace_sample_rate must be within (0, 1]", ErrInvalidConfig)
	case !slices.Contains([]string{"text", "json"}, strings.ToLower(c.LogFormat)):
		return fmt.Errorf("%w: log_format %q must be text or json", ErrInvalidConfig, c.LogFormat)
	case !slices.Contains([]string{"", "none", "stdout", "otlp"}, c.TraceExporter):
		return fmt.Errorf("%w: trace_exporter %q must be none, stdout or otlp", ErrInvalidConfig, c.TraceExporter)
	}
	return nil
}

// TimePerQuestion returns SecondsPerQuestion as a duration.
func (c *Config) TimePerQuestion() time.Duration {
	return time.Duration(c.SecondsPerQuestion) * time.Second
}

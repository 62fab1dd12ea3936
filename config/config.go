// Package config resolves VideoDB client settings from the environment,
// optionally seeded from a dotenv file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	videodb "github.com/0xrohitgarg/videodb-go"
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("VIDEO_DB_API_KEY is not set")

// Environment variables read by [Load].
const (
	EnvAPIKey          = "VIDEO_DB_API_KEY"
	EnvBaseURL         = "VIDEO_DB_BASE_URL"
	EnvMaxRetries      = "VIDEO_DB_MAX_RETRIES"
	EnvTimeout         = "VIDEO_DB_TIMEOUT"
	EnvPollTimeout     = "VIDEO_DB_POLL_TIMEOUT"
	EnvUserID          = "VIDEO_DB_USER_ID"
	EnvStreamingAPI    = "STREAMING_API"
	EnvSegmentDuration = "SEGMENT_DURATION"
	EnvSegmentType     = "SEGMENT_TYPE"
)

var bindings = map[string]string{
	"api_key":          EnvAPIKey,
	"base_url":         EnvBaseURL,
	"max_retries":      EnvMaxRetries,
	"timeout":          EnvTimeout,
	"poll_timeout":     EnvPollTimeout,
	"user_id":          EnvUserID,
	"streaming_api":    EnvStreamingAPI,
	"segment_duration": EnvSegmentDuration,
	"segment_type":     EnvSegmentType,
}

// Config holds the resolved settings.
type Config struct {
	APIKey      string
	BaseURL     string
	MaxRetries  int
	Timeout     time.Duration
	PollTimeout time.Duration
	Streaming   videodb.StreamingConfig
}

// LoadOption configures [Load].
type LoadOption func(*loader)

type loader struct {
	dotenvFiles []string
}

// WithDotEnv reads variables from the given dotenv files before the
// environment is consulted. Variables already set in the environment win;
// missing files are ignored.
func WithDotEnv(files ...string) LoadOption {
	return func(l *loader) {
		l.dotenvFiles = append(l.dotenvFiles, files...)
	}
}

// Load resolves the configuration once, at startup.
func Load(opts ...LoadOption) (*Config, error) {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}

	for _, file := range l.dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
	}

	v := viper.New()
	v.SetDefault("base_url", videodb.DefaultBaseURL)
	v.SetDefault("max_retries", 3)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("poll_timeout", 5*time.Minute)
	v.SetDefault("segment_duration", 1)
	v.SetDefault("segment_type", "fmp4")

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	cfg := &Config{
		APIKey:      strings.TrimSpace(v.GetString("api_key")),
		BaseURL:     strings.TrimSpace(v.GetString("base_url")),
		MaxRetries:  v.GetInt("max_retries"),
		Timeout:     v.GetDuration("timeout"),
		PollTimeout: v.GetDuration("poll_timeout"),
		Streaming: videodb.StreamingConfig{
			APIURL:          strings.TrimSpace(v.GetString("streaming_api")),
			UserID:          v.GetString("user_id"),
			SegmentDuration: v.GetInt("segment_duration"),
			SegmentType:     v.GetString("segment_type"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}

	if c.BaseURL == "" {
		return fmt.Errorf("%s must not be empty", EnvBaseURL)
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("%s must be non-negative, got %d", EnvMaxRetries, c.MaxRetries)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("%s must be positive, got %v", EnvTimeout, c.Timeout)
	}

	if c.PollTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %v", EnvPollTimeout, c.PollTimeout)
	}

	return nil
}

// ClientOptions converts the settings to client options.
func (c *Config) ClientOptions() []videodb.Option {
	return []videodb.Option{
		videodb.WithRetryCount(c.MaxRetries),
		videodb.WithDefaultTimeout(c.Timeout),
		videodb.WithPollTimeout(c.PollTimeout),
	}
}

// ConnectionOptions converts the settings to connection options. The
// streaming registration is only enabled when STREAMING_API is set.
func (c *Config) ConnectionOptions() []videodb.ConnectionOption {
	if c.Streaming.APIURL == "" {
		return nil
	}
	return []videodb.ConnectionOption{videodb.WithStreaming(c.Streaming)}
}

// Connect builds a client and a connection from the settings. extra options
// are applied after the configured ones.
func (c *Config) Connect(extra ...videodb.Option) (*videodb.Connection, error) {
	client, err := videodb.New(c.BaseURL, c.APIKey, append(c.ClientOptions(), extra...)...)
	if err != nil {
		return nil, err
	}

	return videodb.NewConnection(client, c.ConnectionOptions()...)
}

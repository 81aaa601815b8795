package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the gateway service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	RedisURL         string
	JWTSecret        string
	JWTExpiry        time.Duration
	MoodleBaseURL    string
	MoodleToken      string
	MoodleRestFormat string
	MoodleTimeout    time.Duration
	AuditTimeout     time.Duration
	StatsCacheTTL    time.Duration
	UploadDir        string
	MaxUploadBytes   int64
	RateLimitMax     int
	RateLimitWindow  time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsDevelopment reports whether the service runs in development mode.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MG")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Moodle Gateway")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "5000")
	v.SetDefault("jwt.expiry", "168h")
	v.SetDefault("moodle.rest_format", "json")
	v.SetDefault("moodle.timeout", "30s")
	v.SetDefault("audit.timeout", "2s")
	v.SetDefault("stats.cache_ttl", "5m")
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_bytes", 10<<20)
	v.SetDefault("rate_limit.max", 100)
	v.SetDefault("rate_limit.window", "15m")

	jwtExpiry, err := time.ParseDuration(v.GetString("jwt.expiry"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt expiry: %w", err)
	}

	moodleTimeout, err := time.ParseDuration(v.GetString("moodle.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid moodle timeout: %w", err)
	}

	auditTimeout, err := time.ParseDuration(v.GetString("audit.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid audit timeout: %w", err)
	}

	statsTTL, err := time.ParseDuration(v.GetString("stats.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid stats cache ttl: %w", err)
	}

	rateWindow, err := time.ParseDuration(v.GetString("rate_limit.window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate limit window: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		JWTSecret:        v.GetString("jwt.secret"),
		JWTExpiry:        jwtExpiry,
		MoodleBaseURL:    strings.TrimRight(v.GetString("moodle.base_url"), "/"),
		MoodleToken:      v.GetString("moodle.ws_token"),
		MoodleRestFormat: v.GetString("moodle.rest_format"),
		MoodleTimeout:    moodleTimeout,
		AuditTimeout:     auditTimeout,
		StatsCacheTTL:    statsTTL,
		UploadDir:        v.GetString("upload.dir"),
		MaxUploadBytes:   v.GetInt64("upload.max_bytes"),
		RateLimitMax:     v.GetInt("rate_limit.max"),
		RateLimitWindow:  rateWindow,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.MoodleBaseURL == "" || cfg.MoodleToken == "" {
		return Config{}, fmt.Errorf("moodle base url and ws token must be provided")
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}

	return cfg, nil
}

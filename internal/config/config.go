package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	API          APIConfig          `yaml:"api"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	NATS         NATSConfig         `yaml:"nats"`
	MQTT         MQTTConfig         `yaml:"mqtt"`
	JWT          JWTConfig          `yaml:"jwt"`
	Log          LogConfig          `yaml:"log"`
	Subscription SubscriptionConfig `yaml:"subscription"`
	RateLimit    RateLimitConfig    `yaml:"ratelimit"`
	Mail         MailConfig         `yaml:"mail"`
	Report       ReportConfig       `yaml:"report"`
	CORS         CORSConfig         `yaml:"cors"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment" env:"APP_ENV"`
}

// APIConfig represents API configuration
type APIConfig struct {
	Host            string        `yaml:"host" env:"API_HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn" env:"DATABASE_URL"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate" env:"DATABASE_AUTO_MIGRATE"`
}

// RedisConfig represents Redis configuration
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"`
}

// NATSConfig represents NATS configuration
type NATSConfig struct {
	URL               string        `yaml:"url" env:"NATS_URL"`
	ClientID          string        `yaml:"client_id"`
	Username          string        `yaml:"username" env:"NATS_USERNAME"`
	Password          string        `yaml:"password" env:"NATS_PASSWORD"`
	MaxReconnects     int           `yaml:"max_reconnects"`
	ReconnectInterval time.Duration `yaml:"reconnect_interval"`
	SubjectPrefix     string        `yaml:"subject_prefix"`
	QueueGroup        string        `yaml:"queue_group"`
}

// MQTTConfig represents the realtime notification broker
type MQTTConfig struct {
	Broker      string `yaml:"broker" env:"MQTT_BROKER"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username" env:"MQTT_USERNAME"`
	Password    string `yaml:"password" env:"MQTT_PASSWORD"`
	QoS         byte   `yaml:"qos"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// JWTConfig represents JWT configuration
type JWTConfig struct {
	Secret         string        `yaml:"secret" env:"JWT_SECRET"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl"`
	CookieName     string        `yaml:"cookie_name"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// SubscriptionConfig controls trial and billing windows
type SubscriptionConfig struct {
	TrialPeriod   time.Duration `yaml:"trial_period"`
	ApprovalGrant time.Duration `yaml:"approval_grant"`
}

// RateLimitConfig represents the per-IP request ceiling
type RateLimitConfig struct {
	Enabled bool          `yaml:"enabled"`
	Limit   int64         `yaml:"limit"`
	Period  time.Duration `yaml:"period"`
	// Store is "memory" or "redis".
	Store string `yaml:"store"`
}

// MailConfig represents the HTTP mail API transport
type MailConfig struct {
	APIURL     string        `yaml:"api_url" env:"MAIL_API_URL"`
	APIKey     string        `yaml:"api_key" env:"MAIL_API_KEY"`
	From       string        `yaml:"from" env:"MAIL_FROM"`
	Timeout    time.Duration `yaml:"timeout"`
	RetryCount int           `yaml:"retry_count"`
}

// ReportConfig represents the daily sales report job
type ReportConfig struct {
	Schedule string `yaml:"schedule"`
	Timezone string `yaml:"timezone" env:"REPORT_TIMEZONE"`
	// Embedded runs the scheduler inside the API server process.
	Embedded bool `yaml:"embedded"`
}

// CORSConfig represents CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// IsDevelopment reports whether error details may be exposed to clients.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// Load loads configuration from file
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, applies environment overrides and
// defaults, and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Apply environment overrides
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with every default applied, for tools and
// tests that run without a file.
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

func (c *Config) setDefaults() {
	if c.Server.Name == "" {
		c.Server.Name = "flownest"
	}
	if c.Server.Environment == "" {
		c.Server.Environment = "production"
	}

	if c.API.Port == 0 {
		c.API.Port = 5000
	}
	if c.API.ReadTimeout == 0 {
		c.API.ReadTimeout = 15 * time.Second
	}
	if c.API.WriteTimeout == 0 {
		c.API.WriteTimeout = 30 * time.Second
	}
	if c.API.ShutdownTimeout == 0 {
		c.API.ShutdownTimeout = 10 * time.Second
	}

	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 20
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 30 * time.Minute
	}

	if c.NATS.MaxReconnects == 0 {
		c.NATS.MaxReconnects = 10
	}
	if c.NATS.ReconnectInterval == 0 {
		c.NATS.ReconnectInterval = 2 * time.Second
	}
	if c.NATS.SubjectPrefix == "" {
		c.NATS.SubjectPrefix = "flownest.events"
	}
	if c.NATS.QueueGroup == "" {
		c.NATS.QueueGroup = "flownest-workers"
	}

	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "flownest-notifier"
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = "flownest/users"
	}

	if c.JWT.AccessTokenTTL == 0 {
		c.JWT.AccessTokenTTL = 30 * 24 * time.Hour
	}
	if c.JWT.CookieName == "" {
		c.JWT.CookieName = "token"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}

	if c.Subscription.TrialPeriod == 0 {
		c.Subscription.TrialPeriod = 7 * 24 * time.Hour
	}
	if c.Subscription.ApprovalGrant == 0 {
		c.Subscription.ApprovalGrant = 30 * 24 * time.Hour
	}

	if c.RateLimit.Limit == 0 {
		c.RateLimit.Limit = 1000
	}
	if c.RateLimit.Period == 0 {
		c.RateLimit.Period = 15 * time.Minute
	}
	if c.RateLimit.Store == "" {
		c.RateLimit.Store = "memory"
	}

	if c.Mail.From == "" {
		c.Mail.From = "FlowNest <no-reply@flownest.app>"
	}
	if c.Mail.Timeout == 0 {
		c.Mail.Timeout = 10 * time.Second
	}

	if c.Report.Schedule == "" {
		c.Report.Schedule = "59 23 * * *"
	}
	if c.Report.Timezone == "" {
		c.Report.Timezone = "Local"
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
}

// Validate checks the settings the servers cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if c.RateLimit.Store != "memory" && c.RateLimit.Store != "redis" {
		errs = append(errs, fmt.Errorf("invalid ratelimit.store: %s", c.RateLimit.Store))
	}
	if c.RateLimit.Store == "redis" && c.Redis.Addr == "" {
		errs = append(errs, errors.New("ratelimit.store is redis but redis.addr is empty"))
	}
	if _, err := time.LoadLocation(c.Report.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid report.timezone: %w", err))
	}
	return errors.Join(errs...)
}

// Location returns the report timezone, falling back to local time.
func (c *ReportConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// PrintConfigSummary prints a short configuration summary
func (c *Config) PrintConfigSummary() {
	fmt.Printf("=== FlowNest Server Configuration ===\n")
	fmt.Printf("Server: %s v%s (%s)\n", c.Server.Name, c.Server.Version, c.Server.Environment)
	fmt.Printf("API: %s:%d\n", c.API.Host, c.API.Port)
	fmt.Printf("Database configured: %v\n", c.Database.DSN != "")
	fmt.Printf("NATS: %s\n", orNone(c.NATS.URL))
	fmt.Printf("MQTT: %s\n", orNone(c.MQTT.Broker))
	fmt.Printf("Rate limit: %d per %s (%s)\n", c.RateLimit.Limit, c.RateLimit.Period, c.RateLimit.Store)
	fmt.Printf("Trial: %s, approval grant: %s\n", c.Subscription.TrialPeriod, c.Subscription.ApprovalGrant)
	fmt.Printf("Daily report: %q in %s (embedded=%v)\n", c.Report.Schedule, c.Report.Timezone, c.Report.Embedded)
	fmt.Printf("=====================================\n")
}

func orNone(s string) string {
	if s == "" {
		return "(not configured)"
	}
	return s
}

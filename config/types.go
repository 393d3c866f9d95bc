package config

import (
	"errors"
	"fmt"
	"time"
)

type Config struct {
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Server         ServerConfig         `mapstructure:"server"`
	Authentication AuthenticationConfig `mapstructure:"authentication"`
	Authorization  AuthorizationConfig  `mapstructure:"authorization"`
	Observability  ObservabilityConfig  `mapstructure:"observability"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Nats           NatsConfig           `mapstructure:"nats"`
	Events         EventsConfig         `mapstructure:"events"`
	Booking        BookingConfig        `mapstructure:"booking"`
}

type NatsConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
	// AuditSubscriber logs every booking event received on booking.appointment.>.
	AuditSubscriber bool `mapstructure:"audit_subscriber" yaml:"audit_subscriber"`
}

type EventsConfig struct {
	Sink  string      `mapstructure:"sink"` // none, nats, kafka
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type BookingConfig struct {
	Timezone  string          `mapstructure:"timezone"`
	Store     string          `mapstructure:"store"` // postgres, memory
	Lock      LockConfig      `mapstructure:"lock"`
	List      ListConfig      `mapstructure:"list"`
	FreeTimes FreeTimesConfig `mapstructure:"free_times"`
}

type LockConfig struct {
	Backend         string `mapstructure:"backend"` // memory, redis
	WaitTimeoutMs   int    `mapstructure:"wait_timeout_ms"`
	TTLMs           int    `mapstructure:"ttl_ms"`
	RetryIntervalMs int    `mapstructure:"retry_interval_ms"`
}

type ListConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

type FreeTimesConfig struct {
	StepMinutes int `mapstructure:"step_minutes"`
}

type DatabaseConfig struct {
	Host       string                  `mapstructure:"host"`
	Port       int                     `mapstructure:"port"`
	User       string                  `mapstructure:"user"`
	Password   string                  `mapstructure:"password"`
	DBName     string                  `mapstructure:"dbname"`
	SSLMode    string                  `mapstructure:"sslmode"`
	Pool       DatabasePoolConfig      `mapstructure:"pool"`
	Migrations DatabaseMigrationConfig `mapstructure:"migrations"`
}

type DatabasePoolConfig struct {
	MaxOpenConns       int `mapstructure:"max_open_conns"`
	MaxIdleConns       int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int `mapstructure:"conn_max_lifetime_minutes"`
}

type DatabaseMigrationConfig struct {
	AutoMigrate bool `mapstructure:"auto_migrate"`
	SafeMode    bool `mapstructure:"safe_mode"`
}

type RedisConfig struct {
	Addr                string `mapstructure:"addr"`
	DB                  int    `mapstructure:"db"`
	Username            string `mapstructure:"username"`
	Password            string `mapstructure:"password"`
	PoolSize            int    `mapstructure:"pool_size"`
	MinIdleConns        int    `mapstructure:"min_idle_conns"`
	DialTimeoutSeconds  int    `mapstructure:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

type ServerConfig struct {
	Port           int             `mapstructure:"port"`
	TimeoutSeconds int             `mapstructure:"timeout_seconds"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
	Environment    string          `mapstructure:"environment"`
	Domain         string          `mapstructure:"domain"`
	Databases      []string        `mapstructure:"databases"`
	CORS           CORSConfig      `mapstructure:"cors"`
	Headers        HeadersConfig   `mapstructure:"headers"`
}

type HeadersConfig struct {
	XSSProtection             string `mapstructure:"xss_protection"`
	ContentTypeNosniff        string `mapstructure:"content_type_nosniff"`
	XFrameOptions             string `mapstructure:"x_frame_options"`
	ReferrerPolicy            string `mapstructure:"referrer_policy"`
	CrossOriginEmbedderPolicy string `mapstructure:"cross_origin_embedder_policy"`
	CrossOriginOpenerPolicy   string `mapstructure:"cross_origin_opener_policy"`
	CrossOriginResourcePolicy string `mapstructure:"cross_origin_resource_policy"`
	OriginAgentCluster        string `mapstructure:"origin_agent_cluster"`
	XDNSPrefetchControl       string `mapstructure:"x_dns_prefetch_control"`
	XDownloadOptions          string `mapstructure:"x_download_options"`
	XPermittedCrossDomain     string `mapstructure:"x_permitted_cross_domain"`
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	ExposeHeaders    []string `mapstructure:"expose_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAgeSeconds    int      `mapstructure:"max_age_seconds"`
}

type AuthenticationConfig struct {
	Paseto PasetoConfig `mapstructure:"paseto"`
	// SessionCheck rejects tokens whose session id is missing from Redis.
	SessionCheck bool `mapstructure:"session_check"`
}

type PasetoConfig struct {
	Mode             string `mapstructure:"mode"`
	LocalKeyHex      string `mapstructure:"local_key_hex"`
	SecretKeyHex     string `mapstructure:"secret_key_hex"`
	PublicKeyHex     string `mapstructure:"public_key_hex"`
	Issuer           string `mapstructure:"issuer"`
	Audience         string `mapstructure:"audience"`
	AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
	RefreshTTLDays   int    `mapstructure:"refresh_ttl_days"`
}

type AuthorizationConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	CasbinModelPath string `mapstructure:"casbin_model_path"`
	// PolicyPath points at a CSV policy file; empty means the built-in defaults.
	PolicyPath       string `mapstructure:"policy_path"`
	EnableAudit      bool   `mapstructure:"enable_audit"`
	SuperadminBypass bool   `mapstructure:"superadmin_bypass"`
}

type ObservabilityConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"service_name"`
	ServiceVersion string        `mapstructure:"service_version"`
	Tracing        TracingConfig `mapstructure:"tracing"`
	Metrics        MetricsConfig `mapstructure:"metrics"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string       `mapstructure:"level"`  // debug, info, warn, error
	Format string       `mapstructure:"format"` // text, json
	Output OutputConfig `mapstructure:"output"`
}

type OutputConfig struct {
	Stdout bool          `mapstructure:"stdout"`
	File   FileLogConfig `mapstructure:"file"`
	Loki   LokiConfig    `mapstructure:"loki"`
}

type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`        // e.g. "logs/app.log"
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // rotate after N MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type LokiConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"` // e.g. "http://localhost:3100"
	Username string `mapstructure:"username"` // for Grafana Cloud basic auth
	Password string `mapstructure:"password"`
}

func (c *Config) Validate() error {
	switch c.Events.Sink {
	case "":
		c.Events.Sink = "none"
	case "none", "nats", "kafka":
	default:
		return fmt.Errorf("events.sink: unknown sink %q", c.Events.Sink)
	}
	if c.Events.Sink == "kafka" {
		if len(c.Events.Kafka.Brokers) == 0 {
			return errors.New("events.kafka.brokers: at least one broker is required")
		}
		if c.Events.Kafka.Topic == "" {
			c.Events.Kafka.Topic = "booking.appointments"
		}
	}
	return c.Booking.validate()
}

func (b *BookingConfig) validate() error {
	if b.Timezone == "" {
		b.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(b.Timezone); err != nil {
		return fmt.Errorf("booking.timezone: %w", err)
	}

	switch b.Store {
	case "":
		b.Store = "postgres"
	case "postgres", "memory":
	default:
		return fmt.Errorf("booking.store: unknown store %q", b.Store)
	}

	switch b.Lock.Backend {
	case "":
		b.Lock.Backend = "memory"
	case "memory", "redis":
	default:
		return fmt.Errorf("booking.lock.backend: unknown backend %q", b.Lock.Backend)
	}
	if b.Lock.WaitTimeoutMs <= 0 {
		b.Lock.WaitTimeoutMs = 3000
	}
	if b.Lock.TTLMs <= 0 {
		b.Lock.TTLMs = 10000
	}
	if b.Lock.RetryIntervalMs <= 0 {
		b.Lock.RetryIntervalMs = 25
	}

	if b.List.DefaultLimit <= 0 {
		b.List.DefaultLimit = 100
	}
	if b.List.MaxLimit <= 0 {
		b.List.MaxLimit = 500
	}
	if b.List.DefaultLimit > b.List.MaxLimit {
		return fmt.Errorf("booking.list: default_limit %d exceeds max_limit %d", b.List.DefaultLimit, b.List.MaxLimit)
	}

	if b.FreeTimes.StepMinutes <= 0 {
		b.FreeTimes.StepMinutes = 15
	}
	return nil
}

// Location returns the clinic-local time zone; Validate has already checked it loads.
func (b BookingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (l LockConfig) WaitTimeout() time.Duration {
	return time.Duration(l.WaitTimeoutMs) * time.Millisecond
}

func (l LockConfig) TTL() time.Duration {
	return time.Duration(l.TTLMs) * time.Millisecond
}

func (l LockConfig) RetryInterval() time.Duration {
	return time.Duration(l.RetryIntervalMs) * time.Millisecond
}

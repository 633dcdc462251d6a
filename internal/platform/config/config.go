// Package config loads service configuration from an optional config file and
// ONBOARDING_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // timezone names resolve without system zoneinfo

	"github.com/spf13/viper"

	strutil "onboarding/pkg/platform/strings"
)

// EnvPrefix prefixes every environment override, e.g. ONBOARDING_REDIS_URL.
const EnvPrefix = "ONBOARDING"

// Config is the full service configuration.
type Config struct {
	Server Server
	Redis  RedisConfig
	Kafka  KafkaConfig
	Form   FormConfig
	Log    LogConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// RedisConfig configures the draft store. An empty URL selects the in-memory
// store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the submission transport. No brokers selects the
// logging submitter.
type KafkaConfig struct {
	Brokers           []string
	Topic             string
	Partitions        int32
	ReplicationFactor int16
	ProduceTimeout    time.Duration
	EnsureTopic       bool
}

// FormConfig holds onboarding form policy.
type FormConfig struct {
	DraftTTL      time.Duration
	ClearOnSubmit bool
	// Timezone in which "today" is evaluated for age and future-date checks.
	Timezone string
}

// Location resolves Timezone.
func (f FormConfig) Location() (*time.Location, error) {
	return time.LoadLocation(f.Timezone)
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "onboarding.submissions")
	v.SetDefault("kafka.partitions", 3)
	v.SetDefault("kafka.replication_factor", 1)
	v.SetDefault("kafka.produce_timeout", 10*time.Second)
	v.SetDefault("kafka.ensure_topic", true)

	v.SetDefault("form.draft_ttl", 24*time.Hour)
	v.SetDefault("form.clear_on_submit", false)
	v.SetDefault("form.timezone", "Asia/Kathmandu")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads configuration. Priority (highest first): environment variables,
// config file (config.yaml in . or /etc/onboarding), built-in defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/onboarding")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Server: Server{
			Addr:            v.GetString("server.addr"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Redis: RedisConfig{
			URL:          v.GetString("redis.url"),
			PoolSize:     v.GetInt("redis.pool_size"),
			MinIdleConns: v.GetInt("redis.min_idle_conns"),
			DialTimeout:  v.GetDuration("redis.dial_timeout"),
			ReadTimeout:  v.GetDuration("redis.read_timeout"),
			WriteTimeout: v.GetDuration("redis.write_timeout"),
		},
		Kafka: KafkaConfig{
			Brokers:           strutil.SplitList(v.GetString("kafka.brokers")),
			Topic:             v.GetString("kafka.topic"),
			Partitions:        v.GetInt32("kafka.partitions"),
			ReplicationFactor: int16(v.GetInt("kafka.replication_factor")),
			ProduceTimeout:    v.GetDuration("kafka.produce_timeout"),
			EnsureTopic:       v.GetBool("kafka.ensure_topic"),
		},
		Form: FormConfig{
			DraftTTL:      v.GetDuration("form.draft_ttl"),
			ClearOnSubmit: v.GetBool("form.clear_on_submit"),
			Timezone:      v.GetString("form.timezone"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Form.DraftTTL <= 0 {
		errs = append(errs, errors.New("form.draft_ttl must be positive"))
	}
	if _, err := c.Form.Location(); err != nil {
		errs = append(errs, fmt.Errorf("form.timezone: %w", err))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required when brokers are set"))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be json or text", c.Log.Format))
	}
	return errors.Join(errs...)
}

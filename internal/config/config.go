// Package config resolves runtime settings from defaults, an optional
// YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"marketplace-service/internal/model"
)

// Config holds every knob of the service.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	DatabaseURL     string
	PublicBaseURL   string

	Mongo   MongoConfig
	Storage StorageConfig
	Redis   RedisConfig
	Notify  NotifyConfig
	Log     LogConfig

	JWTSecret       string
	DefaultLocation string
	Categories      []string
}

type MongoConfig struct {
	URI      string
	Database string
}

type StorageConfig struct {
	Bucket         string
	MaxUploadBytes int64
	CleanupOrphans bool
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	RateLimitQPS int
}

type NotifyConfig struct {
	Driver  string // log, smtp or kafka
	Timeout time.Duration
	SMTP    SMTPConfig
	Kafka   KafkaConfig
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type LogConfig struct {
	Level string
	Dev   bool
}

// LoadDotEnv loads .env files into the process environment. A missing
// file is reported but is not fatal for callers.
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}

func defaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8083")
	v.SetDefault("shutdown_timeout", "15s")
	v.SetDefault("public_base_url", "http://localhost:8083")
	v.SetDefault("mongo_db", "marketplace")
	v.SetDefault("storage_bucket", "listing-images")
	v.SetDefault("max_upload_mb", 32)
	v.SetDefault("cleanup_orphans", true)
	v.SetDefault("redis_db", 0)
	v.SetDefault("rate_limit_qps", 5)
	v.SetDefault("notify_driver", "log")
	v.SetDefault("notify_timeout", "30s")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("kafka_topic", "marketplace.messages")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dev", false)
	v.SetDefault("default_location", model.DefaultLocation)
	v.SetDefault("categories", model.DefaultCategories)
}

// Load reads CONFIG_FILE (if set) and the environment on top of defaults.
func Load() (Config, error) {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := Config{
		HTTPAddr:        v.GetString("http_addr"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		DatabaseURL:     v.GetString("database_url"),
		PublicBaseURL:   strings.TrimRight(v.GetString("public_base_url"), "/"),
		Mongo: MongoConfig{
			URI:      v.GetString("mongo_uri"),
			Database: v.GetString("mongo_db"),
		},
		Storage: StorageConfig{
			Bucket:         v.GetString("storage_bucket"),
			MaxUploadBytes: v.GetInt64("max_upload_mb") << 20,
			CleanupOrphans: v.GetBool("cleanup_orphans"),
		},
		Redis: RedisConfig{
			Addr:         v.GetString("redis_addr"),
			Password:     v.GetString("redis_password"),
			DB:           v.GetInt("redis_db"),
			RateLimitQPS: v.GetInt("rate_limit_qps"),
		},
		Notify: NotifyConfig{
			Driver:  strings.ToLower(v.GetString("notify_driver")),
			Timeout: v.GetDuration("notify_timeout"),
			SMTP: SMTPConfig{
				Host:     v.GetString("smtp_host"),
				Port:     v.GetInt("smtp_port"),
				Username: v.GetString("smtp_username"),
				Password: v.GetString("smtp_password"),
				From:     v.GetString("smtp_from"),
			},
			Kafka: KafkaConfig{
				Brokers: splitList(v.Get("kafka_brokers")),
				Topic:   v.GetString("kafka_topic"),
			},
		},
		Log: LogConfig{
			Level: v.GetString("log_level"),
			Dev:   v.GetBool("log_dev"),
		},
		JWTSecret:       v.GetString("jwt_secret"),
		DefaultLocation: v.GetString("default_location"),
		Categories:      splitList(v.Get("categories")),
	}
	if cfg.Notify.SMTP.From == "" {
		cfg.Notify.SMTP.From = cfg.Notify.SMTP.Username
	}
	return cfg, nil
}

// splitList accepts a YAML list or a comma separated env value.
func splitList(raw interface{}) []string {
	var parts []string
	switch t := raw.(type) {
	case nil:
		return nil
	case string:
		parts = strings.Split(t, ",")
	case []string:
		parts = t
	case []interface{}:
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
	default:
		parts = []string{fmt.Sprint(t)}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks what the HTTP server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Mongo.URI == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if c.Storage.Bucket == "" {
		errs = append(errs, errors.New("STORAGE_BUCKET must not be empty"))
	}
	switch c.Notify.Driver {
	case "log":
	case "smtp":
		if c.Notify.SMTP.Host == "" || c.Notify.SMTP.From == "" {
			errs = append(errs, errors.New("NOTIFY_DRIVER=smtp needs SMTP_HOST and SMTP_FROM"))
		}
	case "kafka":
		if len(c.Notify.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("NOTIFY_DRIVER=kafka needs KAFKA_BROKERS"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown NOTIFY_DRIVER %q", c.Notify.Driver))
	}
	return errors.Join(errs...)
}

// Catalog builds the immutable category list.
func (c Config) Catalog() (model.Catalog, error) {
	return model.NewCatalog(c.Categories)
}

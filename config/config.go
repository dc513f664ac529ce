package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// PostgresConfig holds the PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// S3Config holds the S3 / MinIO settings for image storage
type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	PathStyle bool   `mapstructure:"path_style"`
	PublicURL string `mapstructure:"public_url"`
}

// SMTPConfig holds the outgoing mail settings. An empty host disables mail.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Config is the application configuration
type Config struct {
	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
	DocStore struct {
		Driver string `mapstructure:"driver"` // memory | sqlite | postgres
	} `mapstructure:"docstore"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	SQLite   struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"sqlite"`
	Blob struct {
		Driver string `mapstructure:"driver"` // memory | s3
	} `mapstructure:"blob"`
	S3      S3Config `mapstructure:"s3"`
	Session struct {
		Dir string `mapstructure:"dir"` // empty keeps session state in memory
	} `mapstructure:"session"`
	SMTP SMTPConfig `mapstructure:"smtp"`
	Auth struct {
		JWTSecret string `mapstructure:"jwt_secret"` // empty disables token checks
	} `mapstructure:"auth"`
	RateLimit struct {
		Requests int           `mapstructure:"requests"`
		Window   time.Duration `mapstructure:"window"`
	} `mapstructure:"ratelimit"`
	Scheduler struct {
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"scheduler"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"` // text | json
	} `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("docstore.driver", "memory")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.dbname", "prestamos")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("sqlite.path", "prestamos.db")
	v.SetDefault("blob.driver", "memory")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.path_style", false)
	v.SetDefault("session.dir", "")
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.public_url", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("ratelimit.requests", 100)
	v.SetDefault("ratelimit.window", time.Minute)
	v.SetDefault("scheduler.interval", 5*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// NewConfig loads configuration from defaults, an optional prestamos.yaml and
// PRESTAMOS_* environment variables (PRESTAMOS_POSTGRES_HOST, PRESTAMOS_S3_BUCKET, ...).
func NewConfig() (*Config, error) {
	return Load("")
}

// Load reads configuration, using file when it is not empty.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PRESTAMOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("prestamos")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.DocStore.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown docstore driver %q", c.DocStore.Driver)
	}
	switch c.Blob.Driver {
	case "memory":
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("s3.bucket is required for the s3 blob driver")
		}
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("ratelimit.requests and ratelimit.window must be positive")
	}
	return nil
}

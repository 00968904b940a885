// Package config loads process-wide settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the dashboard server configuration. It is read once at startup
// and never mutated afterwards.
type Config struct {
	Server  ServerConfig
	Session SessionConfig
	Store   StoreConfig
	Log     LogConfig
}

type ServerConfig struct {
	ListenAddr      string        `validate:"required"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
	MaxUploadSize   string
}

type SessionConfig struct {
	Secret   string        `validate:"required"`
	Password string        `validate:"required"`
	TTL      time.Duration `validate:"gt=0"`
	RedisURL string
}

type StoreConfig struct {
	Bucket    string `validate:"required"`
	Endpoint  string `validate:"required"`
	Region    string
	AccessKey string
	SecretKey string
	// UseSSL is nil when the scheme should be inferred from the endpoint.
	UseSSL  *bool
	Timeout time.Duration `validate:"gt=0"`
}

type LogConfig struct {
	Level  string
	Format string
}

// CheckerConfig configures the compliance checker entrypoints.
type CheckerConfig struct {
	TopicARN string
	Region   string
	Log      LogConfig
}

// envNames maps struct fields to the environment variables they come from,
// so validation errors name the variable an operator has to set.
var envNames = map[string]string{
	"Secret":     "SESSION_SECRET",
	"Password":   "DASHBOARD_PASSWORD",
	"Bucket":     "S3_BUCKET",
	"Endpoint":   "S3_ENDPOINT",
	"ListenAddr": "LISTEN_ADDR",
}

var validate = validator.New()

func newViper() *viper.Viper {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("S3_ENDPOINT", "s3.amazonaws.com")
	v.SetDefault("STORE_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.AutomaticEnv()
	return v
}

// Load reads the dashboard configuration. A missing session secret, bucket
// or dashboard password is an error; callers must not start serving.
func Load() (*Config, error) {
	v := newViper()

	cfg := &Config{
		Server: ServerConfig{
			ListenAddr:      v.GetString("LISTEN_ADDR"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
			MaxUploadSize:   v.GetString("MAX_UPLOAD_SIZE"),
		},
		Session: SessionConfig{
			Secret:   v.GetString("SESSION_SECRET"),
			Password: v.GetString("DASHBOARD_PASSWORD"),
			TTL:      v.GetDuration("SESSION_TTL"),
			RedisURL: v.GetString("REDIS_URL"),
		},
		Store: StoreConfig{
			Bucket:    v.GetString("S3_BUCKET"),
			Endpoint:  v.GetString("S3_ENDPOINT"),
			Region:    v.GetString("S3_REGION"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Timeout:   v.GetDuration("STORE_TIMEOUT"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if v.IsSet("S3_USE_SSL") {
		useSSL := v.GetBool("S3_USE_SSL")
		cfg.Store.UseSSL = &useSSL
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, describe(err)
	}

	return cfg, nil
}

// LoadChecker reads the compliance checker configuration. The topic is
// required unless requireTopic is false (dry runs).
func LoadChecker(requireTopic bool) (*CheckerConfig, error) {
	v := newViper()

	cfg := &CheckerConfig{
		TopicARN: v.GetString("SNS_TOPIC_ARN"),
		Region:   v.GetString("AWS_REGION"),
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if requireTopic && cfg.TopicARN == "" {
		return nil, errors.New("config: SNS_TOPIC_ARN is required")
	}

	return cfg, nil
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.StructNamespace()
		if env, ok := envNames[fe.StructField()]; ok {
			name = env
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, name+" is required")
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", name, fe.Tag()))
		}
	}

	return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
}

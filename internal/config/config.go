package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // zone database for minimal container images

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Auth     AuthConfig     `mapstructure:"auth"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Plans    PlansConfig    `mapstructure:"plans"`
	App      AppConfig      `mapstructure:"app"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	Mode         string        `mapstructure:"mode"` // gin mode: debug, release, test
}

// DatabaseConfig selects the persistence driver. "mongo" is the production
// store, "memory" keeps everything in process.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether report export has somewhere to write to.
func (c S3Config) Enabled() bool {
	return c.BucketName != ""
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// AuthConfig controls whether a bearer token is mandatory on API routes.
type AuthConfig struct {
	Required bool `mapstructure:"required"`
}

// LLMConfig configures the text-generation provider used for plans.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // openai, gemini, none
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type PlansConfig struct {
	// SupersedeSameDay cancels earlier active plans of the same day when a new one is generated.
	SupersedeSameDay bool `mapstructure:"supersede_same_day"`
	HistoryLimit     int  `mapstructure:"history_limit"`
}

type AppConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// Location resolves the configured time zone used for calendar-day boundaries.
func (c AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

var ErrMissingJWTSecret = errors.New("jwt.secret must be set")

// LoadConfig reads configuration from file or environment variables.
// An optional .env file in path is loaded into the process environment first.
func LoadConfig(path string) (config Config, err error) {
	if err = loadDotEnv(filepath.Join(path, ".env")); err != nil {
		return
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, llm.api_key -> LLM_API_KEY
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	if err = config.Validate(); err != nil {
		return
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "60s") // plan generation waits on the provider
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "mongo")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "confidence_coach")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("auth.required", false)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.max_tokens", 1500)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("plans.supersede_same_day", true)
	v.SetDefault("plans.history_limit", 7)
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Validate checks the values that cannot be defaulted.
func (c Config) Validate() error {
	if c.JWT.Secret == "" {
		return ErrMissingJWTSecret
	}
	switch c.Database.Driver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	switch c.LLM.Provider {
	case "openai", "gemini", "none":
	default:
		return fmt.Errorf("unsupported llm.provider %q", c.LLM.Provider)
	}
	if _, err := c.App.Location(); err != nil {
		return fmt.Errorf("invalid app.timezone: %w", err)
	}
	return nil
}

func loadDotEnv(file string) error {
	if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	// Existing environment variables win over .env entries.
	return godotenv.Load(file)
}

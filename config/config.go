// Package config loads service settings from defaults, an optional
// config.yaml and the environment.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Port               string `mapstructure:"port"`
	DBConnectionString string `mapstructure:"db_connection_string"`
	RedisHost          string `mapstructure:"redis_host"`
	RedisPort          string `mapstructure:"redis_port"`
	RedisDB            int    `mapstructure:"redis_db"`
	SessionKey         string `mapstructure:"session_key"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	Report struct {
		DefaultPageSize  int           `mapstructure:"default_page_size"`
		MaxPageSize      int           `mapstructure:"max_page_size"`
		MaxCategoryDepth int           `mapstructure:"max_category_depth"`
		Timeout          time.Duration `mapstructure:"timeout"`
	} `mapstructure:"report"`

	Server struct {
		ReadTimeout     time.Duration `mapstructure:"read_timeout"`
		WriteTimeout    time.Duration `mapstructure:"write_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`
}

// LoadEnv loads .env from the working directory or its parent, if present.
func LoadEnv() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}

	_ = godotenv.Load(envFile)
}

func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("db_connection_string", "")
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("session_key", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("report.default_page_size", 20)
	v.SetDefault("report.max_page_size", 100)
	v.SetDefault("report.max_category_depth", 64)
	v.SetDefault("report.timeout", 10*time.Second)

	v.SetDefault("server.read_timeout", 60*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
}

// Validate checks settings needed to serve reports.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBConnectionString == "" {
		errors = append(errors, "DB_CONNECTION_STRING is required")
	}

	if c.RedisHost == "" || c.RedisPort == "" {
		errors = append(errors, "REDIS_HOST and REDIS_PORT are required")
	}

	if c.SessionKey == "" {
		errors = append(errors, "SESSION_KEY is required")
	} else if _, err := base64.StdEncoding.DecodeString(c.SessionKey); err != nil {
		errors = append(errors, "SESSION_KEY must be base64 encoded")
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.Log.Level))
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.Log.Format))
	}

	if c.Report.DefaultPageSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid default page size %d: must be at least 1", c.Report.DefaultPageSize))
	}

	if c.Report.MaxPageSize < c.Report.DefaultPageSize {
		errors = append(errors, fmt.Sprintf("invalid max page size %d: must be at least the default page size", c.Report.MaxPageSize))
	}

	if c.Report.MaxCategoryDepth < 1 {
		errors = append(errors, fmt.Sprintf("invalid max category depth %d: must be at least 1", c.Report.MaxCategoryDepth))
	}

	if c.Report.Timeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid report timeout %v: must be positive", c.Report.Timeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ConfigureLogging applies the log level and format to the standard logrus logger.
func (c *Config) ConfigureLogging() {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if c.Log.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// SessionKeyBytes decodes the base64 session signing key.
func (c *Config) SessionKeyBytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(c.SessionKey)
}

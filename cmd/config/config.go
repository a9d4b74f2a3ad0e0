// Package config loads cmd/config/config.yaml, lets environment variables
// override any key and validates the result.
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

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	AWS      AWSConfig      `mapstructure:"aws"`
	Media    MediaConfig    `mapstructure:"media"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	Mode            string        `mapstructure:"mode" validate:"oneof=debug release test"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	CookieSecure    bool          `mapstructure:"cookie_secure"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=mongo sqlite3 postgres"`
	URI    string `mapstructure:"uri" validate:"required"`
	Name   string `mapstructure:"name" validate:"required_if=Driver mongo"`
}

type AuthConfig struct {
	AccessTokenSecret  string        `mapstructure:"access_token_secret" validate:"required"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_token_expiry" validate:"gt=0"`
	RefreshTokenSecret string        `mapstructure:"refresh_token_secret" validate:"required,nefield=AccessTokenSecret"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_token_expiry" validate:"gt=0"`
}

// AWSConfig leaves media uploads disabled while S3Bucket is empty.
type AWSConfig struct {
	Region   string `mapstructure:"region" validate:"required_with=S3Bucket"`
	S3Bucket string `mapstructure:"s3_bucket"`
	Endpoint string `mapstructure:"endpoint"`
}

type MediaConfig struct {
	TempDir     string `mapstructure:"temp_dir"`
	FFProbePath string `mapstructure:"ffprobe_path"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format      string `mapstructure:"format" validate:"oneof=json console"`
	Environment string `mapstructure:"environment"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("server.idle_timeout", 2*time.Minute)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.cookie_secure", true)

	v.SetDefault("database.driver", "mongo")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "videotube")

	v.SetDefault("auth.access_token_secret", "")
	v.SetDefault("auth.access_token_expiry", 24*time.Hour)
	v.SetDefault("auth.refresh_token_secret", "")
	v.SetDefault("auth.refresh_token_expiry", 240*time.Hour)

	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.s3_bucket", "")
	v.SetDefault("aws.endpoint", "")

	v.SetDefault("media.temp_dir", "")
	v.SetDefault("media.ffprobe_path", "ffprobe")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.environment", "development")
}

// Load reads config.yaml from dir when present. SERVER_PORT, DATABASE_URI,
// AUTH_ACCESS_TOKEN_SECRET and so on override the file, and a .env in the
// working directory is loaded first.
func Load(dir string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config.yaml")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// MediaEnabled reports whether an upload bucket is configured.
func (c *Config) MediaEnabled() bool {
	return c.AWS.S3Bucket != ""
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shrimpsizemoose/trekker/logger"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath = "config/config.yaml"

	ModeDev     = "dev"
	ModeRelease = "release"
)

// environment overrides, applied after the yaml file
const (
	EnvDBPassword   = "COACHDESK_DB_PASSWORD"
	EnvJWTSecret    = "COACHDESK_JWT_SECRET"
	EnvRedisURL     = "COACHDESK_REDIS_URL"
	EnvResendAPIKey = "RESEND_API_KEY"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver" validate:"required,oneof=mysql postgres sqlite"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	// DSN wins over the discrete fields when set (sqlite uses only this).
	DSN string `yaml:"dsn"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type ServerConfig struct {
	Addr         string   `yaml:"addr" validate:"required"`
	Certificate  Certs    `yaml:"certificate"`
	AllowOrigins []string `yaml:"allow_origins"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" validate:"required,min=16"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type RedisConfig struct {
	Enabled        bool          `yaml:"enabled"`
	URL            string        `yaml:"url" validate:"required_if=Enabled true"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl"`
}

type MailConfig struct {
	ResendAPIKey string   `yaml:"resend_api_key"`
	From         string   `yaml:"from" validate:"required"`
	AdminCC      []string `yaml:"admin_cc" validate:"dive,email"`
}

type ReportConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule" validate:"required_if=Enabled true"`
	Timezone string `yaml:"timezone"`
}

type ScheduleConfig struct {
	Timezone string `yaml:"timezone"`
}

type Config struct {
	Version  string         `yaml:"version"`
	Mode     string         `yaml:"mode" validate:"required,oneof=dev release"`
	Server   ServerConfig   `yaml:"server"`
	DB       DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Redis    RedisConfig    `yaml:"redis"`
	Mail     MailConfig     `yaml:"mail"`
	Report   ReportConfig   `yaml:"report"`
	Schedule ScheduleConfig `yaml:"schedule"`
}

// LoadConfig reads the yaml file at path, applies defaults and environment
// overrides (a .env file next to the binary is honoured) and validates the result.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug.Println("no .env file found, using process environment")
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes yaml bytes into a validated Config.
func Parse(buf []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeDev
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8443"
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Redis.IdempotencyTTL <= 0 {
		c.Redis.IdempotencyTTL = 24 * time.Hour
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "UTC"
	}
	if c.Report.Timezone == "" {
		c.Report.Timezone = c.Schedule.Timezone
	}
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvDBPassword)); v != "" {
		c.DB.Password = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvJWTSecret)); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisURL)); v != "" {
		c.Redis.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvResendAPIKey)); v != "" {
		c.Mail.ResendAPIKey = v
	}
}

// Validate checks struct tags and the timezone names.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("invalid schedule timezone %q: %w", c.Schedule.Timezone, err)
	}
	if _, err := time.LoadLocation(c.Report.Timezone); err != nil {
		return fmt.Errorf("invalid report timezone %q: %w", c.Report.Timezone, err)
	}
	return nil
}

// Location is the timezone occurrence dates and times are expressed in.
func (c ScheduleConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c ReportConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

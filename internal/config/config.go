// Package config loads service configuration from defaults, an optional YAML
// file, a .env file and environment variables, in increasing order of priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"review-sentiment/internal/sentiment"
)

// ErrConfiguration wraps every loading or validation failure.
var ErrConfiguration = errors.New("configuration error")

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

type Config struct {
	Port            string        `mapstructure:"port"             validate:"required,numeric"`
	LogLevel        string        `mapstructure:"log_level"        validate:"oneof=debug info warn error"`
	LogFormat       string        `mapstructure:"log_format"       validate:"oneof=text json"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"   validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s"`

	CORS    CORSConfig    `mapstructure:"cors"`
	Storage StorageConfig `mapstructure:"storage"`
	SQLite  SQLiteConfig  `mapstructure:"sqlite"`
	MongoDB MongoDBConfig `mapstructure:"mongodb"`
	Alerts  AlertsConfig  `mapstructure:"alerts"`
	Lexicon LexiconConfig `mapstructure:"lexicon"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"min=1"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=memory sqlite mongo"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type MongoDBConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// AlertsConfig controls e-mail alerts for negative reviews. When the Resend
// key is empty alerts are only logged.
type AlertsConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	FromEmail    string `mapstructure:"from_email" validate:"omitempty,email"`
	ToEmail      string `mapstructure:"to_email"   validate:"omitempty,email"`
}

// EmailEnabled reports whether alerts should be sent through Resend.
func (a AlertsConfig) EmailEnabled() bool {
	return a.ResendAPIKey != ""
}

type LexiconConfig struct {
	Positive []string `mapstructure:"positive"`
	Negative []string `mapstructure:"negative"`
}

func (l LexiconConfig) Lexicon() sentiment.Lexicon {
	return sentiment.Lexicon{Positive: l.Positive, Negative: l.Negative}
}

// Options tweak where Load looks for its inputs.
type Options struct {
	// ConfigFile is an optional YAML file. A missing file is not an error.
	ConfigFile string
	// EnvFiles are loaded with godotenv before reading the environment.
	// Missing files are ignored.
	EnvFiles []string
}

// Load reads configuration and validates it.
func Load(opts Options) (*Config, error) {
	for _, f := range opts.EnvFiles {
		// Missing .env is fine, variables may be set directly.
		_ = godotenv.Load(f)
	}

	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfiguration, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

// Validate runs struct tag validation plus the cross-field rules tags can't express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if c.SQLite.Path == "" {
			return errors.New("SQLITE_PATH is required when STORAGE_DRIVER=sqlite")
		}
	case DriverMongo:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI is required when STORAGE_DRIVER=mongo")
		}
		if c.MongoDB.Database == "" {
			return errors.New("DB_NAME is required when STORAGE_DRIVER=mongo")
		}
	}

	if c.Alerts.EmailEnabled() && (c.Alerts.FromEmail == "" || c.Alerts.ToEmail == "") {
		return errors.New("FROM_EMAIL and ALERT_EMAIL are required when RESEND_API_KEY is set")
	}

	if _, err := sentiment.NewClassifier(c.Lexicon.Lexicon()); err != nil {
		return fmt.Errorf("lexicon: %w", err)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	lex := sentiment.DefaultLexicon()

	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("max_body_bytes", 1<<20)
	v.SetDefault("shutdown_timeout", 10*time.Second)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("sqlite.path", "reviews.db")
	v.SetDefault("mongodb.uri", "")
	v.SetDefault("mongodb.database", "reviews")

	v.SetDefault("alerts.resend_api_key", "")
	v.SetDefault("alerts.from_email", "")
	v.SetDefault("alerts.to_email", "")

	v.SetDefault("lexicon.positive", lex.Positive)
	v.SetDefault("lexicon.negative", lex.Negative)
}

// bindEnv maps config keys to the flat environment variable names used in
// deployment. Unlisted keys fall back to AutomaticEnv (dots become underscores).
func bindEnv(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"storage.driver":        "STORAGE_DRIVER",
		"sqlite.path":           "SQLITE_PATH",
		"mongodb.uri":           "MONGODB_URI",
		"mongodb.database":      "DB_NAME",
		"cors.allowed_origins":  "CORS_ALLOWED_ORIGINS",
		"alerts.resend_api_key": "RESEND_API_KEY",
		"alerts.from_email":     "FROM_EMAIL",
		"alerts.to_email":       "ALERT_EMAIL",
		"lexicon.positive":      "LEXICON_POSITIVE",
		"lexicon.negative":      "LEXICON_NEGATIVE",
	}
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	return errors.Is(err, fs.ErrNotExist)
}

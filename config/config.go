package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const envPrefix = "POSTS_"

// ErrMissingSecret is returned when no signing key is configured
var ErrMissingSecret = errors.New("POSTS_JWT_SECRET is required")

type Config struct {
	Port           string        `koanf:"port"`
	JWTSecret      string        `koanf:"jwt_secret"`
	DatabaseURL    string        `koanf:"database_url"`
	MongoDatabase  string        `koanf:"mongo_database"`
	CORSOrigin     string        `koanf:"cors_origin"`
	TokenTTL       time.Duration `koanf:"token_ttl"`
	TokenHeader    string        `koanf:"token_header"`
	TokenIssuer    string        `koanf:"token_issuer"`
	ContextKey     string        `koanf:"context_key"`
	BcryptCost     int           `koanf:"bcrypt_cost"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	UseHashid      bool          `koanf:"use_hashid"`
	Debug          bool          `koanf:"debug"`
}

// Defaults are kept as strings so environment values, which always arrive
// as strings, merge over them and go through the same decoding.
func defaults() map[string]any {
	port := "5000"
	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		port = v
	}

	return map[string]any{
		"port":            port,
		"database_url":    "file:posts.db?cache=shared",
		"mongo_database":  "posts",
		"cors_origin":     "http://localhost:5000",
		"token_ttl":       "10h",
		"token_header":    "x-auth-token",
		"context_key":     "user",
		"bcrypt_cost":     strconv.Itoa(bcrypt.DefaultCost),
		"request_timeout": "10s",
		"use_hashid":      "false",
		"debug":           "false",
	}
}

// Load reads the optional .env files and then the POSTS_ prefixed
// environment. Variables already set in the environment win over .env
// values. Malformed values fail the load.
func Load(files ...string) (*Config, error) {
	return LoadContext(context.Background(), files...)
}

func LoadContext(ctx context.Context, files ...string) (*Config, error) {
	if err := loadDotEnv(files...); err != nil {
		return nil, err
	}

	container, err := gconfig.New(&Config{},
		gconfig.WithLoader(
			gconfig.DefaultValues[*Config](defaults()),
			gconfig.EnvProvider[*Config](envPrefix, "__"),
		),
		gconfig.WithValidation[*Config](false),
	)
	if err != nil {
		return nil, err
	}

	if err := container.Load(ctx); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := container.Raw()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		files = []string{".env"}
	}
	return godotenv.Load(files...)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return ErrMissingSecret
	}

	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.DatabaseURL, validation.Required),
		validation.Field(&c.TokenHeader, validation.Required),
		validation.Field(&c.TokenTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.RequestTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.BcryptCost, validation.Min(bcrypt.MinCost), validation.Max(bcrypt.MaxCost)),
	)
}

// Redacted returns a copy safe to print
func (c Config) Redacted() Config {
	if c.JWTSecret != "" {
		c.JWTSecret = "[redacted]"
	}
	if i := strings.Index(c.DatabaseURL, "@"); i > 0 {
		if j := strings.Index(c.DatabaseURL, "://"); j > 0 && j < i {
			c.DatabaseURL = c.DatabaseURL[:j+3] + "[redacted]" + c.DatabaseURL[i:]
		}
	}
	return c
}

func (c Config) GetSigningKey() string {
	return c.JWTSecret
}

func (c Config) GetContextKey() string {
	return c.ContextKey
}

func (c Config) GetTokenExpiration() time.Duration {
	return c.TokenTTL
}

func (c Config) GetTokenLookup() string {
	return "header:" + c.TokenHeader
}

func (c Config) GetIssuer() string {
	return c.TokenIssuer
}

func (c Config) GetRequestTimeout() time.Duration {
	return c.RequestTimeout
}

func (c Config) GetCORSOrigin() string {
	return c.CORSOrigin
}

func (c Config) GetUseHashid() bool {
	return c.UseHashid
}

func (c Config) GetAddress() string {
	return ":" + c.Port
}

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported DATABASE_TYPE values
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

type Config struct {
	Port              int           `env:"PORT" envDefault:"3318"`
	DatabaseURL       string        `env:"DATABASE_URL"`
	DatabaseType      string        `env:"DATABASE_TYPE" envDefault:"sqlite"`
	TokenSecret       string        `env:"TOKEN_SECRET"`
	TokenIssuer       string        `env:"TOKEN_ISSUER" envDefault:"ballot-core"`
	VoteTimeout       time.Duration `env:"VOTE_TIMEOUT" envDefault:"5s"`
	IdentityCacheSize int           `env:"IDENTITY_CACHE_SIZE" envDefault:"1024"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// ParseFlags builds the Config from .env, environment and CLI flags.
// CLI flags win over environment, environment wins over defaults.
func ParseFlags(args []string) (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	flags := flag.NewFlagSet("ballot-core", flag.ContinueOnError)

	// Env values become the flag defaults so an explicit flag overrides them
	flags.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	flags.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	flags.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")
	flags.DurationVar(&cfg.VoteTimeout, "vote-timeout", cfg.VoteTimeout, "Upper bound for a single vote submission")

	// Secrets (prefer env variables, but allow CLI for dev)
	flags.StringVar(&cfg.TokenSecret, "token-secret", cfg.TokenSecret, "Bearer token HMAC secret (prefer env)")
	flags.StringVar(&cfg.TokenIssuer, "token-issuer", cfg.TokenIssuer, "Expected bearer token issuer")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required values and ranges.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("invalid port")
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if c.DatabaseType != DatabaseSQLite && c.DatabaseType != DatabasePostgres {
		return fmt.Errorf("unsupported database type %q (sqlite or postgres)", c.DatabaseType)
	}
	if c.TokenSecret == "" {
		return errors.New("TOKEN_SECRET required")
	}
	if c.VoteTimeout <= 0 {
		return errors.New("vote timeout must be positive")
	}
	if c.IdentityCacheSize <= 0 {
		return errors.New("identity cache size must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	return nil
}

// TokenSettings is the subset of configuration needed to mint bearer tokens.
type TokenSettings struct {
	Secret string `env:"TOKEN_SECRET,notEmpty"`
	Issuer string `env:"TOKEN_ISSUER" envDefault:"ballot-core"`
}

// LoadTokenSettings reads token settings from .env and the environment.
func LoadTokenSettings() (TokenSettings, error) {
	if err := loadDotEnv(); err != nil {
		return TokenSettings{}, err
	}

	var ts TokenSettings
	if err := env.Parse(&ts); err != nil {
		return TokenSettings{}, fmt.Errorf("parse env: %w", err)
	}
	return ts, nil
}

// A missing .env is fine; a malformed one is not.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

package app

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full runtime configuration, loaded from the environment.
// The three signing secrets are required and must be distinct in spirit:
// sharing one secret across purposes would let a refresh token pass as an
// access token.
type Config struct {
	Issuer string `env:"AUTH_ISSUER" envDefault:"orgauth"`

	JWTSecret        string `env:"JWT_SECRET"`
	JWTRefreshSecret string `env:"JWT_REFRESH_SECRET"`
	JWTInviteSecret  string `env:"JWT_INVITE_SECRET"`

	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	InviteTokenTTL  time.Duration `env:"INVITE_TOKEN_TTL" envDefault:"24h"`

	DatabaseFile string `env:"AUTH_DATABASE_FILE" envDefault:"orgauth.db"`
	PepperFile   string `env:"AUTH_PEPPER_FILE" envDefault:"pepper"`

	// BaseURL is the public origin of this service; the invitation accept
	// link is built from it.
	BaseURL string `env:"AUTH_BASE_URL" envDefault:"http://localhost:8080"`

	SMTPAddr     string `env:"SMTP_ADDR"` // empty disables mail delivery
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"no-reply@orgauth.local"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`

	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	Port      int    `env:"PORT" envDefault:"8080"`

	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
}

// LoadConfig parses configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants LoadConfig cannot express.
func (cfg Config) Validate() error {
	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" || cfg.JWTInviteSecret == "" {
		return errors.New("JWT_SECRET, JWT_REFRESH_SECRET and JWT_INVITE_SECRET must all be set")
	}
	if cfg.JWTSecret == cfg.JWTRefreshSecret || cfg.JWTSecret == cfg.JWTInviteSecret ||
		cfg.JWTRefreshSecret == cfg.JWTInviteSecret {
		return errors.New("signing secrets must differ per token purpose")
	}
	return nil
}

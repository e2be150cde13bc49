package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config is the process configuration read from the environment
type Config struct {
	Port           string        `env:"PORT,default=8000"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT,default=10s"`

	DatabaseURL    string `env:"DATABASE_URL,required"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS,default=10"`
	DBMaxIdleConns int    `env:"DB_MAX_IDLE_CONNS,default=5"`
	RunMigrations  bool   `env:"RUN_MIGRATIONS,default=true"`

	JWTSecret   string        `env:"JWT_SECRET,required"`
	JWTIssuer   string        `env:"JWT_ISSUER,default=candle-shop"`
	JWTAudience string        `env:"JWT_AUDIENCE,default=candle-shop-web"`
	JWTTTL      time.Duration `env:"JWT_TTL,default=24h"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=json"`

	EmailProvider    string `env:"EMAIL_PROVIDER,default=none"` // none, postmark or sendgrid
	PostmarkAPIToken string `env:"POSTMARK_API_TOKEN"`
	SendgridAPIKey   string `env:"SENDGRID_API_KEY"`
	EmailSender      string `env:"EMAIL_SENDER"`

	RateLimitRPS   int `env:"RATE_LIMIT_RPS,default=20"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST,default=40"`

	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// LoadConfig reads an optional .env file and decodes the environment.
// The bool result reports whether a .env file was found.
func LoadConfig(envFiles ...string) (*Config, bool, error) {
	loaded := godotenv.Load(envFiles...) == nil

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, loaded, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, loaded, err
	}
	return &cfg, loaded, nil
}

func (c *Config) validate() error {
	switch c.EmailProvider {
	case "none", "":
	case "postmark":
		if c.PostmarkAPIToken == "" {
			return errors.New("POSTMARK_API_TOKEN is required when EMAIL_PROVIDER=postmark")
		}
	case "sendgrid":
		if c.SendgridAPIKey == "" {
			return errors.New("SENDGRID_API_KEY is required when EMAIL_PROVIDER=sendgrid")
		}
	default:
		return fmt.Errorf("unknown EMAIL_PROVIDER %q", c.EmailProvider)
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config contains server configuration parameters.
type Config struct {
	Env            string `env:"APP_ENV" envDefault:"development"`
	Port           string `env:"PORT" envDefault:"5000"`
	LogLevel       int    `env:"LOG_LEVEL" envDefault:"0"`
	LogFormat      string `env:"LOG_FORMAT" envDefault:"text"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS" envDefault:"*"`
	AppBaseURL     string `env:"APP_BASE_URL" envDefault:"http://localhost:5173"`
	UploadMaxBytes int    `env:"UPLOAD_MAX_BYTES" envDefault:"52428800"`

	Store StoreConfig
	Auth  Auth
	Redis Redis       `envPrefix:"REDIS_"`
	SMTP  SMTP        `envPrefix:"SMTP_"`
}

// StoreConfig selects and configures the account store.
type StoreConfig struct {
	Driver       string        `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI     string        `env:"MONGO_URI" envDefault:"mongodb://127.0.0.1:27017/pms"`
	MongoDB      string        `env:"MONGO_DB" envDefault:"pms"`
	AuditTimeout time.Duration `env:"AUDIT_TIMEOUT" envDefault:"5s"`
}

// Auth contains password, session and reset-token parameters.
type Auth struct {
	JWTSecret              string        `env:"JWT_SECRET" envDefault:"your_secret_key"`
	JWTExpire              Lifetime      `env:"JWT_EXPIRE" envDefault:"24h"`
	ResetPasswordExpireMin int           `env:"RESET_PASSWORD_EXPIRE_MIN" envDefault:"15"`
	BcryptCost             int           `env:"BCRYPT_COST" envDefault:"10"`
	LegacyPlaintext        bool          `env:"AUTH_LEGACY_PLAINTEXT" envDefault:"false"`
	LoginMaxAttempts       int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginLockout           time.Duration `env:"LOGIN_LOCKOUT" envDefault:"15m"`
}

// Redis contains the address used by the login limiter and the asynq mail queue.
type Redis struct {
	URI string `env:"URI"`
}

// SMTP contains outbound mail parameters. Empty host disables mail.
type SMTP struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT" envDefault:"587"`
	User string `env:"USER"`
	Pass string `env:"PASS"`
	From string `env:"FROM"`
}

// ResetTTL returns the reset-token lifetime.
func (a Auth) ResetTTL() time.Duration {
	return time.Duration(a.ResetPasswordExpireMin) * time.Minute
}

// Enabled reports whether every SMTP parameter needed to send is present.
func (s SMTP) Enabled() bool {
	return s.Host != "" && s.Port != 0 && s.User != "" && s.Pass != "" && s.From != ""
}

// Missing lists the SMTP variables that are unset.
func (s SMTP) Missing() []string {
	missing := []string{}
	if s.Host == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if s.Port == 0 {
		missing = append(missing, "SMTP_PORT")
	}
	if s.User == "" {
		missing = append(missing, "SMTP_USER")
	}
	if s.Pass == "" {
		missing = append(missing, "SMTP_PASS")
	}
	if s.From == "" {
		missing = append(missing, "SMTP_FROM")
	}
	return missing
}

// NewConfig loads .env (if present) and parses configuration from the environment.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Warning: No .env file found")
	}
	return Parse()
}

// Parse reads configuration from the environment only.
func Parse() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// dotenv keeps surrounding quotes when the value was quoted
	cfg.Store.MongoURI = strings.Trim(cfg.Store.MongoURI, `"'`)

	switch cfg.Store.Driver {
	case "mongo", "memory":
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.Store.Driver)
	}
	if cfg.Auth.BcryptCost < 4 || cfg.Auth.BcryptCost > 31 {
		return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Auth.ResetPasswordExpireMin <= 0 {
		return nil, fmt.Errorf("RESET_PASSWORD_EXPIRE_MIN must be positive, got %d", cfg.Auth.ResetPasswordExpireMin)
	}

	return &cfg, nil
}

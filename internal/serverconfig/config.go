// Package serverconfig loads goaccount-server settings: defaults, then an
// optional JSON file, then environment variables, then flags.
package serverconfig

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds runtime settings for the server binary.
type Config struct {
	Addr     string
	LogLevel string

	StoreDriver string
	DatabaseDSN string
	// RedisAddr enables the Redis event sink and mail queue when set.
	RedisAddr string

	SigningMethod  string
	SecretKey      string
	PrivateKeyFile string
	PublicKeyFile  string

	ResetTokenTTL  time.Duration
	SingleUseReset bool

	BaseURL    string
	MailFrom   string
	TrustProxy bool

	ShutdownTimeout time.Duration
}

// LoadDefaults fills development defaults. The in-memory store and the
// generated signing key lose everything on restart.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.LogLevel = "info"
	c.StoreDriver = StoreMemory
	c.SigningMethod = "ed25519"
	c.ResetTokenTTL = 2 * time.Hour
	c.BaseURL = "http://localhost:8080"
	c.MailFrom = "no-reply@localhost"
	c.ShutdownTimeout = 10 * time.Second
}

// Load builds a Config from defaults, the JSON file named by -c/-config,
// GOACCOUNT_* variables read through getenv, and args.
func Load(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := configPath(args, getenv); path != "" {
		if err := parseJSON(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := parseEnv(cfg, getenv); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks field shapes and the combinations the server relies on.
func (c Config) Validate() error {
	var dsnRules, secretRules, publicKeyRules []validation.Rule
	if c.StoreDriver != StoreMemory {
		dsnRules = append(dsnRules, validation.Required)
	}
	if c.SigningMethod == "hs256" {
		secretRules = append(secretRules, validation.Required, validation.Length(32, 0))
	}
	if c.PrivateKeyFile != "" {
		publicKeyRules = append(publicKeyRules, validation.Required)
	}

	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.StoreDriver, validation.Required, validation.In(StoreMemory, StoreSQLite, StorePostgres)),
		validation.Field(&c.DatabaseDSN, dsnRules...),
		validation.Field(&c.SigningMethod, validation.Required, validation.In("ed25519", "hs256")),
		validation.Field(&c.SecretKey, secretRules...),
		validation.Field(&c.PublicKeyFile, publicKeyRules...),
		validation.Field(&c.ResetTokenTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.MailFrom, validation.Required),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

package serverconfig

import (
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"
)

// envVars maps GOACCOUNT_* names to flag names. Environment values are
// applied as flag defaults, so explicit flags win.
var envVars = map[string]string{
	"GOACCOUNT_ADDR":             "addr",
	"GOACCOUNT_LOG_LEVEL":        "log-level",
	"GOACCOUNT_STORE":            "store",
	"GOACCOUNT_DATABASE_DSN":     "database-dsn",
	"GOACCOUNT_REDIS_ADDR":       "redis-addr",
	"GOACCOUNT_SIGNING_METHOD":   "signing-method",
	"GOACCOUNT_SECRET_KEY":       "secret-key",
	"GOACCOUNT_PRIVATE_KEY_FILE": "private-key-file",
	"GOACCOUNT_PUBLIC_KEY_FILE":  "public-key-file",
	"GOACCOUNT_RESET_TOKEN_TTL":  "reset-token-ttl",
	"GOACCOUNT_SINGLE_USE_RESET": "single-use-reset",
	"GOACCOUNT_BASE_URL":         "base-url",
	"GOACCOUNT_MAIL_FROM":        "mail-from",
	"GOACCOUNT_TRUST_PROXY":      "trust-proxy",
	"GOACCOUNT_SHUTDOWN_TIMEOUT": "shutdown-timeout",
}

func newFlagSet(cfg *Config) *flag.FlagSet {
	fs := flag.NewFlagSet("goaccount-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.String("c", "", "path to a JSON config file")
	fs.String("config", "", "path to a JSON config file")

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.StoreDriver, "store", cfg.StoreDriver, "account store: memory, sqlite or postgres")
	fs.StringVar(&cfg.DatabaseDSN, "database-dsn", cfg.DatabaseDSN, "database DSN for sqlite or postgres")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for events and the mail queue")
	fs.StringVar(&cfg.SigningMethod, "signing-method", cfg.SigningMethod, "ed25519 or hs256")
	fs.StringVar(&cfg.SecretKey, "secret-key", cfg.SecretKey, "hs256 secret, at least 32 bytes")
	fs.StringVar(&cfg.PrivateKeyFile, "private-key-file", cfg.PrivateKeyFile, "ed25519 private key (PKCS#8 PEM)")
	fs.StringVar(&cfg.PublicKeyFile, "public-key-file", cfg.PublicKeyFile, "ed25519 public key (PKIX PEM)")
	fs.DurationVar(&cfg.ResetTokenTTL, "reset-token-ttl", cfg.ResetTokenTTL, "password reset token lifetime")
	fs.BoolVar(&cfg.SingleUseReset, "single-use-reset", cfg.SingleUseReset, "bind reset tokens to the current password")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "public URL used in mail links")
	fs.StringVar(&cfg.MailFrom, "mail-from", cfg.MailFrom, "sender address")
	fs.BoolVar(&cfg.TrustProxy, "trust-proxy", cfg.TrustProxy, "take the client IP from X-Forwarded-For")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown limit")
	return fs
}

func parseEnv(cfg *Config, getenv func(string) string) error {
	fs := newFlagSet(cfg)
	for env, name := range envVars {
		v := getenv(env)
		if v == "" {
			continue
		}
		if err := fs.Set(name, v); err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
	}
	return nil
}

func parseFlags(cfg *Config, args []string) error {
	fs := newFlagSet(cfg)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return nil
}

// Usage writes the flag list to w.
func Usage(w io.Writer) {
	cfg := &Config{}
	cfg.LoadDefaults()
	fs := newFlagSet(cfg)
	fs.SetOutput(w)
	fmt.Fprintln(w, "Usage of goaccount-server:")
	fs.PrintDefaults()
	fmt.Fprintln(w, "\nEnvironment (overridden by flags):")
	names := make([]string, 0, len(envVars))
	for env := range envVars {
		names = append(names, env)
	}
	sort.Strings(names)
	for _, env := range names {
		fmt.Fprintf(w, "  %s -> -%s\n", env, envVars[env])
	}
}

// String renders the effective config without secrets.
func (c Config) String() string {
	secret := ""
	if c.SecretKey != "" {
		secret = "<redacted>"
	}
	return "addr=" + c.Addr +
		" store=" + c.StoreDriver +
		" redis=" + strconv.Quote(c.RedisAddr) +
		" signing=" + c.SigningMethod +
		" secret=" + strconv.Quote(secret) +
		" reset_ttl=" + c.ResetTokenTTL.Round(time.Second).String() +
		" single_use_reset=" + strconv.FormatBool(c.SingleUseReset)
}

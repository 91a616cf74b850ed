package serverconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Duration accepts "90s" style strings or integer nanoseconds in JSON.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

// fileConfig mirrors Config for JSON files. Absent fields keep the values
// already in Config.
type fileConfig struct {
	Addr            *string   `json:"addr"`
	LogLevel        *string   `json:"log_level"`
	StoreDriver     *string   `json:"store_driver"`
	DatabaseDSN     *string   `json:"database_dsn"`
	RedisAddr       *string   `json:"redis_addr"`
	SigningMethod   *string   `json:"signing_method"`
	SecretKey       *string   `json:"secret_key"`
	PrivateKeyFile  *string   `json:"private_key_file"`
	PublicKeyFile   *string   `json:"public_key_file"`
	ResetTokenTTL   *Duration `json:"reset_token_ttl"`
	SingleUseReset  *bool     `json:"single_use_reset"`
	BaseURL         *string   `json:"base_url"`
	MailFrom        *string   `json:"mail_from"`
	TrustProxy      *bool     `json:"trust_proxy"`
	ShutdownTimeout *Duration `json:"shutdown_timeout"`
}

// configPath returns the value of -c/-config, falling back to
// GOACCOUNT_CONFIG.
func configPath(args []string, getenv func(string) string) string {
	for i := 0; i < len(args); i++ {
		name, value, hasValue := strings.Cut(strings.TrimLeft(args[i], "-"), "=")
		if !strings.HasPrefix(args[i], "-") || (name != "c" && name != "config") {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return getenv("GOACCOUNT_CONFIG")
}

func parseJSON(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := json.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.Addr, fc.Addr)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.StoreDriver, fc.StoreDriver)
	setString(&cfg.DatabaseDSN, fc.DatabaseDSN)
	setString(&cfg.RedisAddr, fc.RedisAddr)
	setString(&cfg.SigningMethod, fc.SigningMethod)
	setString(&cfg.SecretKey, fc.SecretKey)
	setString(&cfg.PrivateKeyFile, fc.PrivateKeyFile)
	setString(&cfg.PublicKeyFile, fc.PublicKeyFile)
	setString(&cfg.BaseURL, fc.BaseURL)
	setString(&cfg.MailFrom, fc.MailFrom)
	if fc.ResetTokenTTL != nil {
		cfg.ResetTokenTTL = time.Duration(*fc.ResetTokenTTL)
	}
	if fc.ShutdownTimeout != nil {
		cfg.ShutdownTimeout = time.Duration(*fc.ShutdownTimeout)
	}
	if fc.SingleUseReset != nil {
		cfg.SingleUseReset = *fc.SingleUseReset
	}
	if fc.TrustProxy != nil {
		cfg.TrustProxy = *fc.TrustProxy
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

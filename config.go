package goAccount

import (
	"errors"
	"time"
)

// Config is the full engine configuration. Start from [DefaultConfig] and
// override fields; [Builder.Build] validates the result.
type Config struct {
	Token         TokenConfig
	Password      PasswordConfig
	PasswordReset PasswordResetConfig
	Events        EventsConfig
	Notifications NotificationsConfig
	Metrics       MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig configures the token codec shared by every flow.
type TokenConfig struct {
	SigningMethod string // "ed25519" (default) or "hs256"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	// Leeway tolerates clock skew on iat. Expiry is never extended.
	Leeway time.Duration

	// KeyID is stamped into issued tokens; VerifyKeys maps older kids to
	// their verification keys during rotation.
	KeyID      string
	VerifyKeys map[string][]byte
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig selects the primary hashing scheme and its costs.
type PasswordConfig struct {
	Algorithm string // "argon2id" (default) or "bcrypt"

	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32

	BcryptCost       int
	MaxPasswordBytes int

	// AcceptLegacyBcrypt verifies bcrypt hashes when argon2id is primary.
	AcceptLegacyBcrypt bool
	// UpgradeOnLogin rehashes outdated or legacy hashes after a successful login.
	UpgradeOnLogin bool
}

/*
====================================
PASSWORD RESET CONFIG
====================================
*/

// PasswordResetConfig controls reset tokens.
type PasswordResetConfig struct {
	TokenTTL time.Duration

	// SingleUse binds each reset token to the password hash it was issued
	// against, so the token stops working once the password changes.
	SingleUse bool
}

/*
====================================
EVENTS / NOTIFICATIONS / METRICS
====================================
*/

// EventsConfig controls the asynchronous event bus.
type EventsConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// NotificationsConfig controls the asynchronous mail queue.
type NotificationsConfig struct {
	BufferSize int
	DropIfFull bool
	// SendTimeout bounds one Notifier.Send call. Zero means no bound.
	SendTimeout time.Duration
}

// MetricsConfig toggles in-process counters and flow latency histograms.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns production defaults. Signing keys must still be set.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			SigningMethod: "ed25519",
			Leeway:        30 * time.Second,
		},
		Password: PasswordConfig{
			Algorithm:        "argon2id",
			Memory:           65536,
			Time:             3,
			Parallelism:      2,
			SaltLength:       16,
			KeyLength:        32,
			BcryptCost:       12,
			MaxPasswordBytes: 1024,
			UpgradeOnLogin:   true,
		},
		PasswordReset: PasswordResetConfig{
			TokenTTL: 2 * time.Hour,
		},
		Events: EventsConfig{
			Enabled:    true,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Notifications: NotificationsConfig{
			BufferSize:  256,
			DropIfFull:  true,
			SendTimeout: 30 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	if cfg.Token.VerifyKeys != nil {
		out.Token.VerifyKeys = make(map[string][]byte, len(cfg.Token.VerifyKeys))
		for kid, key := range cfg.Token.VerifyKeys {
			out.Token.VerifyKeys[kid] = cloneBytes(key)
		}
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	// Token
	switch c.Token.SigningMethod {
	case "ed25519":
		if len(c.Token.PrivateKey) == 0 {
			return errors.New("ed25519 requires PrivateKey")
		}
		if len(c.Token.PublicKey) == 0 && len(c.Token.VerifyKeys) == 0 {
			return errors.New("ed25519 requires PublicKey")
		}
	case "hs256":
		if len(c.Token.PrivateKey) < 32 {
			return errors.New("hs256 requires a PrivateKey of at least 32 bytes")
		}
	default:
		return errors.New("unsupported token signing method")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be between 0 and 2m")
	}

	// Password
	switch c.Password.Algorithm {
	case "argon2id":
		if c.Password.Memory < 8*1024 {
			return errors.New("Password Memory must be >= 8192 KB")
		}
		if c.Password.Time < 1 {
			return errors.New("Password Time must be >= 1")
		}
		if c.Password.Parallelism < 1 {
			return errors.New("Password Parallelism must be >= 1")
		}
		if c.Password.SaltLength < 16 {
			return errors.New("Password SaltLength must be >= 16")
		}
		if c.Password.KeyLength < 16 {
			return errors.New("Password KeyLength must be >= 16")
		}
	case "bcrypt":
	default:
		return errors.New("Password Algorithm must be 'argon2id' or 'bcrypt'")
	}
	if c.Password.Algorithm == "bcrypt" || c.Password.AcceptLegacyBcrypt {
		if c.Password.BcryptCost < 4 || c.Password.BcryptCost > 31 {
			return errors.New("Password BcryptCost must be between 4 and 31")
		}
	}
	if c.Password.MaxPasswordBytes < 0 {
		return errors.New("Password MaxPasswordBytes must be >= 0")
	}

	// Password reset
	if c.PasswordReset.TokenTTL <= 0 {
		return errors.New("PasswordReset TokenTTL must be > 0")
	}

	// Events / notifications
	if c.Events.Enabled && c.Events.BufferSize <= 0 {
		return errors.New("Events BufferSize must be > 0")
	}
	if c.Notifications.BufferSize <= 0 {
		return errors.New("Notifications BufferSize must be > 0")
	}
	if c.Notifications.SendTimeout < 0 {
		return errors.New("Notifications SendTimeout must be >= 0")
	}

	return nil
}

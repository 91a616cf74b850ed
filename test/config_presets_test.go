package test

import (
	"testing"
	"time"

	goAccount "github.com/MrEthical07/goAccount"
)

func TestDefaultConfigNeedsKeys(t *testing.T) {
	cfg := goAccount.DefaultConfig()

	if cfg.Token.SigningMethod != "ed25519" {
		t.Fatalf("expected ed25519 default, got %q", cfg.Token.SigningMethod)
	}
	if cfg.PasswordReset.SingleUse {
		t.Fatal("expected replayable reset tokens by default")
	}
	if cfg.PasswordReset.TokenTTL != 2*time.Hour {
		t.Fatalf("expected 2h reset ttl, got %v", cfg.PasswordReset.TokenTTL)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected default config without keys to fail validation")
	}
}

func TestTestPresetValidates(t *testing.T) {
	cfg := testConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected test preset to validate, got %v", err)
	}

	cfg.PasswordReset.SingleUse = true
	cfg.Password.Algorithm = "bcrypt"
	cfg.Password.BcryptCost = 4
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected bcrypt single-use preset to validate, got %v", err)
	}
}

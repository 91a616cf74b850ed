package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod selects the token signature algorithm.
type SigningMethod string

const (
	// MethodEd25519 signs tokens with EdDSA over Ed25519.
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 signs tokens with HMAC-SHA256 using PrivateKey as the secret.
	MethodHS256 SigningMethod = "hs256"
)

// NoExpiry issues a token without an exp claim.
const NoExpiry time.Duration = 0

var (
	// ErrMalformed reports a token that cannot be trusted: bad structure,
	// bad signature, unexpected algorithm, issuer or audience.
	ErrMalformed = errors.New("jwt: malformed token")
	// ErrExpired reports a correctly signed token whose exp is in the past.
	ErrExpired = errors.New("jwt: token expired")
)

// Config defines codec keys and validation rules.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	RequireIAT    bool
	MaxFutureIAT  time.Duration
	KeyID         string
	VerifyKeys    map[string][]byte

	// Now overrides the clock used for issuing and validating. Defaults to time.Now.
	Now func() time.Time
}

// Token is the decoded form of a signed token.
type Token struct {
	ID        string
	Subject   string
	Claims    Claims
	IssuedAt  time.Time
	ExpiresAt time.Time // zero when the token never expires
}

// Expires reports whether the token carries an expiry.
func (t *Token) Expires() bool {
	return t != nil && !t.ExpiresAt.IsZero()
}

type tokenClaims struct {
	Claims Claims `json:"claims,omitempty"`
	jwt.RegisteredClaims
}

// Codec issues and parses tokens. It holds no mutable state and is safe for
// concurrent use.
type Codec struct {
	config Config
}

// NewCodec validates cfg and returns a ready codec.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.MaxFutureIAT == 0 {
		cfg.MaxFutureIAT = 10 * time.Minute
	}
	if cfg.MaxFutureIAT < 0 || cfg.MaxFutureIAT > 24*time.Hour {
		return nil, errors.New("invalid MaxFutureIAT configuration")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.KeyID = strings.TrimSpace(cfg.KeyID)
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) > 0 {
			if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.PublicKey) > 0 {
			if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.VerifyKeys) == 0 && len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires public key or verify key set")
		}
		for kid, key := range cfg.VerifyKeys {
			if strings.TrimSpace(kid) == "" {
				return nil, errors.New("verify key map contains empty kid")
			}
			if _, err := parseEdPublicKey(key); err != nil {
				return nil, fmt.Errorf("invalid ed25519 verify key for kid %q: %w", kid, err)
			}
		}
	default:
		return nil, errors.New("unsupported signing method")
	}
	if cfg.KeyID != "" && len(cfg.VerifyKeys) > 0 {
		if _, ok := cfg.VerifyKeys[cfg.KeyID]; !ok {
			return nil, errors.New("KeyID is not present in VerifyKeys")
		}
	}

	return &Codec{config: cfg}, nil
}

// Issue signs a token for subject carrying claims. A ttl of [NoExpiry]
// omits exp; a negative ttl produces a token that is already expired.
func (c *Codec) Issue(subject string, claims Claims, ttl time.Duration) (string, error) {
	now := c.config.Now()

	registered := jwt.RegisteredClaims{
		ID:       uuid.NewString(),
		Subject:  subject,
		IssuedAt: jwt.NewNumericDate(now),
		Issuer:   c.config.Issuer,
	}
	if ttl != NoExpiry {
		registered.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	if c.config.Audience != "" {
		registered.Audience = jwt.ClaimStrings{c.config.Audience}
	}

	token := jwt.NewWithClaims(c.method(), tokenClaims{
		Claims:           claims.Clone(),
		RegisteredClaims: registered,
	})
	if c.config.KeyID != "" {
		token.Header["kid"] = c.config.KeyID
	}

	signKey, err := c.signKey()
	if err != nil {
		return "", err
	}

	return token.SignedString(signKey)
}

// Parse verifies tokenStr and returns its contents. Every failure wraps
// either [ErrMalformed] or [ErrExpired].
func (c *Codec) Parse(tokenStr string) (*Token, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.method().Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.config.Now),
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}
	if c.config.Audience != "" {
		options = append(options, jwt.WithAudience(c.config.Audience))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, &tokenClaims{}, c.keyFunc)
	if err != nil {
		// The signature is verified before claims, so an expired error
		// always belongs to a genuine token.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	// Leeway only widens the issued-at check; exp is always strict.
	if c.config.RequireIAT {
		if claims.IssuedAt == nil {
			return nil, fmt.Errorf("%w: missing iat", ErrMalformed)
		}
		if claims.IssuedAt.Time.After(c.config.Now().Add(c.config.Leeway)) {
			return nil, fmt.Errorf("%w: iat in the future", ErrMalformed)
		}
	}
	if claims.IssuedAt != nil && c.config.MaxFutureIAT > 0 {
		maxAllowed := c.config.Now().Add(c.config.MaxFutureIAT)
		if claims.IssuedAt.Time.After(maxAllowed) {
			return nil, fmt.Errorf("%w: iat too far in the future", ErrMalformed)
		}
	}

	out := &Token{
		ID:      claims.ID,
		Subject: claims.Subject,
		Claims:  claims.Claims,
	}
	if out.Claims == nil {
		out.Claims = Claims{}
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != c.method().Alg() {
		return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
	}

	if len(c.config.VerifyKeys) > 0 {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid")
		}
		key, ok := c.config.VerifyKeys[kid]
		if !ok {
			return nil, errors.New("unknown kid")
		}
		return c.keyBytesToVerifyKey(key)
	}

	if c.config.KeyID != "" {
		kid, _ := t.Header["kid"].(string)
		if kid != c.config.KeyID {
			return nil, errors.New("unknown kid")
		}
	}

	return c.verifyKey()
}

func (c *Codec) method() jwt.SigningMethod {
	switch c.config.SigningMethod {
	case MethodHS256:
		return jwt.SigningMethodHS256
	default:
		return jwt.SigningMethodEdDSA
	}
}

func (c *Codec) signKey() (interface{}, error) {
	switch c.config.SigningMethod {
	case MethodHS256:
		return c.config.PrivateKey, nil
	default:
		if len(c.config.PrivateKey) == 0 {
			return nil, errors.New("ed25519 private key not configured")
		}
		return parseEdPrivateKey(c.config.PrivateKey)
	}
}

func (c *Codec) verifyKey() (interface{}, error) {
	switch c.config.SigningMethod {
	case MethodHS256:
		return c.config.PrivateKey, nil
	default:
		return parseEdPublicKey(c.config.PublicKey)
	}
}

func (c *Codec) keyBytesToVerifyKey(key []byte) (interface{}, error) {
	switch c.config.SigningMethod {
	case MethodHS256:
		return key, nil
	default:
		return parseEdPublicKey(key)
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}

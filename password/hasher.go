package password

import "errors"

var (
	// ErrEmptyPassword is returned by Hash for an empty plaintext.
	ErrEmptyPassword = errors.New("password: empty password")
	// ErrPasswordTooLong is returned when plaintext exceeds the configured cap.
	ErrPasswordTooLong = errors.New("password: password too long")
	// ErrUnknownEncoding is returned when no hasher recognizes a stored hash.
	ErrUnknownEncoding = errors.New("password: unrecognized hash encoding")
)

// Hasher is a one-way password hash with verification.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
	NeedsUpgrade(encodedHash string) (bool, error)
}

// Scheme is a Hasher that can tell its own encodings apart from others.
type Scheme interface {
	Hasher
	Recognizes(encodedHash string) bool
}

// Chain hashes with its first scheme and verifies with whichever scheme
// recognizes the stored encoding. Hashes owned by any scheme other than the
// first always report NeedsUpgrade, so stores migrate on the next login.
type Chain struct {
	schemes []Scheme
}

// NewChain returns a chain whose primary scheme is primary.
func NewChain(primary Scheme, legacy ...Scheme) (*Chain, error) {
	if primary == nil {
		return nil, errors.New("password: chain requires a primary scheme")
	}
	schemes := make([]Scheme, 0, len(legacy)+1)
	schemes = append(schemes, primary)
	for _, s := range legacy {
		if s != nil {
			schemes = append(schemes, s)
		}
	}
	return &Chain{schemes: schemes}, nil
}

// Hash encodes password with the primary scheme.
func (c *Chain) Hash(password string) (string, error) {
	return c.schemes[0].Hash(password)
}

// Verify checks password against encodedHash using the owning scheme.
func (c *Chain) Verify(password, encodedHash string) (bool, error) {
	s := c.owner(encodedHash)
	if s == nil {
		return false, ErrUnknownEncoding
	}
	return s.Verify(password, encodedHash)
}

// NeedsUpgrade reports true for legacy encodings and defers to the primary
// scheme otherwise.
func (c *Chain) NeedsUpgrade(encodedHash string) (bool, error) {
	s := c.owner(encodedHash)
	if s == nil {
		return false, ErrUnknownEncoding
	}
	if s != c.schemes[0] {
		return true, nil
	}
	return s.NeedsUpgrade(encodedHash)
}

func (c *Chain) owner(encodedHash string) Scheme {
	for _, s := range c.schemes {
		if s.Recognizes(encodedHash) {
			return s
		}
	}
	return nil
}

package jwt

// Claim names understood by the account flows.
const (
	ClaimRegistration  = "token_registration"
	ClaimPasswordReset = "token_password_reset"
	ClaimRoles         = "roles"
	ClaimPasswordPrint = "pwd_fp"
)

// Claims is the free-form claim set carried inside a token. Values decode
// from JSON, so flags are bool, strings are string and lists are []any.
type Claims map[string]any

// Flag reports whether name is present and set to true.
func (c Claims) Flag(name string) bool {
	v, ok := c[name].(bool)
	return ok && v
}

// String returns the string value stored under name.
func (c Claims) String(name string) (string, bool) {
	v, ok := c[name].(string)
	return v, ok
}

// Roles returns the role names carried by a login token.
func (c Claims) Roles() []string {
	switch v := c[ClaimRoles].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Scoped reports whether the claim set carries any single-flow scoping flag.
func (c Claims) Scoped() bool {
	return c.Flag(ClaimRegistration) || c.Flag(ClaimPasswordReset)
}

// Clone returns a shallow copy of c.
func (c Claims) Clone() Claims {
	if c == nil {
		return nil
	}
	out := make(Claims, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

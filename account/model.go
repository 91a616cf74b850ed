package account

import (
	"strings"
	"time"
)

// Permission is a named capability attached to a role.
type Permission struct {
	Name string `json:"name"`
}

// Role is read-only reference data attached to a user.
type Role struct {
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions,omitempty"`
}

// User is an account record. Confirmed flips from false to true exactly once.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Name         string     `json:"name"`
	Confirmed    bool       `json:"confirmed"`
	RegisteredAt time.Time  `json:"registration_date"`
	ConfirmedAt  *time.Time `json:"date_confirmed,omitempty"`
	Roles        []Role     `json:"roles,omitempty"`
}

// DisplayName joins first and last name the way registration derives Name.
func DisplayName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// RoleNames returns the names of u's roles in order.
func (u *User) RoleNames() []string {
	if u == nil {
		return nil
	}
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	if u.ConfirmedAt != nil {
		at := *u.ConfirmedAt
		out.ConfirmedAt = &at
	}
	if u.Roles != nil {
		out.Roles = make([]Role, len(u.Roles))
		for i, r := range u.Roles {
			out.Roles[i] = Role{Name: r.Name}
			if r.Permissions != nil {
				out.Roles[i].Permissions = append([]Permission(nil), r.Permissions...)
			}
		}
	}
	return &out
}

// Public returns a copy of u without the password hash.
func (u *User) Public() *User {
	out := u.Clone()
	if out != nil {
		out.PasswordHash = ""
	}
	return out
}

// LogKind names a lifecycle fact recorded against a user.
type LogKind string

const (
	LogLogin                  LogKind = "login"
	LogConfirmed              LogKind = "confirmed"
	LogPasswordResetRequested LogKind = "password_reset_requested"
	LogPasswordSet            LogKind = "password_set"
)

// LogEntry is an append-only, timestamped lifecycle fact.
type LogEntry struct {
	UserID string    `json:"user_id"`
	Kind   LogKind   `json:"kind"`
	At     time.Time `json:"at"`
}

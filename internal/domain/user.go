package domain

import "time"

// Role enumerates the closed set of account roles.
type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

// ValidRole reports whether the role belongs to the enumeration.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}

// User is the domain model for an account holder. The password hash and the
// reset-token fields never leave the process in serialized form.
type User struct {
	ID                     string     `json:"id"`
	Name                   string     `json:"name"`
	Email                  string     `json:"email"`
	Photo                  string     `json:"photo,omitempty"`
	Role                   Role       `json:"role"`
	PasswordHash           string     `json:"-"`
	PasswordChangedAt      *time.Time `json:"-"`
	PasswordResetToken     *string    `json:"-"`
	PasswordResetExpiresAt *time.Time `json:"-"`
	Active                 bool       `json:"-"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"-"`
}

// PasswordChangedAfter reports whether the password changed after the given
// token issue time. Comparison is at second granularity because JWT iat
// claims carry Unix seconds.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() > issuedAt.Unix()
}

// Sanitized returns a copy with every security field cleared.
func (u *User) Sanitized() *User {
	out := *u
	out.PasswordHash = ""
	out.PasswordChangedAt = nil
	out.PasswordResetToken = nil
	out.PasswordResetExpiresAt = nil
	return &out
}

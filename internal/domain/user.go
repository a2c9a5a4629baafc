package domain

import "time"

// Role is the closed set of account roles.
type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}

// DefaultPhoto is assigned to accounts that never uploaded one.
const DefaultPhoto = "default.jpg"

// User is an account holder and the identity resolved for authenticated requests.
type User struct {
	ID                   string
	Name                 string
	Email                string
	Photo                string
	Role                 Role
	PasswordHash         string
	PasswordChangedAt    *time.Time
	PasswordResetToken   *string
	PasswordResetExpires *time.Time
	Active               bool
	Version              int
	CreatedAt            time.Time
}

// ChangedPasswordAfter reports whether the password changed after a credential issued at
// issuedAt. The stored change time keeps its full precision; credentials minted in the
// same request stay valid because the change time is backdated.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.After(issuedAt)
}

// ClearPasswordReset drops any outstanding reset token.
func (u *User) ClearPasswordReset() {
	u.PasswordResetToken = nil
	u.PasswordResetExpires = nil
}

// FirstName is used to greet the user in mail.
func (u *User) FirstName() string {
	for i, r := range u.Name {
		if r == ' ' {
			return u.Name[:i]
		}
	}
	return u.Name
}

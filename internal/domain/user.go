package domain

import "time"

// User represents a user in the system. PasswordHash is stored as a
// "hash:salt" composite and is never serialized.
type User struct {
	ID           string    `json:"id" db:"id"`
	UserName     string    `json:"userName" db:"user_name"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	Gender       string    `json:"gender" db:"gender"`
	PasswordHash string    `json:"-" db:"password"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`

	// Eagerly loaded associations, nil unless requested.
	Role     *Role     `json:"role,omitempty"`
	Activity *Activity `json:"-"`
}

// Role represents the per-user role flags, one row per user.
type Role struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"userId" db:"user_id"`
	Admin  bool   `json:"admin" db:"admin"`
	User   bool   `json:"user" db:"user"`
}

// Activity is the per-user security state: lockout counters and
// verification/restriction flags. Mutated only by the auth service.
type Activity struct {
	UserID                    string     `json:"userId" db:"user_id"`
	FailedLoginAttempts       int        `json:"failedLoginAttempts" db:"failed_login_attempts"`
	EmailVerified             bool       `json:"emailVerified" db:"email_verified"`
	AccessRestricted          bool       `json:"accessRestricted" db:"access_restricted"`
	PermanentAccessRestricted bool       `json:"permanentAccessRestricted" db:"permanent_access_restricted"`
	PasswordChangedLast       *time.Time `json:"passwordChangedLast" db:"password_changed_last"`
}

// AuthTokenKeys is the active token key pair for a user session.
// The keys are mirrored inside the signed tokens; deleting the row
// revokes every token issued against it. At most one row per user.
type AuthTokenKeys struct {
	UserID          string `db:"user_id"`
	AccessTokenKey  string `db:"access_token_key"`
	RefreshTokenKey string `db:"refresh_token_key"`
}

// VerificationTokenType enumerates the single-use token purposes.
type VerificationTokenType string

const (
	TokenTypeVerifyAccount VerificationTokenType = "VERIFY_ACCOUNT"
	TokenTypeVerifyEmail   VerificationTokenType = "VERIFY_EMAIL"
	TokenTypeResetPassword VerificationTokenType = "RESET_PASSWORD"
)

// VerificationToken is a single-use token proving control of an email
// address or authorizing a password reset. At most one outstanding
// token per user across all purposes.
type VerificationToken struct {
	ID          string                `db:"id"`
	UserID      string                `db:"user_id"`
	Token       string                `db:"token"`
	TokenType   VerificationTokenType `db:"token_type"`
	Verified    bool                  `db:"verified"`
	TokenExpiry time.Time             `db:"token_expiry"`
}

// IsExpired reports whether the verification token TTL has elapsed.
func (t VerificationToken) IsExpired() bool {
	return time.Now().After(t.TokenExpiry)
}

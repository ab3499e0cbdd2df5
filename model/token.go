// file: model/token.go

package model

import "time"

// RefreshToken holds the data for a refresh token in the database.
// The plaintext value is only ever held by the client; the server stores
// its sha256 hash and nothing else.
type RefreshToken struct {
	ID        int        `json:"id"`
	UserID    int        `json:"user_id"`
	TokenHash string     `json:"-"` // The hash is not exposed in JSON responses.
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Revoked reports whether the token has been revoked (by rotation, logout
// or replay defense). Revocation is absorbing: a revoked token is never
// honored again.
func (t *RefreshToken) Revoked() bool {
	return t.RevokedAt != nil
}

// PasswordResetToken is a single-use, short-lived token for the password
// reset flow. Same hash-at-rest discipline as RefreshToken.
type PasswordResetToken struct {
	ID        int        `json:"id"`
	UserID    int        `json:"user_id"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// Used reports whether the reset token has already been consumed.
func (t *PasswordResetToken) Used() bool {
	return t.UsedAt != nil
}

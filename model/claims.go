package model

import "github.com/golang-jwt/jwt/v5"

// AppClaims is the signed claims structure carried by access tokens.
// It embeds a snapshot of the user as of issuance time so that validating
// a request never requires a database round trip. The snapshot may be
// stale; callers needing fresh data must re-query.
type AppClaims struct {
	UserID  int     `json:"user_id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Role    string  `json:"role"`
	Company string  `json:"company"`
	Rate    float64 `json:"rate"`
	jwt.RegisteredClaims
}

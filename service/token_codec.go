// file: service/token_codec.go

package service

import (
	"errors"
	"freelance-auth-api/common"
	"freelance-auth-api/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenCodec encodes and decodes signed access tokens. The signing secret
// is an explicit constructor argument; the codec never reads ambient
// configuration and never touches the database.
type TokenCodec struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewTokenCodec creates a TokenCodec. The same ttl applies to tokens minted
// at login and at refresh.
func NewTokenCodec(secret, issuer, audience string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}
}

// Encode mints an HS256 access token embedding a snapshot of the user.
// It returns the compact serialization and the expiry time.
func (c *TokenCodec) Encode(user *model.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(c.ttl)

	claims := &model.AppClaims{
		UserID:  user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Role:    user.Role,
		Company: user.Company,
		Rate:    user.Rate,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Decode verifies the signature and time bounds of an access token and
// returns its claims. Errors map onto the package taxonomy: expired,
// signature mismatch, not yet valid, or malformed for everything else.
func (c *TokenCodec) Decode(tokenString string) (*model.AppClaims, error) {
	claims := &model.AppClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
	)

	switch {
	case err == nil && token.Valid:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, common.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, common.ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, common.ErrTokenNotYetValid
	default:
		return nil, common.ErrTokenMalformed
	}
}

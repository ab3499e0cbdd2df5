package service

import (
	"freelance-auth-api/logger"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword produces a salted bcrypt hash of the given password. Each
// call yields a distinct hash because bcrypt generates a fresh salt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), err
}

// CheckPasswordHash verifies a password against a stored bcrypt hash.
// A malformed hash simply fails verification; it never panics.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

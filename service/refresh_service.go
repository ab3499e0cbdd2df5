// file: service/refresh_service.go

package service

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"freelance-auth-api/common"
	"freelance-auth-api/logger"
	"freelance-auth-api/model"
	"freelance-auth-api/repository"
	"time"
)

// RefreshTokenService manages the lifecycle of opaque refresh tokens:
// issuance, rotation with reuse detection, and revocation. Only the sha256
// hash of a token is ever persisted; the plaintext is returned to the
// caller exactly once.
type RefreshTokenService struct {
	db   *sql.DB
	repo repository.ITokenRepository
	ttl  time.Duration
}

// NewRefreshTokenService creates a new RefreshTokenService.
func NewRefreshTokenService(db *sql.DB, repo repository.ITokenRepository, ttl time.Duration) *RefreshTokenService {
	return &RefreshTokenService{db: db, repo: repo, ttl: ttl}
}

// HashToken computes the storage hash of a refresh token plaintext.
func HashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// generateToken returns 32 bytes of cryptographically secure randomness as
// a hex plaintext together with its storage hash.
func generateToken() (plaintext, hash string, err error) {
	b := make([]byte, 32)
	if _, err = rand.Read(b); err != nil {
		return "", "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	plaintext = hex.EncodeToString(b)
	return plaintext, HashToken(plaintext), nil
}

// Issue creates a new refresh token for the user and returns its plaintext.
func (s *RefreshTokenService) Issue(userID int) (string, error) {
	return s.issue(s.db, userID)
}

func (s *RefreshTokenService) issue(q repository.Querier, userID int) (string, error) {
	plaintext, hash, err := generateToken()
	if err != nil {
		return "", err
	}

	token := &model.RefreshToken{
		UserID:    userID,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.repo.Create(q, token); err != nil {
		return "", err
	}
	return plaintext, nil
}

// Rotate exchanges a presented refresh token for a fresh one. The lookup,
// predecessor revocation and successor insert run in one transaction with
// the token row locked, so of two concurrent rotations exactly one wins;
// the other observes the revoked row and takes the replay-defense path.
//
// Presenting an already-revoked token is treated as proof of theft: every
// live refresh token of that user is revoked before the call fails.
func (s *RefreshTokenService) Rotate(plaintext string) (string, int, error) {
	hash := HashToken(plaintext)

	tx, err := s.db.Begin()
	if err != nil {
		return "", 0, fmt.Errorf("failed to begin rotation transaction: %w", err)
	}
	defer tx.Rollback()

	token, err := s.repo.GetByTokenHashForUpdate(tx, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, common.ErrInvalidRefreshToken
		}
		return "", 0, err
	}

	if token.Revoked() {
		// Reuse of a rotated-away token. The defensive revocation runs
		// outside the rotation transaction so it survives the rollback.
		tx.Rollback()
		n, revokeErr := s.repo.RevokeAllByUserID(s.db, token.UserID)
		if revokeErr != nil {
			logger.Log.WithError(revokeErr).WithField("user_id", token.UserID).
				Error("Failed to mass-revoke refresh tokens after replay detection")
			return "", 0, revokeErr
		}
		logger.Log.WithField("user_id", token.UserID).WithField("revoked_count", n).
			Warn("Refresh token reuse detected, all sessions for user revoked")
		return "", 0, common.ErrRefreshTokenReplay
	}

	if time.Now().After(token.ExpiresAt) {
		if err := s.repo.Revoke(tx, token.ID); err != nil {
			return "", 0, err
		}
		if err := tx.Commit(); err != nil {
			return "", 0, err
		}
		return "", 0, common.ErrRefreshTokenExpired
	}

	if err := s.repo.Revoke(tx, token.ID); err != nil {
		return "", 0, err
	}
	newPlaintext, err := s.issue(tx, token.UserID)
	if err != nil {
		return "", 0, err
	}
	if err := tx.Commit(); err != nil {
		return "", 0, fmt.Errorf("failed to commit rotation transaction: %w", err)
	}

	return newPlaintext, token.UserID, nil
}

// Revoke marks the token matching the plaintext as revoked. It is
// idempotent and succeeds even when the token is unknown or already
// revoked, so logout never leaks session state.
func (s *RefreshTokenService) Revoke(plaintext string) error {
	return s.repo.RevokeByTokenHash(s.db, HashToken(plaintext))
}

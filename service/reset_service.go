// file: service/reset_service.go

package service

import (
	"database/sql"
	"errors"
	"fmt"
	"freelance-auth-api/common"
	"freelance-auth-api/logger"
	"freelance-auth-api/model"
	"freelance-auth-api/repository"
	"time"
)

// PasswordResetService issues and consumes single-use password reset
// tokens. Delivery of the plaintext token is delegated to the Mailer
// collaborator; this service only owns the token lifecycle.
type PasswordResetService struct {
	db     *sql.DB
	resets repository.IResetRepository
	users  repository.IUserRepository
	mailer Mailer
	ttl    time.Duration
}

// NewPasswordResetService creates a new PasswordResetService.
func NewPasswordResetService(db *sql.DB, resets repository.IResetRepository, users repository.IUserRepository, mailer Mailer, ttl time.Duration) *PasswordResetService {
	return &PasswordResetService{db: db, resets: resets, users: users, mailer: mailer, ttl: ttl}
}

// RequestReset issues a reset token for the given email. An unknown email
// is not an error: the call returns success without writing anything, so
// the endpoint cannot be used to enumerate accounts. Issuing a new token
// invalidates all prior unused tokens for the user.
func (s *PasswordResetService) RequestReset(email string) error {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Log.WithField("email", email).Info("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	plaintext, hash, err := generateToken()
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin reset transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.resets.InvalidateAllForUser(tx, user.ID); err != nil {
		return err
	}
	token := &model.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.resets.Create(tx, token); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset transaction: %w", err)
	}

	// Delivery happens after commit; a mailer failure must not roll back
	// the token, the user can simply request another one.
	if err := s.mailer.SendPasswordReset(user.Email, plaintext); err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Failed to deliver password reset token")
	}
	return nil
}

// ConsumeReset validates a reset token and sets the user's new password.
// The password update and the used_at mark commit together; if either
// write fails the token remains unused.
func (s *PasswordResetService) ConsumeReset(plaintext, newPassword string) error {
	hash := HashToken(plaintext)

	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin reset transaction: %w", err)
	}
	defer tx.Rollback()

	token, err := s.resets.GetByTokenHashForUpdate(tx, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrInvalidResetToken
		}
		return err
	}
	if token.Used() {
		return common.ErrResetTokenUsed
	}
	if time.Now().After(token.ExpiresAt) {
		return common.ErrResetTokenExpired
	}

	if err := s.users.UpdatePassword(tx, token.UserID, passwordHash); err != nil {
		return err
	}
	if err := s.resets.MarkUsed(tx, token.ID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset transaction: %w", err)
	}

	logger.Log.WithField("user_id", token.UserID).Info("Password reset completed")
	return nil
}

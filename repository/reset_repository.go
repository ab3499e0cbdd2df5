// file: repository/reset_repository.go

package repository

import (
	"database/sql"
	"freelance-auth-api/logger"
	"freelance-auth-api/model"
)

// IResetRepository defines the contract for password reset token database
// operations.
type IResetRepository interface {
	Create(q Querier, token *model.PasswordResetToken) error
	GetByTokenHashForUpdate(q Querier, tokenHash string) (*model.PasswordResetToken, error)
	MarkUsed(q Querier, id int) error
	InvalidateAllForUser(q Querier, userID int) error
}

// ResetRepository implements IResetRepository.
type ResetRepository struct{}

// NewResetRepository creates a new ResetRepository.
func NewResetRepository() *ResetRepository {
	return &ResetRepository{}
}

// Create inserts a new password reset token record.
func (r *ResetRepository) Create(q Querier, token *model.PasswordResetToken) error {
	query := `INSERT INTO password_resets (user_id, token_hash, expires_at) VALUES ($1, $2, $3) RETURNING id`
	err := q.QueryRow(query, token.UserID, token.TokenHash, token.ExpiresAt).Scan(&token.ID)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", token.UserID).Error("Failed to execute create reset token query")
	}
	return err
}

// GetByTokenHashForUpdate retrieves a reset token by hash with a row lock,
// so consume runs single-use enforcement and the password update atomically.
func (r *ResetRepository) GetByTokenHashForUpdate(q Querier, tokenHash string) (*model.PasswordResetToken, error) {
	token := &model.PasswordResetToken{}
	query := `SELECT id, user_id, token_hash, expires_at, used_at FROM password_resets WHERE token_hash = $1 FOR UPDATE`
	err := q.QueryRow(query, tokenHash).
		Scan(&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt, &token.UsedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).Error("Failed to execute get reset token by hash query")
		}
		return nil, err
	}
	return token, nil
}

// MarkUsed consumes a reset token.
func (r *ResetRepository) MarkUsed(q Querier, id int) error {
	query := `UPDATE password_resets SET used_at = now() WHERE id = $1 AND used_at IS NULL`
	_, err := q.Exec(query, id)
	if err != nil {
		logger.Log.WithError(err).WithField("token_id", id).Error("Failed to execute mark reset token used query")
	}
	return err
}

// InvalidateAllForUser marks every outstanding reset token for the user as
// used. At most one unused reset token is valid per user at a time; issuing
// a new one retires all predecessors.
func (r *ResetRepository) InvalidateAllForUser(q Querier, userID int) error {
	query := `UPDATE password_resets SET used_at = now() WHERE user_id = $1 AND used_at IS NULL`
	_, err := q.Exec(query, userID)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to execute invalidate reset tokens query")
	}
	return err
}

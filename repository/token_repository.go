// file: repository/token_repository.go

package repository

import (
	"database/sql"
	"freelance-auth-api/logger"
	"freelance-auth-api/model"

	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for refresh token database operations.
// Methods take a Querier so that rotation can run its lookup, revoke and
// insert inside a single transaction.
type ITokenRepository interface {
	Create(q Querier, token *model.RefreshToken) error
	GetByTokenHashForUpdate(q Querier, tokenHash string) (*model.RefreshToken, error)
	Revoke(q Querier, id int) error
	RevokeByTokenHash(q Querier, tokenHash string) error
	RevokeAllByUserID(q Querier, userID int) (int64, error)
}

// TokenRepository implements ITokenRepository.
type TokenRepository struct{}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository() *TokenRepository {
	return &TokenRepository{}
}

// Create inserts a new refresh token record into the database.
func (r *TokenRepository) Create(q Querier, token *model.RefreshToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    token.UserID,
		"expires_at": token.ExpiresAt,
	})

	query := `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES ($1, $2, $3) RETURNING id, created_at`
	err := q.QueryRow(query, token.UserID, token.TokenHash, token.ExpiresAt).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create refresh token query")
		return err
	}
	return nil
}

// GetByTokenHashForUpdate retrieves a refresh token by its hashed value,
// taking a row lock when run inside a transaction. Concurrent rotations of
// the same token serialize on this lock; the loser re-reads the row after
// the winner commits and observes revoked_at set.
func (r *TokenRepository) GetByTokenHashForUpdate(q Querier, tokenHash string) (*model.RefreshToken, error) {
	token := &model.RefreshToken{}
	query := `SELECT id, user_id, token_hash, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token_hash = $1 FOR UPDATE`
	err := q.QueryRow(query, tokenHash).
		Scan(&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt, &token.RevokedAt, &token.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).Error("Failed to execute get refresh token by hash query")
		}
		return nil, err // Return sql.ErrNoRows if not found
	}
	return token, nil
}

// Revoke marks a single refresh token as revoked. Already-revoked rows are
// left untouched so revocation timestamps are never overwritten.
func (r *TokenRepository) Revoke(q Querier, id int) error {
	query := `UPDATE refresh_tokens SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`
	_, err := q.Exec(query, id)
	if err != nil {
		logger.Log.WithError(err).WithField("token_id", id).Error("Failed to execute revoke refresh token query")
	}
	return err
}

// RevokeByTokenHash revokes the token matching the given hash, if any.
// Used by logout, which must be idempotent: zero matched rows is success.
func (r *TokenRepository) RevokeByTokenHash(q Querier, tokenHash string) error {
	query := `UPDATE refresh_tokens SET revoked_at = now() WHERE token_hash = $1 AND revoked_at IS NULL`
	_, err := q.Exec(query, tokenHash)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute revoke refresh token by hash query")
	}
	return err
}

// RevokeAllByUserID revokes every live refresh token for a user. This is
// the replay-defense mass invalidation: reuse of a rotated-away token
// terminates the whole session family.
func (r *TokenRepository) RevokeAllByUserID(q Querier, userID int) (int64, error) {
	log := logger.Log.WithField("user_id", userID)

	query := `UPDATE refresh_tokens SET revoked_at = now() WHERE user_id = $1 AND revoked_at IS NULL`
	res, err := q.Exec(query, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute revoke all refresh tokens query")
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

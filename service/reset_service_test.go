// file: service/reset_service_test.go

package service

import (
	"freelance-auth-api/common"
	"freelance-auth-api/repository"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

const (
	selectUserByEmailQuery = `SELECT id, email, password_hash, role, name, company, rate, created_at FROM users WHERE email=$1`
	invalidateResetsQuery  = `UPDATE password_resets SET used_at = now() WHERE user_id = $1 AND used_at IS NULL`
	insertResetQuery       = `INSERT INTO password_resets (user_id, token_hash, expires_at) VALUES ($1, $2, $3) RETURNING id`
	selectResetQuery       = `SELECT id, user_id, token_hash, expires_at, used_at FROM password_resets WHERE token_hash = $1 FOR UPDATE`
	updatePasswordQuery    = `UPDATE users SET password_hash = $1 WHERE id = $2`
	markResetUsedQuery     = `UPDATE password_resets SET used_at = now() WHERE id = $1 AND used_at IS NULL`
)

// recordingMailer captures the delivered reset token for assertions.
type recordingMailer struct {
	email string
	token string
}

func (m *recordingMailer) SendPasswordReset(email, token string) error {
	m.email = email
	m.token = token
	return nil
}

func newResetServiceForTest(t *testing.T) (*PasswordResetService, sqlmock.Sqlmock, *recordingMailer) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	mailer := &recordingMailer{}
	svc := NewPasswordResetService(db, repository.NewResetRepository(), repository.NewUserRepository(db), mailer, time.Hour)
	return svc, mock, mailer
}

func userRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "name", "company", "rate", "created_at"}).
		AddRow(7, "a@b.com", "$2a$14$somethinghashed", "client", "Ada", "", 0.0, time.Now())
}

func TestPasswordResetService_RequestReset(t *testing.T) {
	svc, mock, mailer := newResetServiceForTest(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByEmailQuery)).
		WithArgs("a@b.com").
		WillReturnRows(userRow())
	mock.ExpectBegin()
	// Issuing a new token retires all outstanding ones first.
	mock.ExpectExec(regexp.QuoteMeta(invalidateResetsQuery)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(insertResetQuery)).
		WithArgs(7, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectCommit()

	err := svc.RequestReset("a@b.com")

	assert.NoError(t, err)
	assert.Equal(t, "a@b.com", mailer.email)
	assert.Len(t, mailer.token, 64, "plaintext token should be delivered out-of-band")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestPasswordResetService_RequestReset_UnknownEmail verifies the
// enumeration defense: unknown emails get a success-shaped no-op.
func TestPasswordResetService_RequestReset_UnknownEmail(t *testing.T) {
	svc, mock, mailer := newResetServiceForTest(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByEmailQuery)).
		WithArgs("ghost@b.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "name", "company", "rate", "created_at"}))

	err := svc.RequestReset("ghost@b.com")

	assert.NoError(t, err)
	assert.Empty(t, mailer.token, "no token should be issued for an unknown email")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetService_ConsumeReset(t *testing.T) {
	svc, mock, _ := newResetServiceForTest(t)

	plaintext := "valid-reset-token"
	hash := HashToken(plaintext)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectResetQuery)).
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "used_at"}).
			AddRow(3, 7, hash, time.Now().Add(30*time.Minute), nil))
	mock.ExpectExec(regexp.QuoteMeta(updatePasswordQuery)).
		WithArgs(sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(markResetUsedQuery)).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.ConsumeReset(plaintext, "brandNewPassw0rd")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetService_ConsumeReset_Unknown(t *testing.T) {
	svc, mock, _ := newResetServiceForTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectResetQuery)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "used_at"}))
	mock.ExpectRollback()

	err := svc.ConsumeReset("no-such-token", "brandNewPassw0rd")

	assert.ErrorIs(t, err, common.ErrInvalidResetToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestPasswordResetService_ConsumeReset_AlreadyUsed verifies single-use
// enforcement: a consumed token fails distinctly from an unknown one.
func TestPasswordResetService_ConsumeReset_AlreadyUsed(t *testing.T) {
	svc, mock, _ := newResetServiceForTest(t)

	plaintext := "already-used-token"
	hash := HashToken(plaintext)
	usedAt := time.Now().Add(-time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectResetQuery)).
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "used_at"}).
			AddRow(3, 7, hash, time.Now().Add(30*time.Minute), usedAt))
	mock.ExpectRollback()

	err := svc.ConsumeReset(plaintext, "brandNewPassw0rd")

	assert.ErrorIs(t, err, common.ErrResetTokenUsed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetService_ConsumeReset_Expired(t *testing.T) {
	svc, mock, _ := newResetServiceForTest(t)

	plaintext := "expired-reset-token"
	hash := HashToken(plaintext)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectResetQuery)).
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "used_at"}).
			AddRow(3, 7, hash, time.Now().Add(-time.Second), nil))
	mock.ExpectRollback()

	err := svc.ConsumeReset(plaintext, "brandNewPassw0rd")

	assert.ErrorIs(t, err, common.ErrResetTokenExpired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

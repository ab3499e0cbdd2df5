package common

import (
	"encoding/json"
	"errors"
	"freelance-auth-api/logger"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Sentinel errors for the authentication core. Handlers map these to HTTP
// status codes and public messages; the raw error text never crosses the
// trust boundary.
var (
	// Login failures. Both surface to clients as the same generic message
	// so that unknown-email and wrong-password are indistinguishable.
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrTooManyLoginAttempts = errors.New("too many login attempts")
	ErrEmailTaken           = errors.New("email already registered")

	// Access token failures. All surface uniformly as "access denied".
	ErrTokenExpired     = errors.New("access token expired")
	ErrTokenSignature   = errors.New("access token signature invalid")
	ErrTokenNotYetValid = errors.New("access token not yet valid")
	ErrTokenMalformed   = errors.New("access token malformed")

	// Refresh token failures. The client must re-authenticate via login.
	ErrInvalidRefreshToken = errors.New("refresh token invalid")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	// ErrRefreshTokenReplay means an already-revoked token was presented.
	// It carries the mass-invalidation side effect and is logged as a
	// security event.
	ErrRefreshTokenReplay = errors.New("refresh token reuse detected")

	// Password reset failures.
	ErrInvalidResetToken = errors.New("reset token invalid")
	ErrResetTokenExpired = errors.New("reset token expired")
	ErrResetTokenUsed    = errors.New("reset token already used")
)

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		logger.Log.WithFields(logrus.Fields{
			"status_code":    e.Code,
			"internal_error": e.Err.Error(),
		}).Error(e.Message)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Code)
	json.NewEncoder(w).Encode(e)
}

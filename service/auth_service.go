package service

import (
	"context"
	"database/sql"
	"errors"
	"freelance-auth-api/common"
	"freelance-auth-api/logger"
	"freelance-auth-api/model"
	"freelance-auth-api/repository"
	"time"

	"github.com/lib/pq"
)

// TokenPair is the response of a successful login or refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Role         string    `json:"role,omitempty"`
}

// AuthService is the session facade: every authentication entry point of
// the API goes through it. It orchestrates the password hasher, token
// codec, refresh token manager and login limiter.
type AuthService struct {
	users         repository.IUserRepository
	refreshTokens *RefreshTokenService
	codec         *TokenCodec
	limiter       *LoginLimiter
}

// NewAuthService creates a new AuthService. The limiter may be nil, which
// disables login throttling.
func NewAuthService(users repository.IUserRepository, refreshTokens *RefreshTokenService, codec *TokenCodec, limiter *LoginLimiter) *AuthService {
	return &AuthService{
		users:         users,
		refreshTokens: refreshTokens,
		codec:         codec,
		limiter:       limiter,
	}
}

// Register creates a new user with a hashed password.
func (s *AuthService) Register(req *model.RegisterRequest) (*model.User, error) {
	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:    req.Email,
		Password: hashedPassword,
		Role:     req.Role,
		Name:     req.Name,
		Company:  req.Company,
		Rate:     req.Rate,
	}
	if err := s.users.CreateUser(user); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, common.ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and, on success, returns an access token
// embedding the user snapshot plus a fresh refresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	if s.limiter.TooManyAttempts(ctx, email) {
		return nil, common.ErrTooManyLoginAttempts
	}

	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Unknown emails count against the limiter too, so the login
			// endpoint cannot be used to probe for accounts.
			s.limiter.RecordFailure(ctx, email)
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}

	if !CheckPasswordHash(password, user.Password) {
		s.limiter.RecordFailure(ctx, email)
		return nil, common.ErrInvalidCredentials
	}
	s.limiter.Reset(ctx, email)

	accessToken, expiresAt, err := s.codec.Encode(user)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Failed to sign access token")
		return nil, err
	}
	refreshToken, err := s.refreshTokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("User logged in")
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		Role:         user.Role,
	}, nil
}

// Refresh rotates the presented refresh token and mints a new access token
// from a freshly loaded user record, never from the stale snapshot of the
// previous token.
func (s *AuthService) Refresh(refreshToken string) (*TokenPair, error) {
	newRefreshToken, userID, err := s.refreshTokens.Rotate(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	accessToken, expiresAt, err := s.codec.Encode(user)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Failed to sign access token")
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// Logout revokes the presented refresh token. It always reports success:
// an invalid or already-revoked token must be indistinguishable from a
// live one, and a storage failure is logged rather than surfaced.
func (s *AuthService) Logout(refreshToken string) {
	if err := s.refreshTokens.Revoke(refreshToken); err != nil {
		logger.Log.WithError(err).Error("Failed to revoke refresh token on logout")
	}
}

// Validate decodes and verifies an access token. This is the contract
// every other endpoint uses to authenticate a request; it never touches
// the database.
func (s *AuthService) Validate(accessToken string) (*model.AppClaims, error) {
	return s.codec.Decode(accessToken)
}

// RetryAfter reports how long a throttled login caller should wait.
func (s *AuthService) RetryAfter() time.Duration {
	return s.limiter.RetryAfter()
}

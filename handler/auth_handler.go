package handler

import (
	"encoding/json"
	"errors"
	"freelance-auth-api/common"
	"freelance-auth-api/model"
	"freelance-auth-api/service"
	"net/http"
	"strconv"
)

// AuthHandler exposes the session lifecycle endpoints.
type AuthHandler struct {
	Auth   *service.AuthService
	Resets *service.PasswordResetService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, resets *service.PasswordResetService) *AuthHandler {
	return &AuthHandler{Auth: auth, Resets: resets}
}

// Login godoc
// @Summary      Authenticate with email and password
// @Description  Returns an access token and a refresh token on success.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.LoginRequest true "Credentials"
// @Success      200 {object} service.TokenPair
// @Failure      401 {object} common.AppError
// @Failure      429 {object} common.AppError
// @Router       /login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	pair, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUserNotFound), errors.Is(err, common.ErrInvalidCredentials):
			// Unknown email and wrong password are indistinguishable.
			return common.NewAppError(http.StatusUnauthorized, "Invalid email or password", err)
		case errors.Is(err, common.ErrTooManyLoginAttempts):
			w.Header().Set("Retry-After", strconv.Itoa(int(h.Auth.RetryAfter().Seconds())))
			return common.NewAppError(http.StatusTooManyRequests, "Too many login attempts, try again later", err)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Internal server error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pair)
	return nil
}

// Refresh godoc
// @Summary      Rotate a refresh token
// @Description  Exchanges a live refresh token for a new access/refresh pair. A revoked, expired or unknown token requires a fresh login.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.RefreshRequest true "Refresh token"
// @Success      200 {object} service.TokenPair
// @Failure      401 {object} common.AppError
// @Router       /refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	pair, err := h.Auth.Refresh(req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidRefreshToken),
			errors.Is(err, common.ErrRefreshTokenExpired),
			errors.Is(err, common.ErrRefreshTokenReplay):
			return common.NewAppError(http.StatusUnauthorized, "Invalid refresh token", err)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Internal server error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pair)
	return nil
}

// Logout godoc
// @Summary      Revoke a refresh token
// @Description  Always succeeds, regardless of the token's state.
// @Tags         auth
// @Accept       json
// @Param        request body model.LogoutRequest true "Refresh token"
// @Success      204
// @Router       /logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LogoutRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	h.Auth.Logout(req.RefreshToken)

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// RequestPasswordReset godoc
// @Summary      Request a password reset token
// @Description  Responds with success whether or not the email exists.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.PasswordResetRequest true "Account email"
// @Success      200 {object} map[string]string
// @Router       /password-reset/request [post]
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.PasswordResetRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	if err := h.Resets.RequestReset(req.Email); err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "If the email exists, a reset link has been sent",
	})
	return nil
}

// ResetPassword godoc
// @Summary      Consume a password reset token
// @Description  Sets a new password if the token is valid, unexpired and unused.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.PasswordResetConfirmRequest true "Token and new password"
// @Success      200 {object} map[string]string
// @Failure      400 {object} common.AppError
// @Router       /password-reset/confirm [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.PasswordResetConfirmRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	if err := h.Resets.ConsumeReset(req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidResetToken),
			errors.Is(err, common.ErrResetTokenExpired),
			errors.Is(err, common.ErrResetTokenUsed):
			return common.NewAppError(http.StatusBadRequest, "Invalid or expired reset token", err)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Internal server error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "password updated"})
	return nil
}

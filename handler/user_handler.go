package handler

import (
	"encoding/json"
	"errors"
	"freelance-auth-api/common"
	"freelance-auth-api/model"
	"freelance-auth-api/service"
	"net/http"
)

type UserHandler struct {
	Auth *service.AuthService
}

func NewUserHandler(auth *service.AuthService) *UserHandler {
	return &UserHandler{Auth: auth}
}

// Register godoc
// @Summary      Create a new user account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body model.RegisterRequest true "New account"
// @Success      201 {object} model.User
// @Failure      409 {object} common.AppError
// @Router       /register [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	user, err := h.Auth.Register(&req)
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			return common.NewAppError(http.StatusConflict, "Email is already registered", err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Error creating user", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
	return nil
}

// Me godoc
// @Summary      Return the authenticated user's claims snapshot
// @Description  The snapshot is as of token issuance and may be stale.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} model.AppClaims
// @Failure      401 {object} common.AppError
// @Router       /api/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	claims, ok := r.Context().Value(ClaimsKey).(*model.AppClaims)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid or expired token", nil)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(claims)
	return nil
}

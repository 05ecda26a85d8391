package handlers

import (
	"errors"
	"net/http"

	"rickmorty-api/internal/contextutil"
	"rickmorty-api/internal/service"
)

// AccountHandler handles registration and token endpoints.
type AccountHandler struct {
	accounts service.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// CredentialsRequest is the body of register and token requests.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is a created user.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// RefreshRequest is the body of a token refresh.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// AccessResponse carries a refreshed access token.
type AccessResponse struct {
	Access string `json:"access"`
}

// Register handles POST /user/register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CredentialsRequest
	if err := decodeBody(r, &req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.accounts.Register(ctx, req.Username, req.Password)
	if errors.Is(err, service.ErrConflict) {
		writeError(ctx, w, http.StatusBadRequest, "A user with that username already exists.")
		return
	}
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, UserResponse{ID: user.ID, Username: user.Username})
}

// Token handles POST /token.
func (h *AccountHandler) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CredentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(ctx, w, http.StatusBadRequest, "username and password are required")
		return
	}

	pair, err := h.accounts.Login(ctx, req.Username, req.Password)
	if errors.Is(err, service.ErrUnauthorized) {
		writeError(ctx, w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, pair)
}

// Refresh handles POST /token/refresh.
func (h *AccountHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req RefreshRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Refresh == "" {
		writeError(ctx, w, http.StatusBadRequest, "refresh is required")
		return
	}

	access, err := h.accounts.Refresh(ctx, req.Refresh)
	if errors.Is(err, service.ErrUnauthorized) {
		writeError(ctx, w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, AccessResponse{Access: access})
}

package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/leftoverhq/leftover/internal/auth"
	"github.com/leftoverhq/leftover/internal/model"
	"github.com/leftoverhq/leftover/internal/store"
)

// AuthHandler handles operator sessions. Token lifetimes follow the wall
// clock, since that is what token validation checks them against.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, r, model.Validationf("username and password required"))
		return
	}

	op, err := store.GetOperatorByUsername(r.Context(), h.DB, req.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if op == nil {
		jsonError(w, http.StatusUnauthorized, "unauthenticated", "invalid credentials")
		return
	}

	if !auth.CheckPassword(op.PasswordHash, req.Password) {
		slog.Warn("login failed", "username", req.Username, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "unauthenticated", "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, auth.OperatorSubject(op.Username), model.OperatorRole, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("operator logged in", "operator", op.Username)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token})
}

// Logout handles POST /api/auth/logout by revoking the caller's token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		writeError(w, r, model.Validationf("token cannot be revoked"))
		return
	}

	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time, time.Now()); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("token revoked", "subject", claims.Subject)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	username, ok := strings.CutPrefix(claims.Subject, auth.OperatorSubject(""))
	if !ok {
		writeError(w, r, model.Unauthorized("only operators have passwords"))
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, r, model.Validationf("current and new password required"))
		return
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}

	op, err := store.GetOperatorByUsername(r.Context(), h.DB, username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if op == nil {
		writeError(w, r, model.NotFound("operator"))
		return
	}

	if !auth.CheckPassword(op.PasswordHash, req.CurrentPassword) {
		jsonError(w, http.StatusUnauthorized, "unauthenticated", "current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := store.UpdateOperatorPassword(r.Context(), h.DB, op.ID, hash); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("operator changed own password", "operator", op.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}

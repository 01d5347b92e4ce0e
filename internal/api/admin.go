package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/leftoverhq/leftover/internal/store"
	"github.com/leftoverhq/leftover/internal/sweeper"
)

// AdminHandler handles operator tools and the public impact dashboard.
type AdminHandler struct {
	DB      *sql.DB
	Sweeper *sweeper.Sweeper
}

type verifiedRequest struct {
	Verified bool `json:"verified"`
}

// Sweep handles POST /api/admin/sweep by running the expiry sweep now.
func (h *AdminHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	res, err := h.Sweeper.RunOnce(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("sweep triggered by operator", "operator", GetClaims(r.Context()).Subject)
	jsonResponse(w, http.StatusOK, res)
}

// SetDonorVerified handles PUT /api/admin/donors/{id}/verified.
func (h *AdminHandler) SetDonorVerified(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req verifiedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := store.SetDonorVerified(r.Context(), h.DB, id, req.Verified); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("donor verification changed", "donor", id, "verified", req.Verified)
	donor, err := store.GetDonor(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, donor)
}

// Stats handles GET /api/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	s, err := store.ImpactStats(r.Context(), h.DB, store.DefaultTopCategories)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, s)
}

package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/leftoverhq/leftover/internal/clock"
	"github.com/leftoverhq/leftover/internal/metrics"
	"github.com/leftoverhq/leftover/internal/model"
	"github.com/leftoverhq/leftover/internal/store"
)

// ClaimsHandler handles claim endpoints.
type ClaimsHandler struct {
	DB      *sql.DB
	Clock   clock.Clock
	Metrics *metrics.Metrics
}

// Pickup handles POST /api/claims/{id}/pickup.
func (h *ClaimsHandler) Pickup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := currentUser(r, h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}

	claim, err := store.ConfirmPickup(r.Context(), h.DB, id, user.ID, h.Clock.Now())
	h.Metrics.ObservePickup(err)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("pickup confirmed", "claim", claim.ID, "donation", claim.DonationID)
	jsonResponse(w, http.StatusOK, claim)
}

// ListMine handles GET /api/claims/mine.
func (h *ClaimsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}

	claims, err := store.ListClaimsForUser(r.Context(), h.DB, user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if claims == nil {
		claims = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, claims)
}

package api

import (
	"database/sql"
	"net/http"

	"github.com/leftoverhq/leftover/internal/clock"
	"github.com/leftoverhq/leftover/internal/model"
	"github.com/leftoverhq/leftover/internal/store"
)

// UsersHandler handles the caller's own user record.
type UsersHandler struct {
	DB    *sql.DB
	Clock clock.Clock
}

// EnsureMe handles POST /api/users/me. The first call for a subject creates
// the user from the body; later calls return the stored user unchanged.
func (h *UsersHandler) EnsureMe(w http.ResponseWriter, r *http.Request) {
	var profile model.Profile
	if err := decodeJSON(r, &profile); err != nil {
		writeError(w, r, err)
		return
	}

	subject := GetClaims(r.Context()).Subject
	id, err := store.EnsureUser(r.Context(), h.DB, subject, profile, h.Clock.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// currentUser resolves the token subject to a stored user.
func currentUser(r *http.Request, db *sql.DB) (*model.User, error) {
	user, err := store.GetUserBySubject(r.Context(), db, GetClaims(r.Context()).Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NotFound("user")
	}
	return user, nil
}

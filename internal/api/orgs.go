package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/leftoverhq/leftover/internal/clock"
	"github.com/leftoverhq/leftover/internal/model"
	"github.com/leftoverhq/leftover/internal/store"
)

// OrgsHandler handles donor organizations, receiver profiles and charities.
type OrgsHandler struct {
	DB    *sql.DB
	Clock clock.Clock
}

type addMemberRequest struct {
	Subject string `json:"subject"`
}

type individualRequest struct {
	Allergies string `json:"allergies"`
}

// CreateDonor handles POST /api/donors.
func (h *OrgsHandler) CreateDonor(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var fields model.DonorFields
	if err := decodeJSON(r, &fields); err != nil {
		writeError(w, r, err)
		return
	}

	donor, err := store.CreateDonor(r.Context(), h.DB, user.ID, fields, h.Clock.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("donor created", "id", donor.ID, "name", donor.Name, "owner", user.ID)
	jsonResponse(w, http.StatusCreated, donor)
}

// GetDonor handles GET /api/donors/{id}.
func (h *OrgsHandler) GetDonor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	donor, err := store.GetDonor(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if donor == nil {
		writeError(w, r, model.NotFound("donor"))
		return
	}
	jsonResponse(w, http.StatusOK, donor)
}

// UpdateDonor handles PUT /api/donors/{id}.
func (h *OrgsHandler) UpdateDonor(w http.ResponseWriter, r *http.Request) {
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

	var fields model.DonorFields
	if err := decodeJSON(r, &fields); err != nil {
		writeError(w, r, err)
		return
	}

	donor, err := store.UpdateDonor(r.Context(), h.DB, user.ID, id, fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, donor)
}

// AddDonorMember handles POST /api/donors/{id}/members. The new member is
// named by subject and must already be a user.
func (h *OrgsHandler) AddDonorMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	owner, err := currentUser(r, h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req addMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Subject == "" {
		writeError(w, r, model.Validationf("subject required"))
		return
	}

	member, err := store.GetUserBySubject(r.Context(), h.DB, req.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if member == nil {
		writeError(w, r, model.NotFound("user"))
		return
	}

	if err := store.AddDonorMember(r.Context(), h.DB, owner.ID, id, member.ID); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("donor member added", "donor", id, "user", member.ID)
	jsonResponse(w, http.StatusCreated, model.Membership{OrganizationID: id, UserID: member.ID})
}

// RegisterIndividual handles POST /api/receivers/individual.
func (h *OrgsHandler) RegisterIndividual(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req individualRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	receiver, err := store.RegisterIndividualReceiver(r.Context(), h.DB, user.ID, req.Allergies, h.Clock.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, receiver)
}

// RegisterCharity handles POST /api/receivers/charity.
func (h *OrgsHandler) RegisterCharity(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var fields model.CharityFields
	if err := decodeJSON(r, &fields); err != nil {
		writeError(w, r, err)
		return
	}

	receiver, err := store.RegisterCharityReceiver(r.Context(), h.DB, user.ID, fields, h.Clock.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("charity registered", "charity", *receiver.CharityID, "owner", user.ID)
	jsonResponse(w, http.StatusCreated, receiver)
}

// UpdateCharity handles PUT /api/charities/{id}.
func (h *OrgsHandler) UpdateCharity(w http.ResponseWriter, r *http.Request) {
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

	var fields model.CharityFields
	if err := decodeJSON(r, &fields); err != nil {
		writeError(w, r, err)
		return
	}

	charity, err := store.UpdateCharity(r.Context(), h.DB, user.ID, id, fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, charity)
}

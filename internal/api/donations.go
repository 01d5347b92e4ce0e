package api

import (
	"bytes"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/leftoverhq/leftover/internal/blob"
	"github.com/leftoverhq/leftover/internal/clock"
	"github.com/leftoverhq/leftover/internal/imaging"
	"github.com/leftoverhq/leftover/internal/metrics"
	"github.com/leftoverhq/leftover/internal/model"
	"github.com/leftoverhq/leftover/internal/store"
)

// DonationsHandler handles donation endpoints.
type DonationsHandler struct {
	DB      *sql.DB
	Clock   clock.Clock
	Images  blob.Store
	Metrics *metrics.Metrics
}

type claimRequest struct {
	Amount *int `json:"amount"`
}

type imageResponse struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	ThumbURL string `json:"thumb_url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Create handles POST /api/donations. The caller must be a member of the
// donor the donation is posted for.
func (h *DonationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var n model.NewDonation
	if err := decodeJSON(r, &n); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.requireDonorMember(r, n.DonorID); err != nil {
		writeError(w, r, err)
		return
	}

	d, err := store.CreateDonation(r.Context(), h.DB, n, h.Clock.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("donation created", "id", d.ID, "donor", d.DonorID, "title", d.Title)
	jsonResponse(w, http.StatusCreated, d)
}

// ListAvailable handles GET /api/donations.
func (h *DonationsHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	listings, err := store.ListAvailableDonations(r.Context(), h.DB, h.Images, h.Clock.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if listings == nil {
		listings = []model.DonationListing{}
	}
	jsonResponse(w, http.StatusOK, listings)
}

// ListMine handles GET /api/donations/mine.
func (h *DonationsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	listings, err := store.ListDonationsForOwner(r.Context(), h.DB, h.Images, GetClaims(r.Context()).Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if listings == nil {
		listings = []model.DonationListing{}
	}
	jsonResponse(w, http.StatusOK, listings)
}

// UploadImage handles POST /api/donations/{id}/images with a multipart
// "photo" field. The photo is stored full size plus a thumbnail and its key
// is appended to the donation's images.
func (h *DonationsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	d, err := store.GetDonation(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if d == nil {
		writeError(w, r, model.NotFound("donation"))
		return
	}
	if err := h.requireDonorMember(r, d.DonorID); err != nil {
		writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)
	file, _, err := r.FormFile("photo")
	if err != nil {
		writeError(w, r, model.Validationf("photo file required"))
		return
	}
	defer file.Close()

	photo, err := imaging.Prepare(file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := blob.NewKey(".jpg")
	thumbKey := thumbnailKey(key)
	if err := h.Images.Put(r.Context(), key, bytes.NewReader(photo.Full), imaging.OutputMIME); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Images.Put(r.Context(), thumbKey, bytes.NewReader(photo.Thumb), imaging.OutputMIME); err != nil {
		writeError(w, r, err)
		return
	}
	if err := store.AddDonationImage(r.Context(), h.DB, id, key); err != nil {
		writeError(w, r, err)
		return
	}

	resp := imageResponse{Key: key, Width: photo.Width, Height: photo.Height}
	if resp.URL, err = h.Images.URL(r.Context(), key); err != nil {
		writeError(w, r, err)
		return
	}
	if resp.ThumbURL, err = h.Images.URL(r.Context(), thumbKey); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("donation image uploaded", "donation", id, "key", key, "driver", h.Images.Driver())
	jsonResponse(w, http.StatusCreated, resp)
}

// Claim handles POST /api/donations/{id}/claim. The body is optional.
func (h *DonationsHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req claimRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	subject := GetClaims(r.Context()).Subject
	claim, err := store.ClaimDonation(r.Context(), h.DB, subject, id, req.Amount, h.Clock.Now())
	h.Metrics.ObserveClaim(err)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("donation claimed", "donation", id, "claim", claim.ID, "receiver", claim.ReceiverID)
	jsonResponse(w, http.StatusCreated, claim)
}

func (h *DonationsHandler) requireDonorMember(r *http.Request, donorID int64) error {
	user, err := currentUser(r, h.DB)
	if err != nil {
		return err
	}
	member, err := store.IsDonorMember(r.Context(), h.DB, user.ID, donorID)
	if err != nil {
		return err
	}
	if !member {
		return model.Unauthorized("not a member of this donor")
	}
	return nil
}

// thumbnailKey derives the thumbnail key stored next to a photo key.
func thumbnailKey(key string) string {
	return strings.TrimSuffix(key, ".jpg") + "_thumb.jpg"
}

// ImagesHandler serves blobs kept by the SQLite driver.
type ImagesHandler struct {
	Images blob.Store
}

// Get handles GET /api/images/{key}.
func (h *ImagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	rc, mime, err := h.Images.Get(r.Context(), r.PathValue("key"))
	if errors.Is(err, blob.ErrNotFound) {
		writeError(w, r, model.NotFound("image"))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("writing image", "key", r.PathValue("key"), "error", err)
	}
}

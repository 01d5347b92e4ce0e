package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/leftoverhq/leftover/internal/model"
)

// ImageURLer resolves a stored image key to a displayable URL.
type ImageURLer interface {
	URL(ctx context.Context, key string) (string, error)
}

const donationColumns = `d.id, d.title, d.description, d.category, d.quantity,
	d.pickup_window_start, d.pickup_window_end, d.donor_id, d.status, d.created_at`

const listingColumns = donationColumns + `,
	dn.id, dn.name, dn.address, dn.latitude, dn.longitude`

// CreateDonation stores a new donation. The status is stored as given.
func CreateDonation(ctx context.Context, db *sql.DB, n model.NewDonation, now time.Time) (*model.Donation, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO donations (title, description, category, quantity,
		        pickup_window_start, pickup_window_end, donor_id, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.Title, n.Description, n.Category, int(n.Quantity),
		nullString(n.PickupWindowStart), nullString(n.PickupWindowEnd),
		n.DonorID, string(n.Status), now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating donation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting donation id: %w", err)
	}

	for i, key := range n.Images {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO donation_images (donation_id, position, blob_key) VALUES (?, ?, ?)`,
			id, i, key,
		); err != nil {
			return nil, fmt.Errorf("adding donation image: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing donation: %w", err)
	}

	return GetDonation(ctx, db, id)
}

// GetDonation returns a donation by ID, with its image keys.
func GetDonation(ctx context.Context, db *sql.DB, id int64) (*model.Donation, error) {
	d, err := getDonation(ctx, db, id)
	if err != nil || d == nil {
		return d, err
	}
	images, err := loadImages(ctx, db, []int64{id})
	if err != nil {
		return nil, err
	}
	d.Images = images[id]
	return d, nil
}

func getDonation(ctx context.Context, q querier, id int64) (*model.Donation, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+donationColumns+` FROM donations d WHERE d.id = ?`, id,
	)
	d, err := scanDonation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting donation: %w", err)
	}
	return d, nil
}

// AddDonationImage appends an image key to the donation's image list.
func AddDonationImage(ctx context.Context, db *sql.DB, donationID int64, key string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO donation_images (donation_id, position, blob_key)
		 VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM donation_images WHERE donation_id = ?), ?)`,
		donationID, donationID, key,
	)
	if err != nil {
		return fmt.Errorf("adding donation image: %w", err)
	}
	return nil
}

// ListAvailableDonations returns the donations that can still be claimed:
// status AVAILABLE and a pickup window that has not ended. Donations whose
// end is missing or unparseable are included and sort first; the rest sort
// by end time, then by title.
func ListAvailableDonations(ctx context.Context, db *sql.DB, images ImageURLer, now time.Time) ([]model.DonationListing, error) {
	listings, err := queryListings(ctx, db,
		`WHERE d.status = ?`, string(model.DonationAvailable),
	)
	if err != nil {
		return nil, err
	}

	open := listings[:0]
	for _, l := range listings {
		if !l.ExpiredAt(now) {
			open = append(open, l)
		}
	}

	sort.SliceStable(open, func(i, j int) bool {
		ei, ej := pickupSortKey(&open[i].Donation), pickupSortKey(&open[j].Donation)
		if !ei.Equal(ej) {
			return ei.Before(ej)
		}
		return open[i].Title < open[j].Title
	})

	if err := resolveImageURLs(ctx, images, open); err != nil {
		return nil, err
	}
	return open, nil
}

// ListDonationsForOwner returns the donations of every donor the subject's
// user belongs to, newest first. Unknown subjects and users without donor
// memberships get an empty list.
func ListDonationsForOwner(ctx context.Context, db *sql.DB, images ImageURLer, subject string) ([]model.DonationListing, error) {
	user, err := GetUserBySubject(ctx, db, subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	donorIDs, err := ListDonorIDsForUser(ctx, db, user.ID)
	if err != nil {
		return nil, err
	}
	if len(donorIDs) == 0 {
		return nil, nil
	}

	in, args := inClause(donorIDs)
	listings, err := queryListings(ctx, db, `WHERE d.donor_id IN `+in, args...)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(listings, func(i, j int) bool {
		if !listings[i].CreatedAt.Equal(listings[j].CreatedAt) {
			return listings[i].CreatedAt.After(listings[j].CreatedAt)
		}
		return listings[i].ID > listings[j].ID
	})

	if err := resolveImageURLs(ctx, images, listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// queryListings loads donations joined with their donor and image keys.
func queryListings(ctx context.Context, q querier, where string, args ...any) ([]model.DonationListing, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+listingColumns+`
		 FROM donations d
		 LEFT JOIN donors dn ON dn.id = d.donor_id
		 `+where+`
		 ORDER BY d.id`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing donations: %w", err)
	}
	defer rows.Close()

	var listings []model.DonationListing
	for rows.Next() {
		var l model.DonationListing
		var start, end sql.NullString
		var status string
		var donorID sql.NullInt64
		var donorName, donorAddress sql.NullString
		var lat, lng *float64
		if err := rows.Scan(&l.ID, &l.Title, &l.Description, &l.Category, &l.Quantity,
			&start, &end, &l.DonorID, &status, &l.CreatedAt,
			&donorID, &donorName, &donorAddress, &lat, &lng); err != nil {
			return nil, fmt.Errorf("scanning donation: %w", err)
		}
		l.PickupWindowStart = start.String
		l.PickupWindowEnd = end.String
		l.Status = model.DonationStatus(status)
		if donorID.Valid {
			l.Donor = &model.DonorSummary{
				ID:        donorID.Int64,
				Name:      donorName.String,
				Address:   donorAddress.String,
				Latitude:  lat,
				Longitude: lng,
			}
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(listings) == 0 {
		return listings, nil
	}

	ids := make([]int64, len(listings))
	for i := range listings {
		ids[i] = listings[i].ID
	}
	images, err := loadImages(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range listings {
		listings[i].Images = images[listings[i].ID]
	}
	return listings, nil
}

// loadImages returns the ordered image keys of each donation.
func loadImages(ctx context.Context, q querier, donationIDs []int64) (map[int64][]string, error) {
	in, args := inClause(donationIDs)
	rows, err := q.QueryContext(ctx,
		`SELECT donation_id, blob_key FROM donation_images
		 WHERE donation_id IN `+in+`
		 ORDER BY donation_id, position`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing donation images: %w", err)
	}
	defer rows.Close()

	images := make(map[int64][]string)
	for rows.Next() {
		var id int64
		var key string
		if err := rows.Scan(&id, &key); err != nil {
			return nil, fmt.Errorf("scanning donation image: %w", err)
		}
		images[id] = append(images[id], key)
	}
	return images, rows.Err()
}

// resolveImageURLs sets ImageURL from the first image of each listing.
func resolveImageURLs(ctx context.Context, images ImageURLer, listings []model.DonationListing) error {
	if images == nil {
		return nil
	}
	for i := range listings {
		if len(listings[i].Images) == 0 {
			continue
		}
		u, err := images.URL(ctx, listings[i].Images[0])
		if err != nil {
			return fmt.Errorf("resolving image url: %w", err)
		}
		listings[i].ImageURL = u
	}
	return nil
}

// pickupSortKey is the end of the pickup window, or the zero time when the
// end is missing or malformed.
func pickupSortKey(d *model.Donation) time.Time {
	end, ok := d.PickupEnd()
	if !ok {
		return time.Time{}
	}
	return end
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDonation(row rowScanner) (*model.Donation, error) {
	d := &model.Donation{}
	var start, end sql.NullString
	var status string
	if err := row.Scan(&d.ID, &d.Title, &d.Description, &d.Category, &d.Quantity,
		&start, &end, &d.DonorID, &status, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.PickupWindowStart = start.String
	d.PickupWindowEnd = end.String
	d.Status = model.DonationStatus(status)
	return d, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

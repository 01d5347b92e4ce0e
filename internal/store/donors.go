package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/leftoverhq/leftover/internal/model"
)

// CreateDonor creates a donor organization with the creating user as owner.
func CreateDonor(ctx context.Context, db *sql.DB, ownerUserID int64, fields model.DonorFields, now time.Time) (*model.Donor, error) {
	if fields.Name == "" {
		return nil, model.Validationf("name required")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO donors (name, email, phone, address, latitude, longitude, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fields.Name, fields.Email, fields.Phone, fields.Address, fields.Latitude, fields.Longitude, now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating donor: %w", err)
	}
	donorID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting donor id: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO donor_members (donor_id, user_id, is_owner) VALUES (?, ?, 1)`,
		donorID, ownerUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("adding donor owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing donor: %w", err)
	}

	return GetDonor(ctx, db, donorID)
}

// GetDonor returns a donor by ID.
func GetDonor(ctx context.Context, db *sql.DB, id int64) (*model.Donor, error) {
	d := &model.Donor{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, address, latitude, longitude, verified, created_at
		 FROM donors WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.Address, &d.Latitude, &d.Longitude, &d.Verified, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting donor: %w", err)
	}
	return d, nil
}

// UpdateDonor updates a donor's profile. Only the owner may edit it.
func UpdateDonor(ctx context.Context, db *sql.DB, userID, donorID int64, fields model.DonorFields) (*model.Donor, error) {
	if fields.Name == "" {
		return nil, model.Validationf("name required")
	}
	if err := requireDonorOwner(ctx, db, userID, donorID); err != nil {
		return nil, err
	}

	_, err := db.ExecContext(ctx,
		`UPDATE donors SET name = ?, email = ?, phone = ?, address = ?, latitude = ?, longitude = ?
		 WHERE id = ?`,
		fields.Name, fields.Email, fields.Phone, fields.Address, fields.Latitude, fields.Longitude, donorID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating donor: %w", err)
	}
	return GetDonor(ctx, db, donorID)
}

// AddDonorMember lets another user act for the donor. Only the owner may
// add members; adding an existing member is a no-op.
func AddDonorMember(ctx context.Context, db *sql.DB, ownerUserID, donorID, memberUserID int64) error {
	if err := requireDonorOwner(ctx, db, ownerUserID, donorID); err != nil {
		return err
	}

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO donor_members (donor_id, user_id, is_owner) VALUES (?, ?, 0)`,
		donorID, memberUserID,
	)
	if err != nil {
		return fmt.Errorf("adding donor member: %w", err)
	}
	return nil
}

// IsDonorMember reports whether the user may act on behalf of the donor.
func IsDonorMember(ctx context.Context, db *sql.DB, userID, donorID int64) (bool, error) {
	member, _, err := donorMembership(ctx, db, userID, donorID)
	return member, err
}

// ListDonorIDsForUser returns every donor the user is a member of.
func ListDonorIDsForUser(ctx context.Context, db *sql.DB, userID int64) ([]int64, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT donor_id FROM donor_members WHERE user_id = ? ORDER BY donor_id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing donor memberships: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning donor membership: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetDonorVerified sets the donor's verified flag.
func SetDonorVerified(ctx context.Context, db *sql.DB, donorID int64, verified bool) error {
	result, err := db.ExecContext(ctx,
		`UPDATE donors SET verified = ? WHERE id = ?`, verified, donorID,
	)
	if err != nil {
		return fmt.Errorf("setting donor verified: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return model.NotFound("donor")
	}
	return nil
}

func donorMembership(ctx context.Context, q querier, userID, donorID int64) (member, owner bool, err error) {
	err = q.QueryRowContext(ctx,
		`SELECT is_owner FROM donor_members WHERE donor_id = ? AND user_id = ?`, donorID, userID,
	).Scan(&owner)
	if err == sql.ErrNoRows {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("checking donor membership: %w", err)
	}
	return true, owner, nil
}

func requireDonorOwner(ctx context.Context, db *sql.DB, userID, donorID int64) error {
	donor, err := GetDonor(ctx, db, donorID)
	if err != nil {
		return err
	}
	if donor == nil {
		return model.NotFound("donor")
	}
	_, owner, err := donorMembership(ctx, db, userID, donorID)
	if err != nil {
		return err
	}
	if !owner {
		return model.Unauthorized("only the donor's owner can do that")
	}
	return nil
}

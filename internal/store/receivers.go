package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/leftoverhq/leftover/internal/model"
)

// RegisterIndividualReceiver registers the user as an individual receiver.
func RegisterIndividualReceiver(ctx context.Context, db *sql.DB, userID int64, allergies string, now time.Time) (*model.Receiver, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireNoReceiver(ctx, tx, userID); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO receivers (user_id, kind, allergies, created_at) VALUES (?, ?, ?, ?)`,
		userID, string(model.ReceiverIndividual), allergies, now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating receiver: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing receiver: %w", err)
	}
	return GetReceiverByUser(ctx, db, userID)
}

// RegisterCharityReceiver creates a charity owned by the user and registers
// the user as its receiver.
func RegisterCharityReceiver(ctx context.Context, db *sql.DB, userID int64, fields model.CharityFields, now time.Time) (*model.Receiver, error) {
	if fields.Name == "" {
		return nil, model.Validationf("name required")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireNoReceiver(ctx, tx, userID); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO charities (name, email, phone, address, registration_number, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		fields.Name, fields.Email, fields.Phone, fields.Address, fields.RegistrationNumber, now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating charity: %w", err)
	}
	charityID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting charity id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO charity_members (charity_id, user_id, is_owner) VALUES (?, ?, 1)`,
		charityID, userID,
	); err != nil {
		return nil, fmt.Errorf("adding charity owner: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO receivers (user_id, kind, charity_id, created_at) VALUES (?, ?, ?, ?)`,
		userID, string(model.ReceiverCharity), charityID, now.UTC(),
	); err != nil {
		return nil, fmt.Errorf("creating receiver: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing charity receiver: %w", err)
	}
	return GetReceiverByUser(ctx, db, userID)
}

// GetReceiverByUser returns the user's receiver profile.
func GetReceiverByUser(ctx context.Context, db *sql.DB, userID int64) (*model.Receiver, error) {
	return getReceiverByUser(ctx, db, userID)
}

func getReceiverByUser(ctx context.Context, q querier, userID int64) (*model.Receiver, error) {
	r := &model.Receiver{}
	var kind string
	err := q.QueryRowContext(ctx,
		`SELECT id, user_id, kind, charity_id, allergies, created_at
		 FROM receivers WHERE user_id = ?`, userID,
	).Scan(&r.ID, &r.UserID, &kind, &r.CharityID, &r.Allergies, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting receiver: %w", err)
	}
	r.Kind = model.ReceiverKind(kind)
	return r, nil
}

// GetCharity returns a charity by ID.
func GetCharity(ctx context.Context, db *sql.DB, id int64) (*model.Charity, error) {
	c := &model.Charity{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, address, registration_number, created_at
		 FROM charities WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.RegistrationNumber, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting charity: %w", err)
	}
	return c, nil
}

// UpdateCharity updates a charity's profile. Only the owner may edit it.
func UpdateCharity(ctx context.Context, db *sql.DB, userID, charityID int64, fields model.CharityFields) (*model.Charity, error) {
	if fields.Name == "" {
		return nil, model.Validationf("name required")
	}

	charity, err := GetCharity(ctx, db, charityID)
	if err != nil {
		return nil, err
	}
	if charity == nil {
		return nil, model.NotFound("charity")
	}

	var owner bool
	err = db.QueryRowContext(ctx,
		`SELECT is_owner FROM charity_members WHERE charity_id = ? AND user_id = ?`, charityID, userID,
	).Scan(&owner)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("checking charity membership: %w", err)
	}
	if !owner {
		return nil, model.Unauthorized("only the charity's owner can do that")
	}

	_, err = db.ExecContext(ctx,
		`UPDATE charities SET name = ?, email = ?, phone = ?, address = ?, registration_number = ?
		 WHERE id = ?`,
		fields.Name, fields.Email, fields.Phone, fields.Address, fields.RegistrationNumber, charityID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating charity: %w", err)
	}
	return GetCharity(ctx, db, charityID)
}

func requireNoReceiver(ctx context.Context, q querier, userID int64) error {
	existing, err := getReceiverByUser(ctx, q, userID)
	if err != nil {
		return err
	}
	if existing != nil {
		return model.InvalidState("user is already registered as a receiver")
	}
	return nil
}

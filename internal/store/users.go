package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/leftoverhq/leftover/internal/model"
)

// EnsureUser returns the id of the user with the given identity-provider
// subject, creating the user on first sight. Profile fields of an existing
// user are left untouched.
func EnsureUser(ctx context.Context, db *sql.DB, subject string, profile model.Profile, now time.Time) (int64, error) {
	if subject == "" {
		return 0, model.Validationf("subject required")
	}

	existing, err := GetUserBySubject(ctx, db, subject)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	if !profile.Role.Valid() {
		return 0, model.Validationf("role must be %q or %q", model.RoleDonor, model.RoleReceiver)
	}

	// A concurrent first call may insert between the lookup and here; the
	// conflict clause keeps exactly one row per subject.
	_, err = db.ExecContext(ctx,
		`INSERT INTO users (subject, first_name, last_name, phone, role, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (subject) DO NOTHING`,
		subject, profile.FirstName, profile.LastName, profile.Phone, string(profile.Role), now.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("creating user: %w", err)
	}

	var id int64
	if err := db.QueryRowContext(ctx, `SELECT id FROM users WHERE subject = ?`, subject).Scan(&id); err != nil {
		return 0, fmt.Errorf("getting user id: %w", err)
	}
	return id, nil
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	return getUser(ctx, db, `WHERE id = ?`, id)
}

// GetUserBySubject returns a user by identity-provider subject.
func GetUserBySubject(ctx context.Context, db *sql.DB, subject string) (*model.User, error) {
	return getUser(ctx, db, `WHERE subject = ?`, subject)
}

func getUser(ctx context.Context, q querier, where string, arg any) (*model.User, error) {
	u := &model.User{}
	var role string
	err := q.QueryRowContext(ctx,
		`SELECT id, subject, first_name, last_name, phone, role, created_at
		 FROM users `+where, arg,
	).Scan(&u.ID, &u.Subject, &u.FirstName, &u.LastName, &u.Phone, &role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	u.Role = model.Role(role)
	return u, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leftoverhq/leftover/internal/model"
)

// CreateOperator creates a staff account.
func CreateOperator(ctx context.Context, db *sql.DB, username, passwordHash string) (*model.Operator, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO operators (username, password_hash) VALUES (?, ?)`,
		username, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("creating operator: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting operator id: %w", err)
	}

	o := &model.Operator{}
	err = db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM operators WHERE id = ?`, id,
	).Scan(&o.ID, &o.Username, &o.PasswordHash, &o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting operator: %w", err)
	}
	return o, nil
}

// GetOperatorByUsername returns an operator by username.
func GetOperatorByUsername(ctx context.Context, db *sql.DB, username string) (*model.Operator, error) {
	o := &model.Operator{}
	err := db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM operators WHERE username = ?`, username,
	).Scan(&o.ID, &o.Username, &o.PasswordHash, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting operator by username: %w", err)
	}
	return o, nil
}

// UpdateOperatorPassword updates an operator's password hash.
func UpdateOperatorPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE operators SET password_hash = ? WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating operator password: %w", err)
	}
	return nil
}

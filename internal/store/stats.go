package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leftoverhq/leftover/internal/model"
)

// DefaultTopCategories is the number of categories reported in impact stats.
const DefaultTopCategories = 5

// ImpactStats folds all donations, claims, donors and receivers into the
// dashboard summary.
func ImpactStats(ctx context.Context, db *sql.DB, topCategories int) (*model.Stats, error) {
	s := &model.Stats{
		DonationsByStatus: make(map[model.DonationStatus]int),
		ClaimsByStatus:    make(map[model.ClaimStatus]int),
		TopCategories:     []model.CategoryCount{},
	}

	if err := donationStats(ctx, db, s); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT status, COUNT(*) FROM claims GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting claims: %w", err)
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning claim counts: %w", err)
		}
		s.ClaimsByStatus[model.ClaimStatus(status)] = n
		s.Claims += n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(verified), 0) FROM donors`,
	).Scan(&s.Donors, &s.VerifiedDonors)
	if err != nil {
		return nil, fmt.Errorf("counting donors: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(kind = 'charity'), 0) FROM receivers`,
	).Scan(&s.Receivers, &s.Charities)
	if err != nil {
		return nil, fmt.Errorf("counting receivers: %w", err)
	}

	if topCategories <= 0 {
		topCategories = DefaultTopCategories
	}
	rows, err = db.QueryContext(ctx,
		`SELECT category, COUNT(*) AS n FROM donations
		 WHERE category != ''
		 GROUP BY category
		 ORDER BY n DESC, category
		 LIMIT ?`, topCategories,
	)
	if err != nil {
		return nil, fmt.Errorf("counting categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c model.CategoryCount
		if err := rows.Scan(&c.Category, &c.Donations); err != nil {
			return nil, fmt.Errorf("scanning category counts: %w", err)
		}
		s.TopCategories = append(s.TopCategories, c)
	}
	return s, rows.Err()
}

func donationStats(ctx context.Context, db *sql.DB, s *model.Stats) error {
	rows, err := db.QueryContext(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(quantity), 0) FROM donations GROUP BY status`,
	)
	if err != nil {
		return fmt.Errorf("counting donations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n, portions int
		if err := rows.Scan(&status, &n, &portions); err != nil {
			return fmt.Errorf("scanning donation counts: %w", err)
		}
		ds := model.DonationStatus(status)
		s.DonationsByStatus[ds] = n
		s.Donations += n
		s.Portions += portions
		if ds == model.DonationPickedUp {
			s.PortionsPickedUp += portions
		}
	}
	return rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/leftoverhq/leftover/internal/model"
)

// SweepExpired moves every AVAILABLE or CLAIMED donation whose pickup window
// ended before now to EXPIRED, then times out the pending claims of expired
// donations. Donations without a parseable end are skipped. Running it again
// changes nothing.
//
// Each update only applies while the donation is still AVAILABLE or CLAIMED,
// so a pickup committed after the scan is never overwritten.
func SweepExpired(ctx context.Context, db *sql.DB, now time.Time) (*model.SweepResult, error) {
	candidates, err := expiredCandidates(ctx, db, now)
	if err != nil {
		return nil, err
	}

	result := &model.SweepResult{UpdatedAt: now.UTC()}

	for _, id := range candidates {
		res, err := db.ExecContext(ctx,
			`UPDATE donations SET status = ? WHERE id = ? AND status IN (?, ?)`,
			string(model.DonationExpired), id,
			string(model.DonationAvailable), string(model.DonationClaimed),
		)
		if err != nil {
			return nil, fmt.Errorf("expiring donation %d: %w", id, err)
		}
		n, _ := res.RowsAffected()
		result.DonationsExpired += int(n)
	}

	res, err := db.ExecContext(ctx,
		`UPDATE claims SET status = ?, updated_at = ?
		 WHERE status = ?
		   AND donation_id IN (SELECT id FROM donations WHERE status = ?)`,
		string(model.ClaimTimesUp), now.UTC(),
		string(model.ClaimPending), string(model.DonationExpired),
	)
	if err != nil {
		return nil, fmt.Errorf("timing out claims: %w", err)
	}
	n, _ := res.RowsAffected()
	result.ClaimsTimedOut = int(n)

	return result, nil
}

// expiredCandidates scans every donation and returns those that may still
// expire and whose pickup window has ended.
func expiredCandidates(ctx context.Context, db *sql.DB, now time.Time) ([]int64, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+donationColumns+` FROM donations d ORDER BY d.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning donations: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning donation: %w", err)
		}
		if sweepable(d.Status) && d.ExpiredAt(now) {
			ids = append(ids, d.ID)
		}
	}
	return ids, rows.Err()
}

// sweepable reports whether the sweep may expire a donation in status s.
func sweepable(s model.DonationStatus) bool {
	return s.CanTransitionTo(model.DonationExpired)
}

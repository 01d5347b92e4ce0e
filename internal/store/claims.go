package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/leftoverhq/leftover/internal/model"
)

const claimColumns = `c.id, c.donation_id, c.receiver_id, c.amount, c.status, c.created_at, c.updated_at,
	COALESCE(d.title, '')`

// ClaimDonation reserves an available donation for the subject's receiver
// profile. amount defaults to one portion when nil.
//
// The checks run in this order, each failing with its own error: user,
// receiver profile, donation (NotFound), status AVAILABLE (InvalidState),
// pickup window still open (Expired). The claim insert and the donation's
// move to CLAIMED commit together.
func ClaimDonation(ctx context.Context, db *sql.DB, subject string, donationID int64, amount *int, now time.Time) (*model.Claim, error) {
	user, err := GetUserBySubject(ctx, db, subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NotFound("user")
	}

	receiver, err := GetReceiverByUser(ctx, db, user.ID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, model.NotFound("receiver")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Take the database write lock before reading the donation, so two
	// claims on the same donation serialize and the second sees CLAIMED.
	if _, err := tx.ExecContext(ctx,
		`UPDATE donations SET status = status WHERE id = ?`, donationID,
	); err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}

	donation, err := getDonation(ctx, tx, donationID)
	if err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, model.NotFound("donation")
	}
	if donation.Status != model.DonationAvailable {
		return nil, model.InvalidState("donation is not available")
	}
	if donation.ExpiredAt(now) {
		return nil, model.Expired("donation expired")
	}

	claimed := model.DefaultClaimAmount
	if amount != nil {
		if *amount < 1 {
			return nil, model.Validationf("amount must be positive")
		}
		claimed = *amount
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE donations SET status = ? WHERE id = ? AND status = ?`,
		string(model.DonationClaimed), donationID, string(model.DonationAvailable),
	)
	if err != nil {
		return nil, fmt.Errorf("claiming donation: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, model.InvalidState("donation is not available")
	}

	result, err = tx.ExecContext(ctx,
		`INSERT INTO claims (donation_id, receiver_id, amount, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		donationID, receiver.ID, claimed, string(model.ClaimPending), now.UTC(), now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("recording claim: %w", err)
	}
	claimID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting claim id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}

	return GetClaim(ctx, db, claimID)
}

// ConfirmPickup marks the claim and its donation as picked up. Only the
// receiver who made the claim may confirm it. Confirming twice is a no-op,
// and a claim whose donation no longer exists is still confirmed.
func ConfirmPickup(ctx context.Context, db *sql.DB, claimID, userID int64, now time.Time) (*model.Claim, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE claims SET status = status WHERE id = ?`, claimID,
	); err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}

	claim, err := getClaim(ctx, tx, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, model.NotFound("claim")
	}

	var receiverUserID int64
	err = tx.QueryRowContext(ctx,
		`SELECT user_id FROM receivers WHERE id = ?`, claim.ReceiverID,
	).Scan(&receiverUserID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("getting claim receiver: %w", err)
	}
	if err == sql.ErrNoRows || receiverUserID != userID {
		return nil, model.Unauthorized("only the receiver who claimed the donation can confirm pickup")
	}

	if claim.Status == model.ClaimTimesUp {
		return nil, model.InvalidState("claim has timed out")
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE claims SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(model.ClaimPickedUp), now.UTC(), claimID, string(model.ClaimPending),
	); err != nil {
		return nil, fmt.Errorf("confirming claim: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE donations SET status = ? WHERE id = ? AND status = ?`,
		string(model.DonationPickedUp), claim.DonationID, string(model.DonationClaimed),
	); err != nil {
		return nil, fmt.Errorf("marking donation picked up: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing pickup: %w", err)
	}

	return GetClaim(ctx, db, claimID)
}

// GetClaim returns a claim by ID.
func GetClaim(ctx context.Context, db *sql.DB, id int64) (*model.Claim, error) {
	return getClaim(ctx, db, id)
}

func getClaim(ctx context.Context, q querier, id int64) (*model.Claim, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+claimColumns+`
		 FROM claims c
		 LEFT JOIN donations d ON d.id = c.donation_id
		 WHERE c.id = ?`, id,
	)
	c, err := scanClaim(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return c, nil
}

// ListClaimsForUser returns the claims made through the user's receiver
// profile, newest first.
func ListClaimsForUser(ctx context.Context, db *sql.DB, userID int64) ([]model.Claim, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+claimColumns+`
		 FROM claims c
		 JOIN receivers r ON r.id = c.receiver_id
		 LEFT JOIN donations d ON d.id = c.donation_id
		 WHERE r.user_id = ?
		 ORDER BY c.created_at DESC, c.id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, *c)
	}
	return claims, rows.Err()
}

func scanClaim(row rowScanner) (*model.Claim, error) {
	c := &model.Claim{}
	var status string
	if err := row.Scan(&c.ID, &c.DonationID, &c.ReceiverID, &c.Amount, &status,
		&c.CreatedAt, &c.UpdatedAt, &c.DonationTitle); err != nil {
		return nil, err
	}
	c.Status = model.ClaimStatus(status)
	return c, nil
}

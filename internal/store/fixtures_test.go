package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/leftoverhq/leftover/internal/model"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// newDonorUser creates a donor user with a donor organization it owns.
func newDonorUser(t *testing.T, database *sql.DB, subject string) (userID, donorID int64) {
	t.Helper()
	ctx := context.Background()

	userID, err := EnsureUser(ctx, database, subject, model.Profile{FirstName: subject, Role: model.RoleDonor}, testNow)
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	donor, err := CreateDonor(ctx, database, userID, model.DonorFields{Name: subject + " Bakery", Address: "Main St 1"}, testNow)
	if err != nil {
		t.Fatalf("CreateDonor: %v", err)
	}
	return userID, donor.ID
}

// newReceiverUser creates a user registered as an individual receiver.
func newReceiverUser(t *testing.T, database *sql.DB, subject string) int64 {
	t.Helper()
	ctx := context.Background()

	userID, err := EnsureUser(ctx, database, subject, model.Profile{FirstName: subject, Role: model.RoleReceiver}, testNow)
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if _, err := RegisterIndividualReceiver(ctx, database, userID, "", testNow); err != nil {
		t.Fatalf("RegisterIndividualReceiver: %v", err)
	}
	return userID
}

// newDonation posts an AVAILABLE donation whose pickup window ends at end.
func newDonation(t *testing.T, database *sql.DB, donorID int64, title, end string) *model.Donation {
	t.Helper()
	d, err := CreateDonation(context.Background(), database, model.NewDonation{
		Title:           title,
		Category:        "bakery",
		Quantity:        4,
		PickupWindowEnd: end,
		DonorID:         donorID,
	}, testNow)
	if err != nil {
		t.Fatalf("CreateDonation: %v", err)
	}
	return d
}

func rfc3339(t time.Time) string {
	return t.Format(time.RFC3339)
}

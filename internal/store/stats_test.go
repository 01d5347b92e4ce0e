package store

import (
	"context"
	"testing"

	"github.com/leftoverhq/leftover/internal/db"
	"github.com/leftoverhq/leftover/internal/model"
)

func TestImpactStats(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, donorID := newDonorUser(t, database, "donor-1")
	newDonorUser(t, database, "donor-2")
	SetDonorVerified(ctx, database, donorID, true)

	receiverUserID := newReceiverUser(t, database, "receiver-1")
	charityUserID, _ := EnsureUser(ctx, database, "charity-1", model.Profile{Role: model.RoleReceiver}, testNow)
	RegisterCharityReceiver(ctx, database, charityUserID, model.CharityFields{Name: "Food Bank"}, testNow)

	for _, n := range []model.NewDonation{
		{Title: "Bread", Category: "bakery", Quantity: 4, DonorID: donorID},
		{Title: "Rolls", Category: "bakery", Quantity: 6, DonorID: donorID},
		{Title: "Soup", Category: "meals", Quantity: 10, DonorID: donorID},
		{Title: "Mystery", Quantity: 1, DonorID: donorID},
	} {
		if _, err := CreateDonation(ctx, database, n, testNow); err != nil {
			t.Fatalf("CreateDonation: %v", err)
		}
	}

	claim, err := ClaimDonation(ctx, database, "receiver-1", 1, nil, testNow)
	if err != nil {
		t.Fatalf("ClaimDonation: %v", err)
	}
	if _, err := ConfirmPickup(ctx, database, claim.ID, receiverUserID, testNow); err != nil {
		t.Fatalf("ConfirmPickup: %v", err)
	}
	if _, err := ClaimDonation(ctx, database, "receiver-1", 3, nil, testNow); err != nil {
		t.Fatalf("ClaimDonation: %v", err)
	}

	s, err := ImpactStats(ctx, database, 1)
	if err != nil {
		t.Fatalf("ImpactStats: %v", err)
	}

	if s.Donations != 4 || s.Portions != 21 || s.PortionsPickedUp != 4 {
		t.Errorf("unexpected donation totals %+v", s)
	}
	if s.DonationsByStatus[model.DonationAvailable] != 2 ||
		s.DonationsByStatus[model.DonationClaimed] != 1 ||
		s.DonationsByStatus[model.DonationPickedUp] != 1 {
		t.Errorf("unexpected donations by status %v", s.DonationsByStatus)
	}
	if s.Claims != 2 || s.ClaimsByStatus[model.ClaimPending] != 1 || s.ClaimsByStatus[model.ClaimPickedUp] != 1 {
		t.Errorf("unexpected claim counts %d %v", s.Claims, s.ClaimsByStatus)
	}
	if s.Donors != 2 || s.VerifiedDonors != 1 {
		t.Errorf("expected 2 donors, 1 verified, got %d, %d", s.Donors, s.VerifiedDonors)
	}
	if s.Receivers != 2 || s.Charities != 1 {
		t.Errorf("expected 2 receivers, 1 charity, got %d, %d", s.Receivers, s.Charities)
	}
	if len(s.TopCategories) != 1 || s.TopCategories[0].Category != "bakery" || s.TopCategories[0].Donations != 2 {
		t.Errorf("unexpected top categories %v", s.TopCategories)
	}
}

func TestImpactStatsEmpty(t *testing.T) {
	database := db.NewTestDB(t)

	s, err := ImpactStats(context.Background(), database, 0)
	if err != nil {
		t.Fatalf("ImpactStats: %v", err)
	}
	if s.Donations != 0 || s.Claims != 0 || s.TopCategories == nil {
		t.Errorf("unexpected empty stats %+v", s)
	}
}

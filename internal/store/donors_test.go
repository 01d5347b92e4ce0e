package store

import (
	"context"
	"errors"
	"testing"

	"github.com/leftoverhq/leftover/internal/db"
	"github.com/leftoverhq/leftover/internal/model"
)

func TestCreateDonor(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	userID, err := EnsureUser(ctx, database, "donor-1", model.Profile{Role: model.RoleDonor}, testNow)
	if err != nil {
		t.Fatal(err)
	}

	lat, lng := 46.05, 14.5
	donor, err := CreateDonor(ctx, database, userID, model.DonorFields{
		Name: "Pekarna", Address: "Trubarjeva 1", Latitude: &lat, Longitude: &lng,
	}, testNow)
	if err != nil {
		t.Fatalf("CreateDonor: %v", err)
	}
	if donor.Name != "Pekarna" || donor.Verified {
		t.Errorf("unexpected donor %+v", donor)
	}
	if donor.Latitude == nil || *donor.Latitude != lat {
		t.Errorf("expected latitude %v, got %v", lat, donor.Latitude)
	}

	member, err := IsDonorMember(ctx, database, userID, donor.ID)
	if err != nil {
		t.Fatalf("IsDonorMember: %v", err)
	}
	if !member {
		t.Error("expected creator to be a member")
	}

	if _, err := CreateDonor(ctx, database, userID, model.DonorFields{}, testNow); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error for empty name, got %v", err)
	}
}

func TestUpdateDonorOwnerOnly(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	ownerID, donorID := newDonorUser(t, database, "donor-1")
	memberID, err := EnsureUser(ctx, database, "donor-2", model.Profile{Role: model.RoleDonor}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if err := AddDonorMember(ctx, database, ownerID, donorID, memberID); err != nil {
		t.Fatalf("AddDonorMember: %v", err)
	}

	if _, err := UpdateDonor(ctx, database, memberID, donorID, model.DonorFields{Name: "Hijacked"}); !errors.Is(err, model.ErrUnauthorized) {
		t.Errorf("expected unauthorized for non-owner member, got %v", err)
	}
	if err := AddDonorMember(ctx, database, memberID, donorID, memberID); !errors.Is(err, model.ErrUnauthorized) {
		t.Errorf("expected unauthorized for member adding members, got %v", err)
	}

	donor, err := UpdateDonor(ctx, database, ownerID, donorID, model.DonorFields{Name: "Renamed"})
	if err != nil {
		t.Fatalf("UpdateDonor: %v", err)
	}
	if donor.Name != "Renamed" {
		t.Errorf("expected Renamed, got %q", donor.Name)
	}

	if _, err := UpdateDonor(ctx, database, ownerID, 9999, model.DonorFields{Name: "X"}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected not found for unknown donor, got %v", err)
	}
}

func TestAddDonorMemberIdempotent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	ownerID, donorID := newDonorUser(t, database, "donor-1")
	memberID, _ := EnsureUser(ctx, database, "donor-2", model.Profile{Role: model.RoleDonor}, testNow)

	for i := 0; i < 2; i++ {
		if err := AddDonorMember(ctx, database, ownerID, donorID, memberID); err != nil {
			t.Fatalf("AddDonorMember: %v", err)
		}
	}

	ids, err := ListDonorIDsForUser(ctx, database, memberID)
	if err != nil {
		t.Fatalf("ListDonorIDsForUser: %v", err)
	}
	if len(ids) != 1 || ids[0] != donorID {
		t.Errorf("expected membership in donor %d, got %v", donorID, ids)
	}

	// Adding the owner again must not demote them.
	if err := AddDonorMember(ctx, database, ownerID, donorID, ownerID); err != nil {
		t.Fatalf("AddDonorMember(owner): %v", err)
	}
	if _, err := UpdateDonor(ctx, database, ownerID, donorID, model.DonorFields{Name: "Still owner"}); err != nil {
		t.Errorf("expected owner to keep ownership, got %v", err)
	}
}

func TestSetDonorVerified(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, donorID := newDonorUser(t, database, "donor-1")

	if err := SetDonorVerified(ctx, database, donorID, true); err != nil {
		t.Fatalf("SetDonorVerified: %v", err)
	}
	donor, _ := GetDonor(ctx, database, donorID)
	if !donor.Verified {
		t.Error("expected donor to be verified")
	}

	if err := SetDonorVerified(ctx, database, 9999, true); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/leftoverhq/leftover/internal/db"
	"github.com/leftoverhq/leftover/internal/model"
)

func TestRegisterIndividualReceiver(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	userID, _ := EnsureUser(ctx, database, "receiver-1", model.Profile{Role: model.RoleReceiver}, testNow)

	r, err := RegisterIndividualReceiver(ctx, database, userID, "peanuts", testNow)
	if err != nil {
		t.Fatalf("RegisterIndividualReceiver: %v", err)
	}
	if r.Kind != model.ReceiverIndividual || r.Allergies != "peanuts" || r.CharityID != nil {
		t.Errorf("unexpected receiver %+v", r)
	}

	if _, err := RegisterIndividualReceiver(ctx, database, userID, "", testNow); !errors.Is(err, model.ErrInvalidState) {
		t.Errorf("expected invalid state for second registration, got %v", err)
	}
}

func TestRegisterCharityReceiver(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	userID, _ := EnsureUser(ctx, database, "charity-1", model.Profile{Role: model.RoleReceiver}, testNow)

	r, err := RegisterCharityReceiver(ctx, database, userID, model.CharityFields{
		Name: "Food Bank", RegistrationNumber: "SI-123",
	}, testNow)
	if err != nil {
		t.Fatalf("RegisterCharityReceiver: %v", err)
	}
	if r.Kind != model.ReceiverCharity || r.CharityID == nil {
		t.Fatalf("unexpected receiver %+v", r)
	}

	charity, err := GetCharity(ctx, database, *r.CharityID)
	if err != nil {
		t.Fatalf("GetCharity: %v", err)
	}
	if charity.Name != "Food Bank" || charity.RegistrationNumber != "SI-123" {
		t.Errorf("unexpected charity %+v", charity)
	}

	if _, err := RegisterIndividualReceiver(ctx, database, userID, "", testNow); !errors.Is(err, model.ErrInvalidState) {
		t.Errorf("expected invalid state for second registration, got %v", err)
	}
	if _, err := RegisterCharityReceiver(ctx, database, userID, model.CharityFields{}, testNow); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error for empty name, got %v", err)
	}
}

func TestUpdateCharityOwnerOnly(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	ownerID, _ := EnsureUser(ctx, database, "charity-1", model.Profile{Role: model.RoleReceiver}, testNow)
	otherID, _ := EnsureUser(ctx, database, "receiver-2", model.Profile{Role: model.RoleReceiver}, testNow)
	r, err := RegisterCharityReceiver(ctx, database, ownerID, model.CharityFields{Name: "Food Bank"}, testNow)
	if err != nil {
		t.Fatalf("RegisterCharityReceiver: %v", err)
	}

	if _, err := UpdateCharity(ctx, database, otherID, *r.CharityID, model.CharityFields{Name: "Mine now"}); !errors.Is(err, model.ErrUnauthorized) {
		t.Errorf("expected unauthorized for non-owner, got %v", err)
	}
	if _, err := UpdateCharity(ctx, database, ownerID, 9999, model.CharityFields{Name: "X"}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected not found for unknown charity, got %v", err)
	}

	charity, err := UpdateCharity(ctx, database, ownerID, *r.CharityID, model.CharityFields{Name: "City Food Bank"})
	if err != nil {
		t.Fatalf("UpdateCharity: %v", err)
	}
	if charity.Name != "City Food Bank" {
		t.Errorf("expected renamed charity, got %q", charity.Name)
	}
}

package store

import (
	"context"
	"testing"

	"github.com/leftoverhq/leftover/internal/db"
)

func TestGetJWTSecret_GeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	secret1, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	secret2, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}
}

func TestSetJWTSecret_Overrides(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := GetJWTSecret(ctx, database); err != nil {
		t.Fatal(err)
	}
	if err := SetJWTSecret(ctx, database, "shared-with-idp"); err != nil {
		t.Fatal(err)
	}

	secret, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret != "shared-with-idp" {
		t.Errorf("expected overridden secret, got %q", secret)
	}
}

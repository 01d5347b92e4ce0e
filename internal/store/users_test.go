package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/leftoverhq/leftover/internal/db"
	"github.com/leftoverhq/leftover/internal/model"
)

func TestEnsureUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	profile := model.Profile{FirstName: "Ana", LastName: "Novak", Phone: "+386 1", Role: model.RoleDonor}
	id, err := EnsureUser(ctx, database, "sub-1", profile, testNow)
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}

	user, err := GetUser(ctx, database, id)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.Subject != "sub-1" || user.FirstName != "Ana" || user.Role != model.RoleDonor {
		t.Errorf("unexpected user %+v", user)
	}
	if !user.CreatedAt.Equal(testNow) {
		t.Errorf("expected created_at %v, got %v", testNow, user.CreatedAt)
	}
}

func TestEnsureUserIdempotent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := EnsureUser(ctx, database, "sub-1", model.Profile{FirstName: "Ana", Role: model.RoleDonor}, testNow)
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	second, err := EnsureUser(ctx, database, "sub-1", model.Profile{FirstName: "Other", Role: model.RoleReceiver}, testNow)
	if err != nil {
		t.Fatalf("second EnsureUser: %v", err)
	}
	if first != second {
		t.Errorf("expected same id, got %d and %d", first, second)
	}

	user, _ := GetUserBySubject(ctx, database, "sub-1")
	if user.FirstName != "Ana" || user.Role != model.RoleDonor {
		t.Errorf("expected stored profile to be kept, got %+v", user)
	}
}

func TestEnsureUserConcurrent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	const n = 8
	ids := make([]int64, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = EnsureUser(ctx, database, "sub-1", model.Profile{Role: model.RoleReceiver}, testNow)
		}(i)
	}
	wg.Wait()

	for i := range ids {
		if errs[i] != nil {
			t.Fatalf("EnsureUser: %v", errs[i])
		}
		if ids[i] != ids[0] {
			t.Errorf("expected one user, got ids %v", ids)
			break
		}
	}

	var count int
	database.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 user row, got %d", count)
	}
}

func TestEnsureUserValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := EnsureUser(ctx, database, "", model.Profile{Role: model.RoleDonor}, testNow); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error for empty subject, got %v", err)
	}
	if _, err := EnsureUser(ctx, database, "sub-1", model.Profile{Role: "admin"}, testNow); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error for unknown role, got %v", err)
	}
}

func TestGetUserBySubjectNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	user, err := GetUserBySubject(context.Background(), database, "missing")
	if err != nil {
		t.Fatalf("GetUserBySubject: %v", err)
	}
	if user != nil {
		t.Error("expected nil for unknown subject")
	}
}

package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDonationTransitions(t *testing.T) {
	tests := []struct {
		from, to DonationStatus
		expected bool
	}{
		{DonationAvailable, DonationClaimed, true},
		{DonationAvailable, DonationExpired, true},
		{DonationAvailable, DonationPickedUp, false},
		{DonationClaimed, DonationPickedUp, true},
		{DonationClaimed, DonationExpired, true},
		{DonationClaimed, DonationAvailable, false},
		{DonationPickedUp, DonationExpired, false},
		{DonationPickedUp, DonationAvailable, false},
		{DonationExpired, DonationAvailable, false},
		{DonationExpired, DonationClaimed, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.expected {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.expected)
		}
	}

	if !DonationPickedUp.Terminal() || !DonationExpired.Terminal() {
		t.Error("PICKEDUP and EXPIRED should be terminal")
	}
	if DonationAvailable.Terminal() || DonationClaimed.Terminal() {
		t.Error("AVAILABLE and CLAIMED should not be terminal")
	}
	if DonationStatus("GONE").Terminal() {
		t.Error("unknown status should not be terminal")
	}
}

func TestDonationStatusUnmarshal(t *testing.T) {
	var d struct {
		Status DonationStatus `json:"status"`
	}
	if err := json.Unmarshal([]byte(`{"status":"CLAIMED"}`), &d); err != nil {
		t.Fatalf("unmarshal CLAIMED: %v", err)
	}
	if d.Status != DonationClaimed {
		t.Errorf("expected CLAIMED, got %q", d.Status)
	}

	err := json.Unmarshal([]byte(`{"status":"available"}`), &d)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for lowercase status, got %v", err)
	}
}

func TestDonationExpiredAt(t *testing.T) {
	created := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		end      string
		expected bool
	}{
		{"past timestamp", "2026-03-10T14:00:00Z", true},
		{"future timestamp", "2026-03-10T16:00:00Z", false},
		{"exactly now", "2026-03-10T15:00:00Z", false},
		{"past clock time", "12:30", true},
		{"future clock time", "18:00", false},
		{"empty", "", false},
		{"malformed", "tomorrow-ish", false},
	}

	for _, tt := range tests {
		d := &Donation{PickupWindowEnd: tt.end, CreatedAt: created}
		if got := d.ExpiredAt(now); got != tt.expected {
			t.Errorf("%s: ExpiredAt = %v, want %v", tt.name, got, tt.expected)
		}
	}
}

func TestNewDonationValidate(t *testing.T) {
	n := &NewDonation{Title: "Bread", DonorID: 1, Quantity: 3}
	if err := n.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if n.Status != DonationAvailable {
		t.Errorf("expected default status AVAILABLE, got %q", n.Status)
	}

	bad := []NewDonation{
		{DonorID: 1},
		{Title: "Bread"},
		{Title: "Bread", DonorID: 1, Quantity: -1},
		{Title: "Bread", DonorID: 1, Status: "GONE"},
	}
	for _, b := range bad {
		if err := b.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("Validate(%+v) = %v, want validation error", b, err)
		}
	}
}

package model

import "time"

// ClaimStatus is the lifecycle state of a claim.
type ClaimStatus string

// Claim statuses.
const (
	ClaimPending  ClaimStatus = "PENDING"
	ClaimPickedUp ClaimStatus = "PICKEDUP"
	ClaimTimesUp  ClaimStatus = "TIMESUP"
)

// Valid reports whether s is a known status.
func (s ClaimStatus) Valid() bool {
	return s == ClaimPending || s == ClaimPickedUp || s == ClaimTimesUp
}

// Terminal reports whether the claim can no longer change.
func (s ClaimStatus) Terminal() bool {
	return s == ClaimPickedUp || s == ClaimTimesUp
}

// DefaultClaimAmount is used when a claim does not name an amount.
const DefaultClaimAmount = 1

// Claim is a receiver's reservation of a donation.
type Claim struct {
	ID         int64       `json:"id"`
	DonationID int64       `json:"donation_id"`
	ReceiverID int64       `json:"receiver_id"`
	Amount     int         `json:"amount"`
	Status     ClaimStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`

	// Joined fields (not always populated).
	DonationTitle string `json:"donation_title,omitempty"`
}

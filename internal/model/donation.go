package model

import "time"

// DonationStatus is the lifecycle state of a donation.
type DonationStatus string

// Donation statuses.
const (
	DonationAvailable DonationStatus = "AVAILABLE"
	DonationClaimed   DonationStatus = "CLAIMED"
	DonationPickedUp  DonationStatus = "PICKEDUP"
	DonationExpired   DonationStatus = "EXPIRED"
)

// donationTransitions lists the statuses each status may move to.
var donationTransitions = map[DonationStatus][]DonationStatus{
	DonationAvailable: {DonationClaimed, DonationExpired},
	DonationClaimed:   {DonationPickedUp, DonationExpired},
}

// Valid reports whether s is a known status.
func (s DonationStatus) Valid() bool {
	switch s {
	case DonationAvailable, DonationClaimed, DonationPickedUp, DonationExpired:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s DonationStatus) Terminal() bool {
	return s.Valid() && len(donationTransitions[s]) == 0
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s DonationStatus) CanTransitionTo(next DonationStatus) bool {
	for _, t := range donationTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// UnmarshalText rejects unknown statuses.
func (s *DonationStatus) UnmarshalText(text []byte) error {
	v := DonationStatus(text)
	if !v.Valid() {
		return Validationf("unknown donation status %q", string(text))
	}
	*s = v
	return nil
}

// Donation is a time-boxed offer of food owned by a donor.
//
// The pickup window bounds are kept exactly as submitted and resolved with
// ParsePickupTime, so malformed values survive storage and are read as
// "no bound".
type Donation struct {
	ID                int64          `json:"id"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Category          string         `json:"category"`
	Quantity          int            `json:"quantity"`
	PickupWindowStart string         `json:"pickup_window_start,omitempty"`
	PickupWindowEnd   string         `json:"pickup_window_end,omitempty"`
	DonorID           int64          `json:"donor_id"`
	Status            DonationStatus `json:"status"`
	Images            []string       `json:"images,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// PickupEnd resolves the end of the pickup window. ok is false when the end
// is absent or cannot be parsed.
func (d *Donation) PickupEnd() (end time.Time, ok bool) {
	return ParsePickupTime(d.PickupWindowEnd, d.CreatedAt)
}

// ExpiredAt reports whether the pickup window ended strictly before now.
// Donations without a parseable end never expire.
func (d *Donation) ExpiredAt(now time.Time) bool {
	end, ok := d.PickupEnd()
	return ok && end.Before(now)
}

// NewDonation holds the fields submitted when a donor posts food.
type NewDonation struct {
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Category          string         `json:"category"`
	Quantity          Quantity       `json:"quantity"`
	PickupWindowStart string         `json:"pickup_window_start"`
	PickupWindowEnd   string         `json:"pickup_window_end"`
	DonorID           int64          `json:"donor_id"`
	Status            DonationStatus `json:"status"`
	Images            []string       `json:"images"`
}

// Validate checks the fields that have no safe default.
func (n *NewDonation) Validate() error {
	if n.Title == "" {
		return Validationf("title required")
	}
	if n.DonorID <= 0 {
		return Validationf("donor_id required")
	}
	if n.Quantity < 0 {
		return Validationf("quantity must not be negative")
	}
	if n.Status == "" {
		n.Status = DonationAvailable
	}
	if !n.Status.Valid() {
		return Validationf("unknown donation status %q", string(n.Status))
	}
	return nil
}

// DonationListing is a donation enriched for display.
type DonationListing struct {
	Donation
	ImageURL string        `json:"imageUrl,omitempty"`
	Donor    *DonorSummary `json:"donor"`
}

package model

import "time"

// Stats is the impact dashboard summary.
type Stats struct {
	Donations         int                    `json:"donations"`
	Portions          int                    `json:"portions"`
	PortionsPickedUp  int                    `json:"portions_picked_up"`
	DonationsByStatus map[DonationStatus]int `json:"donations_by_status"`
	Claims            int                    `json:"claims"`
	ClaimsByStatus    map[ClaimStatus]int    `json:"claims_by_status"`
	Donors            int                    `json:"donors"`
	VerifiedDonors    int                    `json:"verified_donors"`
	Receivers         int                    `json:"receivers"`
	Charities         int                    `json:"charities"`
	TopCategories     []CategoryCount        `json:"top_categories"`
}

// CategoryCount is the number of donations posted in one category.
type CategoryCount struct {
	Category  string `json:"category"`
	Donations int    `json:"donations"`
}

// SweepResult reports one run of the expiry sweep.
type SweepResult struct {
	UpdatedAt        time.Time `json:"updatedAt"`
	DonationsExpired int       `json:"donations_expired"`
	ClaimsTimedOut   int       `json:"claims_timed_out"`
}

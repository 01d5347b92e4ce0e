package model

import "time"

// ReceiverKind tells individual receivers apart from charities.
type ReceiverKind string

// Receiver kinds.
const (
	ReceiverIndividual ReceiverKind = "individual"
	ReceiverCharity    ReceiverKind = "charity"
)

// Receiver links a user to an individual profile or a charity.
type Receiver struct {
	ID        int64        `json:"id"`
	UserID    int64        `json:"user_id"`
	Kind      ReceiverKind `json:"kind"`
	CharityID *int64       `json:"charity_id,omitempty"`
	Allergies string       `json:"allergies,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Charity is a receiving organization.
type Charity struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	Address            string    `json:"address,omitempty"`
	RegistrationNumber string    `json:"registration_number,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// CharityFields are the editable fields of a charity.
type CharityFields struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	Address            string `json:"address"`
	RegistrationNumber string `json:"registration_number"`
}

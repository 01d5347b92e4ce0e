package model

import "time"

// User is a person known to the identity provider. Subject is the
// provider's opaque identifier and never changes once stored.
type User struct {
	ID        int64     `json:"id"`
	Subject   string    `json:"subject"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile holds the display fields supplied when a user is first seen.
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Role      Role   `json:"role"`
}

// Role tags what a user signed up as.
type Role string

// Roles.
const (
	RoleDonor    Role = "donor"
	RoleReceiver Role = "receiver"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleDonor || r == RoleReceiver
}

// Operator is a staff account that can verify donors and run maintenance.
type Operator struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// OperatorRole is the token role granted to operators.
const OperatorRole = "operator"

// MinPasswordLength is the minimum operator password length.
const MinPasswordLength = 8

// ValidatePassword checks an operator password against the length rule.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return Validationf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

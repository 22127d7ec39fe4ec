package domain

import "time"

// User statuses. New registrations keep the store default until an admin
// activates the account; phone-provisioned users start active.
const (
	StatusActive  = "active"
	StatusDefault = "1"
)

// User represents an end user scoped to a company.
type User struct {
	ID            int64
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	PasswordHash  string
	ConfirmOTP    string
	IsConfirmed   bool
	Status        string
	CompanyID     int64
	City          string
	BranchID      int64
	AddressID     int64
	ProfilePic    string
	BusinessName  string
	FullName      string
	FirebaseToken string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Active reports whether the user may authenticate via the phone login flow.
func (u User) Active() bool {
	return u.Status == StatusActive
}

package service

// RegisterInput carries the email/password registration request.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UserViewModel represents public user profile data returned to clients.
type UserViewModel struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// LoginResult bundles session claims with the issued token. Provisioned is
// true when the login implicitly created the user via a company join code.
type LoginResult struct {
	UserID      int64  `json:"id"`
	CompanyID   int64  `json:"company_id"`
	Phone       string `json:"phone"`
	Token       string `json:"token"`
	Provisioned bool   `json:"-"`
}

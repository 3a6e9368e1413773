package models

// User represents a registered account.
// Password holds the bcrypt hash only; it never leaves the server.
type User struct {
	ID       int    `json:"id" db:"id"`
	Email    string `json:"email" db:"email"`
	Password string `json:"-" db:"password"`
	Name     string `json:"name" db:"name"`
	Admin    bool   `json:"is_admin" db:"is_admin"`
}

// IsAdmin reports whether the user may perform administrative actions
// such as deleting cafés.
func (u *User) IsAdmin() bool {
	return u != nil && u.Admin
}

// RegisterRequest is the sign-up form.
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
}

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string
	Password string
}

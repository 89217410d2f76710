package entity

// User is the storefront customer account. Only the fields the reset flow
// needs are mapped here.
type User struct {
	Base
	Name         string `db:"name"`
	Email        string `db:"email"`
	PasswordHash string `db:"password"`
	IsActive     bool   `db:"is_active"`
}

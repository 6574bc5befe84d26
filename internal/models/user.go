package models

import "time"

// User represents a registered account with its virtual cash balance.
// PasswordHash holds a bcrypt hash; the raw password is never stored.
type User struct {
	ID             string    `json:"id" badgerhold:"key"`
	Name           string    `json:"name"`
	Email          string    `json:"email" badgerhold:"unique"`
	PasswordHash   string    `json:"-"`
	VirtualBalance float64   `json:"virtual_balance"`
	CreatedAt      time.Time `json:"created_at"`
	ModifiedAt     time.Time `json:"modified_at"`
}

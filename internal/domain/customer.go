package domain

import (
	"strings"
	"time"
)

// Customer is the signed-in shopper.
type Customer struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username,omitempty"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Address      *Address  `json:"address,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FullName joins first and last name.
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Public returns a copy safe to hand to clients.
func (c Customer) Public() Customer {
	c.PasswordHash = ""
	return c
}

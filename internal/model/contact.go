// Package model defines domain entities for the application.
package model

import "time"

// Contact is a person entry owned by exactly one user. Phone numbers are
// unique per owner, not globally.
type Contact struct {
	ID        int64     `json:"id"`
	Surname   string    `json:"nom"`
	GivenName string    `json:"prenom"`
	Phone     string    `json:"telephone"`
	OwnerID   int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

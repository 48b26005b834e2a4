// Package model defines domain entities for the application.
package model

import "time"

// User is an account that owns contacts. Usernames and emails are unique
// across the system; the password is only ever stored as a bcrypt hash.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — plain values with JSON tags,
// no behaviour beyond what the types themselves provide.
package model

import "time"

// User represents a registered account.
//
// The PasswordHash field is tagged `json:"-"` so it can NEVER appear in an
// API response, no matter which handler serializes the struct. Handlers
// don't need to remember to strip it — the encoder simply doesn't see it.
type User struct {
	ID           string    `json:"id"         db:"id"`
	Email        string    `json:"email"      db:"email"`    // unique, validated at registration
	Username     string    `json:"username"   db:"username"`
	PasswordHash string    `json:"-"          db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Package models holds the durable server-side records.
package models

import "time"

// Role is the coarse authorization tag carried by every account.
// Exactly one role per account; elevated roles are never self-assigned
// through registration.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the durable identity record. ID is assigned by the repository on
// creation and immutable afterwards. Username and Email are globally unique
// among all users, active or not. PasswordHash is never logged or serialized
// into a response.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	PhoneNumber  string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

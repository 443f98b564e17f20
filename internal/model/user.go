package model

import "time"

// Roles a user account can hold.  The role is carried in the JWT and checked
// by the route guard; ADMIN manages users, EDITOR writes documents and
// triggers ingestion, VIEWER only reads.
const (
	RoleAdmin  = "ADMIN"
	RoleEditor = "EDITOR"
	RoleViewer = "VIEWER"
)

// ValidRole reports whether s is one of the known role names.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleEditor || s == RoleViewer
}

// User represents an application user record as stored in the `users` table.
// PasswordHash carries the bcrypt digest and is excluded from JSON so it can
// never leak through a response body.
//
// Fields:
//  ID           – uuid primary key.
//  Email        – unique email address (unique across active and inactive accounts).
//  FirstName    – given name.
//  LastName     – family name.
//  PasswordHash – bcrypt hashed password, never serialized.
//  Role         – one of ADMIN, EDITOR, VIEWER.
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

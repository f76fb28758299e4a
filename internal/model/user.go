package model

import "time"

// Role values stored in users.role and carried in the "role" token claim.
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. Handlers expose a trimmed summary instead of this
// struct so the password hash never leaves the server.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name given at registration.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – RoleUser or RoleAdmin.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

package model

import "time"

// User represents an application user record as stored in the `users`
// table. Accounts are created at registration and are immutable afterwards;
// there is no update or delete endpoint. The password hash is never
// serialized into API responses.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique email address, stored exactly as supplied.
//	PasswordHash – bcrypt hashed password.
//	Name         – display name.
//	CreatedAt    – timestamp of registration.
type User struct {
	ID           uint64    `json:"id"`         // users.id
	Email        string    `json:"email"`      // users.email
	PasswordHash string    `json:"-"`          // users.password_hash
	Name         string    `json:"name"`       // users.name
	CreatedAt    time.Time `json:"created_at"` // users.created_at
}

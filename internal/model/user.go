package model

import "time"

// User represents an account row in the `users` table.  The core never
// creates users or handles their credentials; it reads them to resolve
// callers and flips the administrator flag on promotion or demotion.
//
// Fields:
//  ID        – primary key identifier of the user.
//  Username  – unique handle.
//  Email     – unique email address.
//  IsAdmin   – administrator capability.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type User struct {
    ID        uint64    `json:"id"`         // users.id
    Username  string    `json:"username"`   // users.username
    Email     string    `json:"email"`      // users.email
    IsAdmin   bool      `json:"is_admin"`   // users.is_admin
    CreatedAt time.Time `json:"created_at"` // users.created_at
    UpdatedAt time.Time `json:"updated_at"` // users.updated_at
}

// Caller converts the user into the identity the core authorizes with.
func (u User) Caller() Caller {
    return Caller{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}

package model

import "time"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
)

// User represents a marketplace account as stored in the credential store.
// Only the columns the auth core needs are mapped here; the rest of the
// profile is owned by the out-of-scope CRUD layer.
type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // bcrypt hash, never serialized
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Rate      float64   `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
}

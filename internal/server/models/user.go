package models

import "time"

// Role is the coarse role carried on a user record and in the resolved
// identity. Enforcement is left to downstream handlers.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// User is the persisted account record. HashedPassword never leaves the
// service layer.
type User struct {
	ID             int64     `json:"id"`
	UserName       string    `json:"username"`
	HashedPassword string    `json:"-"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Role           Role      `json:"role"`
	PhoneNumber    string    `json:"phone_num"`
	CreatedAt      time.Time `json:"created_at"`
}

// Identity is the trusted projection of a User produced after a bearer
// token has been validated and the user re-read from storage.
type Identity struct {
	ID        int64  `json:"id"`
	UserName  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
}

func (u *User) Identity() *Identity {
	return &Identity{
		ID:        u.ID,
		UserName:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

// NewUser carries registration input. Password is plaintext and must not be
// logged or stored.
type NewUser struct {
	UserName    string
	Password    string
	FirstName   string
	LastName    string
	Role        Role
	PhoneNumber string
}

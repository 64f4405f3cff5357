package models

import "time"

// User is the stored credential record. PasswordHash is an opaque argon2id
// encoding; it is never serialized and never decoded, only compared.
type User struct {
	ID           string    `json:"-"`
	UserName     string    `json:"-"`
	Email        string    `json:"-"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// PublicUser is the only user shape ever returned to clients.
type PublicUser struct {
	ID        string    `json:"id"`
	UserName  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Public returns the non-secret view of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		UserName:  u.UserName,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

package userservice

import (
	"context"
	"database/sql"
	"time"
)

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Password  Password  `json:"-"`
	BlogIDs   []string  `json:"blogs"`
	CreatedAt time.Time `json:"created_at"`
}

// Password holds only the bcrypt hash of a user's password.
type Password struct {
	hash []byte
}

// Identity is the verified caller extracted from a bearer token.
type Identity struct {
	UserID   string
	Username string
}

// AuthToken is returned on a successful login.
type AuthToken struct {
	Token    string    `json:"token"`
	UserID   string    `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
	Expiry   time.Time `json:"expiry"`
}

// Store persists users. Lookups report absence with ErrNotFound.
type Store interface {
	InsertUser(ctx context.Context, u *User) error
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUsers(ctx context.Context) ([]User, error)
}

type UserService struct {
	store  Store
	tokens *TokenManager
}

type DBModel struct {
	db *sql.DB
}

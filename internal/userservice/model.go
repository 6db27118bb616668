package userservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrNotFound          = errors.New("user not found")
)

func NewUserModel(db *sql.DB) *DBModel {
	return &DBModel{db: db}
}

func (m *DBModel) InsertUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (username, name, password)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := m.db.QueryRowContext(ctx, query, u.Username, u.Name, u.Password.hash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		switch {
		case errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "users_username_key":
			return ErrDuplicateUsername
		default:
			return err
		}
	}

	u.BlogIDs = []string{}

	return nil
}

func (m *DBModel) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT id, username, name, password, blog_ids, created_at
		FROM users
		WHERE username = $1`

	var u User
	err := m.db.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &u.Name, &u.Password.hash, pq.Array(&u.BlogIDs), &u.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

func (m *DBModel) GetUsers(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, username, name, blog_ids, created_at
		FROM users
		ORDER BY created_at, id`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, pq.Array(&u.BlogIDs), &u.CreatedAt); err != nil {
			return nil, err
		}
		if u.BlogIDs == nil {
			u.BlogIDs = []string{}
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sushihentaime/bloglist/internal/userservice"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrUserNotFound   = errors.New("user not found")
)

func NewBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// ForeignKeyError is a helper function to check if the error is a foreign key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}
	return false
}

const selectBlogWithOwner = `
		SELECT b.id, b.title, b.author, b.url, b.likes, b.user_id, b.created_at, u.id, u.username, u.name
		FROM blogs b
		JOIN users u ON b.user_id = u.id`

type scanner interface {
	Scan(dest ...any) error
}

func scanBlog(row scanner) (*Blog, error) {
	var (
		blog  Blog
		owner Owner
	)

	err := row.Scan(&blog.ID, &blog.Title, &blog.Author, &blog.URL, &blog.Likes, &blog.UserID, &blog.CreatedAt, &owner.ID, &owner.Username, &owner.Name)
	if err != nil {
		return nil, err
	}

	blog.User = &owner
	return &blog, nil
}

// FindAll returns every blog joined with its owner, oldest first.
func (m *BlogModel) FindAll(ctx context.Context) ([]Blog, error) {
	query := selectBlogWithOwner + `
		ORDER BY b.created_at, b.id`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []Blog{}
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, *blog)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}

func (m *BlogModel) FindByID(ctx context.Context, id string) (*Blog, error) {
	query := selectBlogWithOwner + `
		WHERE b.id = $1`

	blog, err := scanBlog(m.db.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return blog, nil
}

func (m *BlogModel) Insert(ctx context.Context, blog *Blog) error {
	query := `
		INSERT INTO blogs (title, author, url, likes, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := m.db.QueryRowContext(ctx, query, blog.Title, blog.Author, blog.URL, blog.Likes, blog.UserID).Scan(&blog.ID, &blog.CreatedAt)
	if err != nil {
		switch {
		case ForeignKeyError(err, "blogs_user_id_fkey"):
			return ErrUserNotFound
		default:
			return err
		}
	}

	return nil
}

func (m *BlogModel) UpdateLikes(ctx context.Context, id string, likes int) (*Blog, error) {
	query := `
		WITH b AS (
			UPDATE blogs
			SET likes = $1
			WHERE id = $2
			RETURNING id, title, author, url, likes, user_id, created_at
		)
		SELECT b.id, b.title, b.author, b.url, b.likes, b.user_id, b.created_at, u.id, u.username, u.name
		FROM b
		JOIN users u ON b.user_id = u.id`

	blog, err := scanBlog(m.db.QueryRowContext(ctx, query, likes, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return blog, nil
}

// DeleteByID deletes the blog and unlinks it from its owner in one transaction.
func (m *BlogModel) DeleteByID(ctx context.Context, id string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	var userID string
	err = tx.QueryRowContext(ctx, `DELETE FROM blogs WHERE id = $1 RETURNING user_id`, id).Scan(&userID)
	if err != nil {
		_ = tx.Rollback()
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `UPDATE users SET blog_ids = array_remove(blog_ids, $1::uuid) WHERE id = $2`, id, userID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("could not unlink blog from owner: %w", err)
	}

	return tx.Commit()
}

func (m *BlogModel) FindUserByID(ctx context.Context, id string) (*userservice.User, error) {
	query := `
		SELECT id, username, name, blog_ids, created_at
		FROM users
		WHERE id = $1`

	var u userservice.User
	err := m.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Username, &u.Name, pq.Array(&u.BlogIDs), &u.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrUserNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

// AppendBlogIDToUser appends in a single statement, so concurrent appends for the
// same user serialize on the row lock and none is lost.
func (m *BlogModel) AppendBlogIDToUser(ctx context.Context, userID, blogID string) error {
	query := `
		UPDATE users
		SET blog_ids = CASE
			WHEN $1::uuid = ANY(blog_ids) THEN blog_ids
			ELSE array_append(blog_ids, $1::uuid)
		END
		WHERE id = $2`

	res, err := m.db.ExecContext(ctx, query, blogID, userID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrUserNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

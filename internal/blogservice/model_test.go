package blogservice

import (
	"context"
	"crypto/rand"
	"database/sql"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/bloglist/internal/common"
)

// setupTestUser inserts a user row directly and returns its id.
func setupTestUser(t *testing.T, db *sql.DB, username string) string {
	t.Helper()

	randomBytes := make([]byte, 16)
	_, err := rand.Read(randomBytes)
	require.NoError(t, err)

	query := `
		INSERT INTO users (username, name, password)
		VALUES ($1, $2, $3)
		RETURNING id`

	var id string
	require.NoError(t, db.QueryRow(query, username, "Test User", randomBytes).Scan(&id))

	return id
}

func TestBlogModel(t *testing.T) {
	db := common.TestDB("file://../../migrations", t)
	m := NewBlogModel(db)
	ctx := context.Background()
	userID := setupTestUser(t, db, "root")

	blog := &Blog{Title: "Go Proverbs", Author: "Rob Pike", URL: "https://go-proverbs.github.io", Likes: 5, UserID: userID}
	require.NoError(t, m.Insert(ctx, blog))
	assert.NotEmpty(t, blog.ID)
	assert.False(t, blog.CreatedAt.IsZero())

	require.NoError(t, m.AppendBlogIDToUser(ctx, userID, blog.ID))
	require.NoError(t, m.AppendBlogIDToUser(ctx, userID, blog.ID))

	u, err := m.FindUserByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{blog.ID}, u.BlogIDs)

	found, err := m.FindByID(ctx, blog.ID)
	require.NoError(t, err)
	require.NotNil(t, found.User)
	assert.Equal(t, "root", found.User.Username)

	blogs, err := m.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, blogs, 1)

	updated, err := m.UpdateLikes(ctx, blog.ID, 11)
	require.NoError(t, err)
	assert.Equal(t, 11, updated.Likes)
	assert.Equal(t, blog.Title, updated.Title)

	require.NoError(t, m.DeleteByID(ctx, blog.ID))

	_, err = m.FindByID(ctx, blog.ID)
	assert.Equal(t, ErrRecordNotFound, err)

	u, err = m.FindUserByID(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, u.BlogIDs)
}

func TestBlogModelNotFound(t *testing.T) {
	db := common.TestDB("file://../../migrations", t)
	m := NewBlogModel(db)
	ctx := context.Background()

	err := m.Insert(ctx, &Blog{Title: "Orphan", UserID: uuid.NewString()})
	assert.Equal(t, ErrUserNotFound, err)

	_, err = m.UpdateLikes(ctx, uuid.NewString(), 1)
	assert.Equal(t, ErrRecordNotFound, err)

	assert.Equal(t, ErrRecordNotFound, m.DeleteByID(ctx, uuid.NewString()))

	assert.Equal(t, ErrUserNotFound, m.AppendBlogIDToUser(ctx, uuid.NewString(), uuid.NewString()))

	_, err = m.FindUserByID(ctx, uuid.NewString())
	assert.Equal(t, ErrUserNotFound, err)
}

func TestBlogModelConcurrentAppend(t *testing.T) {
	db := common.TestDB("file://../../migrations", t)
	m := NewBlogModel(db)
	ctx := context.Background()
	userID := setupTestUser(t, db, "root")

	const n = 20
	ids := make([]string, n)
	for i := range ids {
		b := &Blog{Title: "t", UserID: userID}
		require.NoError(t, m.Insert(ctx, b))
		ids[i] = b.ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, m.AppendBlogIDToUser(ctx, userID, id))
		}(id)
	}
	wg.Wait()

	u, err := m.FindUserByID(ctx, userID)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, u.BlogIDs)
}

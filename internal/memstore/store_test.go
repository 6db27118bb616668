package memstore

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/bloglist/internal/blogservice"
	"github.com/sushihentaime/bloglist/internal/userservice"
)

func insertUser(t *testing.T, s *Store, username string) *userservice.User {
	t.Helper()

	u := &userservice.User{Username: username, Name: "Test " + username}
	require.NoError(t, s.InsertUser(context.Background(), u))

	return u
}

func TestInsertUser(t *testing.T) {
	s := New()
	ctx := context.Background()

	u := insertUser(t, s, "root")
	assert.NotEmpty(t, u.ID)
	assert.Empty(t, u.BlogIDs)
	assert.False(t, u.CreatedAt.IsZero())

	err := s.InsertUser(ctx, &userservice.User{Username: "root"})
	assert.ErrorIs(t, err, userservice.ErrDuplicateUsername)

	users, err := s.GetUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, userservice.ErrNotFound)
}

func TestBlogLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := insertUser(t, s, "root")

	blog := &blogservice.Blog{Title: "Go", Author: "Rob", URL: "http://go.dev", Likes: 3, UserID: u.ID}
	require.NoError(t, s.Insert(ctx, blog))
	assert.NotEmpty(t, blog.ID)

	require.NoError(t, s.AppendBlogIDToUser(ctx, u.ID, blog.ID))
	require.NoError(t, s.AppendBlogIDToUser(ctx, u.ID, blog.ID))

	owner, err := s.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{blog.ID}, owner.BlogIDs)

	found, err := s.FindByID(ctx, strings.ToUpper(blog.ID))
	require.NoError(t, err)
	require.NotNil(t, found.User)
	assert.Equal(t, "root", found.User.Username)

	updated, err := s.UpdateLikes(ctx, blog.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Likes)
	assert.Equal(t, "Go", updated.Title)

	require.NoError(t, s.DeleteByID(ctx, blog.ID))

	_, err = s.FindByID(ctx, blog.ID)
	assert.ErrorIs(t, err, blogservice.ErrRecordNotFound)

	owner, err = s.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, owner.BlogIDs)

	assert.ErrorIs(t, s.DeleteByID(ctx, blog.ID), blogservice.ErrRecordNotFound)
}

func TestNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()

	testCases := []struct {
		name string
		fn   func() error
		want error
	}{
		{name: "insert unknown owner", fn: func() error {
			return s.Insert(ctx, &blogservice.Blog{Title: "x", UserID: uuid.NewString()})
		}, want: blogservice.ErrUserNotFound},
		{name: "find malformed id", fn: func() error {
			_, err := s.FindByID(ctx, "abc")
			return err
		}, want: blogservice.ErrRecordNotFound},
		{name: "update unknown", fn: func() error {
			_, err := s.UpdateLikes(ctx, uuid.NewString(), 1)
			return err
		}, want: blogservice.ErrRecordNotFound},
		{name: "append unknown user", fn: func() error {
			return s.AppendBlogIDToUser(ctx, uuid.NewString(), uuid.NewString())
		}, want: blogservice.ErrUserNotFound},
		{name: "find unknown user", fn: func() error {
			_, err := s.FindUserByID(ctx, uuid.NewString())
			return err
		}, want: blogservice.ErrUserNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.fn(), tc.want)
		})
	}
}

func TestConcurrentAppend(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := insertUser(t, s, "root")

	const n = 50
	ids := make([]string, n)
	for i := range ids {
		b := &blogservice.Blog{Title: "t", UserID: u.ID}
		require.NoError(t, s.Insert(ctx, b))
		ids[i] = b.ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, s.AppendBlogIDToUser(ctx, u.ID, id))
		}(id)
	}
	wg.Wait()

	owner, err := s.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, owner.BlogIDs)

	blogs, err := s.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, blogs, n)
	assert.Equal(t, ids[0], blogs[0].ID)
}

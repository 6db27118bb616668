// Package memstore keeps users and blogs in process memory. It satisfies both
// userservice.Store and blogservice.Storage and is meant for development and tests;
// nothing survives a restart.
package memstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sushihentaime/bloglist/internal/blogservice"
	"github.com/sushihentaime/bloglist/internal/userservice"
)

type Store struct {
	mu sync.RWMutex

	users     map[string]userservice.User
	userOrder []string

	blogs     map[string]blogservice.Blog
	blogOrder []string

	clock func() time.Time
}

func New() *Store {
	return &Store{
		users: make(map[string]userservice.User),
		blogs: make(map[string]blogservice.Blog),
		clock: time.Now,
	}
}

func key(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

func copyUser(u userservice.User) userservice.User {
	u.BlogIDs = append([]string{}, u.BlogIDs...)
	return u
}

func (s *Store) InsertUser(ctx context.Context, u *userservice.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username {
			return userservice.ErrDuplicateUsername
		}
	}

	u.ID = uuid.NewString()
	u.CreatedAt = s.clock()
	u.BlogIDs = []string{}

	s.users[u.ID] = copyUser(*u)
	s.userOrder = append(s.userOrder, u.ID)

	return nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*userservice.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			found := copyUser(u)
			return &found, nil
		}
	}

	return nil, userservice.ErrNotFound
}

func (s *Store) GetUsers(ctx context.Context) ([]userservice.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]userservice.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		users = append(users, copyUser(s.users[id]))
	}

	return users, nil
}

// withOwner must be called with the lock held.
func (s *Store) withOwner(b blogservice.Blog) blogservice.Blog {
	if u, ok := s.users[b.UserID]; ok {
		b.User = &blogservice.Owner{ID: u.ID, Username: u.Username, Name: u.Name}
	}
	return b
}

func (s *Store) FindAll(ctx context.Context) ([]blogservice.Blog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blogs := make([]blogservice.Blog, 0, len(s.blogOrder))
	for _, id := range s.blogOrder {
		blogs = append(blogs, s.withOwner(s.blogs[id]))
	}

	return blogs, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*blogservice.Blog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, ok := key(id)
	if !ok {
		return nil, blogservice.ErrRecordNotFound
	}

	b, ok := s.blogs[k]
	if !ok {
		return nil, blogservice.ErrRecordNotFound
	}

	b = s.withOwner(b)
	return &b, nil
}

func (s *Store) Insert(ctx context.Context, blog *blogservice.Blog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, ok := key(blog.UserID)
	if !ok {
		return blogservice.ErrUserNotFound
	}
	if _, ok := s.users[owner]; !ok {
		return blogservice.ErrUserNotFound
	}

	blog.ID = uuid.NewString()
	blog.UserID = owner
	blog.CreatedAt = s.clock()

	stored := *blog
	stored.User = nil
	s.blogs[blog.ID] = stored
	s.blogOrder = append(s.blogOrder, blog.ID)

	return nil
}

func (s *Store) UpdateLikes(ctx context.Context, id string, likes int) (*blogservice.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, ok := key(id)
	if !ok {
		return nil, blogservice.ErrRecordNotFound
	}

	b, ok := s.blogs[k]
	if !ok {
		return nil, blogservice.ErrRecordNotFound
	}

	b.Likes = likes
	s.blogs[k] = b

	b = s.withOwner(b)
	return &b, nil
}

func (s *Store) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, ok := key(id)
	if !ok {
		return blogservice.ErrRecordNotFound
	}

	b, ok := s.blogs[k]
	if !ok {
		return blogservice.ErrRecordNotFound
	}

	delete(s.blogs, k)
	s.blogOrder = slices.DeleteFunc(s.blogOrder, func(v string) bool { return v == k })

	if u, ok := s.users[b.UserID]; ok {
		u.BlogIDs = slices.DeleteFunc(u.BlogIDs, func(v string) bool { return v == k })
		s.users[u.ID] = u
	}

	return nil
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*userservice.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, ok := key(id)
	if !ok {
		return nil, blogservice.ErrUserNotFound
	}

	u, ok := s.users[k]
	if !ok {
		return nil, blogservice.ErrUserNotFound
	}

	found := copyUser(u)
	return &found, nil
}

func (s *Store) AppendBlogIDToUser(ctx context.Context, userID, blogID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, ok := key(userID)
	if !ok {
		return blogservice.ErrUserNotFound
	}

	u, ok := s.users[k]
	if !ok {
		return blogservice.ErrUserNotFound
	}

	if b, ok := key(blogID); ok {
		blogID = b
	}
	if !slices.Contains(u.BlogIDs, blogID) {
		u.BlogIDs = append(u.BlogIDs, blogID)
	}
	s.users[k] = u

	return nil
}

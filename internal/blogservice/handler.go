package blogservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sushihentaime/bloglist/internal/common"
	"github.com/sushihentaime/bloglist/internal/userservice"
)

var (
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("only the creator can delete a blog")
)

// LinkError reports that a blog was stored but could not be appended to its
// owner's blog list. The blog exists and is listed; the link needs reconciling.
type LinkError struct {
	BlogID string
	UserID string
	Err    error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("blog %s created but not linked to user %s: %v", e.BlogID, e.UserID, e.Err)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

// NewBlogService wires the store with its collaborators. mb, metrics and
// logger may be nil.
func NewBlogService(store Storage, cache *common.Cache, mb common.MessageProducer, metrics *common.Metrics, logger *slog.Logger) *BlogService {
	if logger == nil {
		logger = slog.Default()
	}

	return &BlogService{
		store:   store,
		c:       cache,
		mb:      mb,
		metrics: metrics,
		logger:  logger,
		gens:    make(map[string]uint64),
	}
}

// GetBlogs returns every blog with its owner projection. An empty store yields an empty slice.
func (s *BlogService) GetBlogs(ctx context.Context) ([]Blog, error) {
	blogs, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list blogs: %w", err)
	}

	if blogs == nil {
		blogs = []Blog{}
	}

	return blogs, nil
}

// GetBlogByID returns a blog, served from the cache when possible.
func (s *BlogService) GetBlogByID(ctx context.Context, id string) (*Blog, error) {
	if !validID(id) {
		return nil, ErrRecordNotFound
	}

	if s.c == nil {
		return s.store.FindByID(ctx, id)
	}

	key := common.CacheKeyBlog(canonicalID(id))
	if cached, ok := s.c.Get(key); ok {
		blog := cached.(Blog)
		return &blog, nil
	}

	gen := s.generation(key)

	blog, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.fill(key, gen, *blog)

	return blog, nil
}

// CreateBlog stores a blog owned by caller and links it to the caller's blog list.
//
// The two writes are not atomic. When the link fails the blog stays stored, an
// UnlinkedEvent is published for reconciliation and a *LinkError is returned.
func (s *BlogService) CreateBlog(ctx context.Context, caller *userservice.Identity, req *CreateBlogRequest) (*Blog, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}

	if !validID(caller.UserID) {
		return nil, ErrUserNotFound
	}

	user, err := s.store.FindUserByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateURL(v, req.URL)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog := &Blog{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
		Likes:  NormalizeLikes(req.Likes),
		UserID: user.ID,
	}

	if err := s.store.Insert(ctx, blog); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("could not insert blog: %w", err)
	}

	s.metrics.BlogEvent("created")

	if err := s.store.AppendBlogIDToUser(ctx, user.ID, blog.ID); err != nil {
		s.logger.Error("blog created but not linked to owner",
			slog.String("blog_id", blog.ID),
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()))
		s.metrics.BlogEvent("unlinked")
		s.reportUnlinked(ctx, blog.ID, user.ID)

		return nil, &LinkError{BlogID: blog.ID, UserID: user.ID, Err: err}
	}

	blog.User = &Owner{ID: user.ID, Username: user.Username, Name: user.Name}

	return blog, nil
}

func (s *BlogService) reportUnlinked(ctx context.Context, blogID, userID string) {
	if s.mb == nil {
		return
	}

	msg, err := json.Marshal(UnlinkedEvent{BlogID: blogID, UserID: userID})
	if err != nil {
		s.logger.Error("could not encode unlinked event", slog.String("error", err.Error()))
		return
	}

	err = s.mb.Publish(ctx, msg, common.BlogUnlinkedKey, common.BlogExchange)
	if err != nil {
		s.logger.Error("could not publish unlinked event",
			slog.String("blog_id", blogID),
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
	}
}

// UpdateLikes replaces the like count of a blog. It does not require a caller.
// An unknown id is ErrRecordNotFound even when raw is not a valid count.
func (s *BlogService) UpdateLikes(ctx context.Context, id string, raw json.RawMessage) (*Blog, error) {
	if !validID(id) {
		return nil, ErrRecordNotFound
	}

	likes, ok := ParseLikes(raw)
	if !ok {
		if _, err := s.store.FindByID(ctx, id); err != nil {
			return nil, err
		}

		v := common.NewValidator()
		v.AddError("likes", "must be a non-negative integer")
		return nil, v.ValidationError()
	}

	blog, err := s.store.UpdateLikes(ctx, id, likes)
	s.invalidate(id)
	if err != nil {
		return nil, err
	}

	s.metrics.BlogEvent("updated")

	return blog, nil
}

// DeleteBlog removes a blog owned by caller. Existence is checked before the
// caller, so an unknown id is ErrRecordNotFound even without credentials.
func (s *BlogService) DeleteBlog(ctx context.Context, id string, caller *userservice.Identity) error {
	blog, err := s.GetBlogByID(ctx, id)
	if err != nil {
		return err
	}

	if caller == nil {
		return ErrUnauthorized
	}

	if !CanMutate(blog.UserID, caller) {
		return ErrForbidden
	}

	err = s.store.DeleteByID(ctx, id)
	s.invalidate(id)
	if err != nil {
		return err
	}

	s.metrics.BlogEvent("deleted")

	return nil
}

// generation returns the write count of key. A read that started before a
// write must not fill the cache after that write invalidated it.
func (s *BlogService) generation(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.gens[key]
}

func (s *BlogService) fill(key string, gen uint64, blog Blog) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gens[key] != gen {
		return
	}
	s.c.Set(key, blog)
}

func (s *BlogService) invalidate(id string) {
	if s.c == nil {
		return
	}

	key := common.CacheKeyBlog(canonicalID(id))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.gens[key]++
	s.c.Invalidate(key)
}

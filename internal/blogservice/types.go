package blogservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/sushihentaime/bloglist/internal/common"
	"github.com/sushihentaime/bloglist/internal/userservice"
)

type Blog struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  int    `json:"likes"`
	// UserID is the owner and never changes after creation.
	UserID    string    `json:"user_id"`
	User      *Owner    `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Owner is the public projection of a user embedded in blog responses.
type Owner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type CreateBlogRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	// Likes is kept raw so that absent, null, numeric and numeric-string values
	// can all be normalized in one place.
	Likes json.RawMessage `json:"likes"`
	// User and UserID are accepted from clients that echo the owner back but
	// are never read; the owner always comes from the caller's token.
	User   json.RawMessage `json:"user"`
	UserID json.RawMessage `json:"user_id"`
}

// UnlinkedEvent is published when a blog was stored but could not be appended
// to its owner's blog list.
type UnlinkedEvent struct {
	BlogID string `json:"blog_id"`
	UserID string `json:"user_id"`
}

// Storage is the persistence contract of the blog store. Absence is reported
// with ErrRecordNotFound or ErrUserNotFound, never with a nil result.
type Storage interface {
	FindAll(ctx context.Context) ([]Blog, error)
	FindByID(ctx context.Context, id string) (*Blog, error)
	Insert(ctx context.Context, blog *Blog) error
	UpdateLikes(ctx context.Context, id string, likes int) (*Blog, error)
	// DeleteByID removes the blog and its id from the owner's blog list.
	DeleteByID(ctx context.Context, id string) error
	FindUserByID(ctx context.Context, id string) (*userservice.User, error)
	// AppendBlogIDToUser is atomic and idempotent: an id already present is not added twice.
	AppendBlogIDToUser(ctx context.Context, userID, blogID string) error
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	store   Storage
	c       *common.Cache
	mb      common.MessageProducer
	metrics *common.Metrics
	logger  *slog.Logger

	// mu guards gens, the per-key invalidation count used to reject stale fills.
	mu   sync.Mutex
	gens map[string]uint64
}

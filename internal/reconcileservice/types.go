package reconcileservice

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-mail/mail/v2"
	"github.com/sushihentaime/bloglist/internal/blogservice"
	"github.com/sushihentaime/bloglist/internal/common"
)

// Linker is the part of the blog store the reconciler needs.
type Linker interface {
	FindByID(ctx context.Context, id string) (*blogservice.Blog, error)
	AppendBlogIDToUser(ctx context.Context, userID, blogID string) error
}

type ReconcileService struct {
	mb       common.MessageConsumer
	store    Linker
	m       Mailer
	metrics *common.Metrics
	logger  *slog.Logger

	maxRetries int
	baseDelay  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Mail struct {
	mu       sync.Mutex
	dialer   Dialer
	parser   TemplateParser
	sender   string
	operator string
}

type Mailer interface {
	notifyOperator(notice operatorNotice) error
}

type Template struct{}

type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type TemplateParser interface {
	ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error)
}

// operatorNotice is the data rendered into unlinked_blog.tmpl.
type operatorNotice struct {
	BlogID   string
	UserID   string
	Attempts int
	Error    string
}

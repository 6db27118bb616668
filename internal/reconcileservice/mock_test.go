package reconcileservice

import (
	"bytes"
	"context"
	"sync"

	"github.com/go-mail/mail/v2"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/mock"
	"github.com/sushihentaime/bloglist/internal/blogservice"
	"github.com/sushihentaime/bloglist/internal/common"
)

type MockTemplate struct {
	mock.Mock
}

func (m *MockTemplate) ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error) {
	args := m.Called(name, data)
	return args.Get(0).(*bytes.Buffer), args.Get(1).(*bytes.Buffer), args.Get(2).(*bytes.Buffer), args.Error(3)
}

type MockDialer struct {
	mock.Mock
}

func (d *MockDialer) DialAndSend(m ...*mail.Message) error {
	args := d.Called(m)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) notifyOperator(notice operatorNotice) error {
	args := m.Called(notice)
	return args.Error(0)
}

type MockLinker struct {
	mock.Mock
}

func (m *MockLinker) FindByID(ctx context.Context, id string) (*blogservice.Blog, error) {
	args := m.Called(id)
	blog, _ := args.Get(0).(*blogservice.Blog)
	return blog, args.Error(1)
}

func (m *MockLinker) AppendBlogIDToUser(ctx context.Context, userID, blogID string) error {
	args := m.Called(userID, blogID)
	return args.Error(0)
}

// MockMessageConsumer hands out a channel the test feeds.
type MockMessageConsumer struct {
	msgs chan amqp.Delivery
}

func (m *MockMessageConsumer) Consume(queue common.Queue, consumer string) (<-chan amqp.Delivery, error) {
	return m.msgs, nil
}

// recordingAcknowledger counts how each delivery was settled.
type recordingAcknowledger struct {
	mu     sync.Mutex
	acks   int
	nacks  int
	settle chan struct{}
}

func newRecordingAcknowledger() *recordingAcknowledger {
	return &recordingAcknowledger{settle: make(chan struct{}, 16)}
}

func (a *recordingAcknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	a.acks++
	a.mu.Unlock()
	a.settle <- struct{}{}
	return nil
}

func (a *recordingAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	a.nacks++
	a.mu.Unlock()
	a.settle <- struct{}{}
	return nil
}

func (a *recordingAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func (a *recordingAcknowledger) counts() (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.acks, a.nacks
}

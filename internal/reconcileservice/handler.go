package reconcileservice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sushihentaime/bloglist/internal/blogservice"
	"github.com/sushihentaime/bloglist/internal/common"
	"golang.org/x/exp/rand"
)

const (
	defaultMaxRetries = 5
	defaultBaseDelay  = 500 * time.Millisecond

	consumerName = "reconcile"
	templateName = "unlinked_blog.tmpl"
)

func NewReconcileService(mb common.MessageConsumer, store Linker, m Mailer, metrics *common.Metrics, logger *slog.Logger) *ReconcileService {
	ctx, cancel := context.WithCancel(context.Background())
	return &ReconcileService{
		mb:         mb,
		store:      store,
		m:          m,
		metrics:    metrics,
		logger:     logger,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start consumes unlinked blog events until Close is called or the channel closes.
func (s *ReconcileService) Start() error {
	msgs, err := s.mb.Consume(common.BlogUnlinkedQueue, consumerName)
	if err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				s.handle(msg)

			case <-s.ctx.Done():
				s.logger.Info("stopping reconcile consumer")
				return
			}
		}
	}()

	return nil
}

// handle settles every delivery exactly once: acked when handled, nacked for
// redelivery only when shutdown interrupts the retries.
func (s *ReconcileService) handle(msg amqp.Delivery) {
	var event blogservice.UnlinkedEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
		s.ack(msg)
		return
	}

	log := s.logger.With(slog.String("blog_id", event.BlogID), slog.String("user_id", event.UserID))

	var (
		err     error
		attempt int
	)
	for attempt = 1; ; attempt++ {
		err = s.link(event)
		switch {
		case err == nil:
			log.Info("blog linked to owner", slog.Int("attempt", attempt))
			s.metrics.BlogEvent("relinked")
			s.ack(msg)
			return
		case errors.Is(err, blogservice.ErrRecordNotFound):
			log.Info("unlinked blog no longer exists")
			s.ack(msg)
			return
		}

		// a missing owner will not come back
		if attempt >= s.maxRetries || errors.Is(err, blogservice.ErrUserNotFound) {
			break
		}

		// exponential backoff with jitter
		delay := time.Duration(rand.Int63n(int64(s.baseDelay) << uint(attempt-1)))
		log.Info("delaying blog link", slog.Int("attempt", attempt), slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			if nackErr := msg.Nack(false, true); nackErr != nil {
				log.Error("could not nack message", slog.String("error", nackErr.Error()))
			}
			return
		}
	}

	log.Error("could not link blog to owner", slog.Int("attempts", attempt), slog.String("error", err.Error()))
	s.metrics.BlogEvent("unlinked_abandoned")

	notice := operatorNotice{BlogID: event.BlogID, UserID: event.UserID, Attempts: attempt, Error: err.Error()}
	if err := s.m.notifyOperator(notice); err != nil {
		log.Error("could not notify operator", slog.String("error", err.Error()))
	}

	s.ack(msg)
}

func (s *ReconcileService) link(event blogservice.UnlinkedEvent) error {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()

	blog, err := s.store.FindByID(ctx, event.BlogID)
	if err != nil {
		return err
	}

	return s.store.AppendBlogIDToUser(ctx, blog.UserID, blog.ID)
}

func (s *ReconcileService) ack(msg amqp.Delivery) {
	if err := msg.Ack(false); err != nil {
		s.logger.Error("could not ack message", slog.String("error", err.Error()))
	}
}

// Close stops consuming and waits for the message in flight.
func (s *ReconcileService) Close() {
	s.cancel()
	s.wg.Wait()
}

package notification

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	platformredis "docket/internal/platform/redis"
	id "docket/pkg/domain"
)

type failingSender struct{}

func (failingSender) Send(context.Context, *Notification) error {
	return errors.New("push gateway unavailable")
}

type PushSuite struct {
	suite.Suite

	mini   *miniredis.Miniredis
	client *platformredis.Client
	store  *MemoryStore
}

func TestPushSuite(t *testing.T) {
	suite.Run(t, new(PushSuite))
}

func (s *PushSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	s.client = &platformredis.Client{
		Client: goredis.NewClient(&goredis.Options{Addr: s.mini.Addr()}),
	}
	s.store = NewMemoryStore()
}

func (s *PushSuite) TearDownTest() {
	s.client.Close()
}

func (s *PushSuite) seedNotification() *Notification {
	n := &Notification{
		ID:          id.NewNotificationID(),
		RecipientID: id.NewActorID(),
		Type:        TypeCaseUpdate,
		Title:       "case advanced",
		PushState:   PushPending,
		CreatedAt:   time.Now(),
	}
	s.Require().NoError(s.store.Create(context.Background(), n))
	return n
}

func (s *PushSuite) runWorker(sender PushSender) (cancel context.CancelFunc, done chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	worker := NewPushWorker(s.client, "push:test", 50*time.Millisecond, s.store, sender, slog.Default())
	done = make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()
	return cancel, done
}

func (s *PushSuite) awaitPushState(notifID id.NotificationID, want PushState) {
	s.Require().Eventually(func() bool {
		n, err := s.store.FindByID(context.Background(), notifID)
		return err == nil && n.PushState == want
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *PushSuite) TestQueueRoundTripMarksSent() {
	n := s.seedNotification()
	queue := NewRedisQueue(s.client, "push:test")
	s.Require().NoError(queue.Enqueue(context.Background(), n.ID))

	cancel, done := s.runWorker(LogSender{Logger: slog.Default()})
	defer func() { cancel(); <-done }()

	s.awaitPushState(n.ID, PushSent)
}

func (s *PushSuite) TestDeliveryFailureMarksFailed() {
	n := s.seedNotification()
	queue := NewRedisQueue(s.client, "push:test")
	s.Require().NoError(queue.Enqueue(context.Background(), n.ID))

	cancel, done := s.runWorker(failingSender{})
	defer func() { cancel(); <-done }()

	s.awaitPushState(n.ID, PushFailed)
}

func (s *PushSuite) TestUnknownIDIsSkipped() {
	queue := NewRedisQueue(s.client, "push:test")
	s.Require().NoError(queue.Enqueue(context.Background(), id.NewNotificationID()))

	known := s.seedNotification()
	s.Require().NoError(queue.Enqueue(context.Background(), known.ID))

	cancel, done := s.runWorker(LogSender{Logger: slog.Default()})
	defer func() { cancel(); <-done }()

	// The bogus id ahead in the queue must not stall delivery of the
	// known one.
	s.awaitPushState(known.ID, PushSent)
}

func (s *PushSuite) TestWorkerStopsOnCancel() {
	cancel, done := s.runWorker(LogSender{Logger: slog.Default()})
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.Fail("worker did not stop after cancel")
	}
}

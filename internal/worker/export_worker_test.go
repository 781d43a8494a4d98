package worker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"gastos/internal/amqp"
	"gastos/internal/log"
)

type fakeConsumer struct {
	msgs []*amqp.PaymentRecordedMessage
	// returned after all messages are delivered; nil blocks until ctx ends
	err error
}

func (c *fakeConsumer) ConsumePaymentRecorded(ctx context.Context, handler amqp.Handler) error {
	for _, m := range c.msgs {
		_ = handler(ctx, m)
	}
	if c.err != nil {
		return c.err
	}
	<-ctx.Done()
	return ctx.Err()
}

type recordingProcessor struct {
	mu   sync.Mutex
	seen []string
	done chan struct{}
	want int
}

func (p *recordingProcessor) Handle(_ context.Context, msg *amqp.PaymentRecordedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, msg.EventID)
	if len(p.seen) == p.want {
		close(p.done)
	}
	return nil
}

type fakeJournal struct {
	pingErr error
	count   int64
}

func (j *fakeJournal) Ping(context.Context) error { return j.pingErr }

func (j *fakeJournal) Count(context.Context) (int64, error) { return j.count, nil }

func testLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

func TestExportWorker_RunDeliversAndStopsCleanly(t *testing.T) {
	msgs := []*amqp.PaymentRecordedMessage{
		{EventID: uuid.NewString(), PaymentID: 1},
		{EventID: uuid.NewString(), PaymentID: 2},
	}
	proc := &recordingProcessor{done: make(chan struct{}), want: len(msgs)}
	w := NewExportWorker(&fakeConsumer{msgs: msgs}, proc, &fakeJournal{count: 3}, testLogger(), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	select {
	case <-proc.done:
	case <-time.After(2 * time.Second):
		t.Fatal("messages were not delivered")
	}
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run() error = %v, want nil after cancellation", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}

	if proc.seen[0] != msgs[0].EventID || proc.seen[1] != msgs[1].EventID {
		t.Fatalf("unexpected delivery order %v", proc.seen)
	}
}

func TestExportWorker_RunReturnsConsumerError(t *testing.T) {
	boom := errors.New("access refused")
	w := NewExportWorker(&fakeConsumer{err: boom}, &recordingProcessor{done: make(chan struct{})}, &fakeJournal{}, testLogger(), 0)

	if err := w.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
}

func TestExportWorker_StartupCheckFailsWithoutJournal(t *testing.T) {
	w := NewExportWorker(&fakeConsumer{}, &recordingProcessor{done: make(chan struct{})}, &fakeJournal{pingErr: errors.New("no such file")}, testLogger(), 0)

	if err := w.Run(context.Background()); err == nil {
		t.Fatal("Run() expected startup error")
	}
}

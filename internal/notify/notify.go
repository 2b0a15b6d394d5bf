// Package notify delivers stored notifications to external channels.
//
// Delivery is best effort: a Dispatcher fans a Message out to every configured
// Sender, logs failures and never reports them back to the caller.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/logger"
)

const defaultSendTimeout = 10 * time.Second

// Message is the channel-independent form of a notification.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Login     string    `json:"login"`
	Email     string    `json:"-"`
	Kind      string    `json:"kind"`
	Text      string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Sender delivers a message over one channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Dispatcher sends messages to all senders in the background.
type Dispatcher struct {
	senders []Sender
	timeout time.Duration
	log     *zap.SugaredLogger
	wg      sync.WaitGroup
}

// NewDispatcher returns a Dispatcher over senders. With no senders Dispatch is a no-op.
func NewDispatcher(senders ...Sender) *Dispatcher {
	return &Dispatcher{
		senders: senders,
		timeout: defaultSendTimeout,
		log:     logger.Named("notify"),
	}
}

// Enabled reports whether any channel is configured.
func (d *Dispatcher) Enabled() bool {
	return d != nil && len(d.senders) > 0
}

// Dispatch queues msg for delivery and returns immediately.
func (d *Dispatcher) Dispatch(msg Message) {
	if !d.Enabled() {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		_ = d.Deliver(ctx, msg)
	}()
}

// Deliver sends msg to every sender concurrently and waits for all of them.
// Each failure is logged; the first one is returned.
func (d *Dispatcher) Deliver(ctx context.Context, msg Message) error {
	var g errgroup.Group
	for _, s := range d.senders {
		s := s
		g.Go(func() error {
			if err := s.Send(ctx, msg); err != nil {
				d.log.Warnw("notification delivery failed",
					"channel", s.Name(),
					"notification_id", msg.ID,
					"user_id", msg.UserID,
					"error", err,
				)
				return err
			}
			d.log.Debugw("notification delivered", "channel", s.Name(), "notification_id", msg.ID)
			return nil
		})
	}
	return g.Wait()
}

// Wait blocks until queued deliveries finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	if d == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

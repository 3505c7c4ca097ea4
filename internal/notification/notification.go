// Package notification delivers email to users. Delivery is best effort: a failed send is
// logged and never fails the state change that triggered it.
package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Noop logs messages instead of sending them; used when SMTP is not configured.
type Noop struct {
	Logger *slog.Logger
}

func (n Noop) Notify(ctx context.Context, msg Message) error {
	if n.Logger != nil {
		n.Logger.InfoContext(ctx, "notification skipped, mail disabled", "to", msg.To, "subject", msg.Subject)
	}
	return nil
}

// Dispatcher sends messages in the background.
type Dispatcher struct {
	notifier Notifier
	logger   *slog.Logger
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewDispatcher(n Notifier, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: n,
		logger:   logger.With("component", "notification"),
		timeout:  30 * time.Second,
	}
}

// Send queues msg and returns immediately.
func (d *Dispatcher) Send(msg Message) {
	if msg.To == "" {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.notifier.Notify(ctx, msg); err != nil {
			d.logger.Warn("notification failed", "to", msg.To, "subject", msg.Subject, "error", err)
		}
	}()
}

// Wait blocks until every queued message has been attempted.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

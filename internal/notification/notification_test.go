package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func TestDispatcher_SendsInBackground(t *testing.T) {
	rec := &recordingNotifier{}
	d := NewDispatcher(rec, slog.New(slog.NewTextHandler(io.Discard, nil)))

	d.Send(Message{To: "worker@example.com", Subject: "hi"})
	d.Send(Message{To: "", Subject: "dropped"})
	d.Wait()

	assert.Len(t, rec.sent, 1)
	assert.Equal(t, "worker@example.com", rec.sent[0].To)
}

func TestDispatcher_FailureIsSwallowed(t *testing.T) {
	rec := &recordingNotifier{err: errors.New("smtp down")}
	d := NewDispatcher(rec, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.NotPanics(t, func() {
		d.Send(Message{To: "a@example.com"})
		d.Wait()
	})
	assert.Len(t, rec.sent, 1)
}

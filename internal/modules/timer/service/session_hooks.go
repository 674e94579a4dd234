package service

import (
	"context"
	"sync"
	"time"

	"readtrack/internal/modules/timer/domain"
)

// SessionHooks binds the timer callbacks to one book. It keeps the outcome of
// the last begin and finish for the caller to report.
type SessionHooks struct {
	lifecycle *LifecycleService
	bookID    string

	mu       sync.Mutex
	began    Began
	finished Finished
	ended    bool
}

func NewSessionHooks(lifecycle *LifecycleService, bookID string) *SessionHooks {
	return &SessionHooks{lifecycle: lifecycle, bookID: bookID}
}

// Adopt attaches the hooks to a session that is already open, so that only
// OnReadEnd runs for it.
func (h *SessionHooks) Adopt(began Began) {
	h.mu.Lock()
	h.began = began
	h.mu.Unlock()
}

func (h *SessionHooks) OnStartSelected(ctx context.Context, endTime time.Time) error {
	began, err := h.lifecycle.Begin(ctx, h.bookID, endTime)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.began = began
	h.ended = false
	h.mu.Unlock()
	return nil
}

func (h *SessionHooks) OnReadEnd(ctx context.Context, reason domain.EndReason) error {
	finished, err := h.lifecycle.Finish(ctx, reason, 0)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.finished = finished
	h.ended = true
	h.mu.Unlock()
	return nil
}

func (h *SessionHooks) Outcome() (Began, Finished, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.began, h.finished, h.ended
}

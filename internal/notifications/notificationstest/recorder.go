// Package notificationstest provides a Notifier that remembers what it was asked to send.
package notificationstest

import (
	"context"
	"sync"

	"github.com/shelflife/shelflife-backend/internal/notifications"
)

type Recorder struct {
	mu      sync.Mutex
	notices []notifications.Notice
}

func (r *Recorder) Notify(_ context.Context, notices ...notifications.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notices...)
}

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []notifications.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notifications.Notice(nil), r.notices...)
}

package manager

import (
	"context"
	"sync"
	"time"
)

// IdentityResolver reports the operator behind the current request, if any.
type IdentityResolver interface {
	CurrentOperatorID(ctx context.Context) (string, bool)
}

// IdentityFunc adapts a function to IdentityResolver.
type IdentityFunc func(ctx context.Context) (string, bool)

func (f IdentityFunc) CurrentOperatorID(ctx context.Context) (string, bool) { return f(ctx) }

// Navigator performs fire-and-forget navigation to an application route.
type Navigator interface {
	Navigate(path string)
}

// RouteRecorder is a Navigator that keeps the last requested route until it is taken.
type RouteRecorder struct {
	mu   sync.Mutex
	path string
}

func (r *RouteRecorder) Navigate(path string) {
	r.mu.Lock()
	r.path = path
	r.mu.Unlock()
}

// Take returns the pending route and clears it.
func (r *RouteRecorder) Take() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	path := r.path
	r.path = ""
	return path, path != ""
}

type Level string

const (
	LevelSuccess Level = "success"
	LevelFailure Level = "failure"
)

// Notification is a user-facing message produced by an operation.
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier surfaces notifications to the operator.
type Notifier interface {
	Notify(n Notification)
}

// Queue buffers notifications until the presentation drains them.
type Queue struct {
	mu    sync.Mutex
	items []Notification
}

func (q *Queue) Notify(n Notification) {
	q.mu.Lock()
	q.items = append(q.items, n)
	q.mu.Unlock()
}

// Drain returns the buffered notifications oldest first and empties the queue.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// ConfirmFunc asks the operator to confirm an irreversible action.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirmed approves every prompt.
func Confirmed(context.Context, string) bool { return true }

// Declined rejects every prompt.
func Declined(context.Context, string) bool { return false }

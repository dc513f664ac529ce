package services

import (
	"sync"
	"time"

	"prestamos/utils"
)

// NotificationKind distinguishes success and error toasts
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is one user-facing message
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
	Detail  string           `json:"detail,omitempty"`
	At      time.Time        `json:"at"`
}

// Notifier receives the outcome of user-visible operations
type Notifier interface {
	Success(message string)
	Error(err error, message string)
}

// LogNotifier writes notifications to the application log
type LogNotifier struct{}

func (LogNotifier) Success(message string) {
	utils.GetMetrics().Notifications.WithLabelValues(string(NotificationSuccess)).Inc()
	utils.LogInfo("%s", message)
}

func (LogNotifier) Error(err error, message string) {
	utils.GetMetrics().Notifications.WithLabelValues(string(NotificationError)).Inc()
	utils.LogError("%s: %v", message, err)
}

// Feed keeps the most recent notifications until a client drains them
type Feed struct {
	mu    sync.Mutex
	limit int
	items []Notification
	now   func() time.Time
}

// NewFeed returns a feed holding at most limit notifications
func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = 50
	}
	return &Feed{limit: limit, now: time.Now}
}

func (f *Feed) Success(message string) {
	f.push(Notification{Kind: NotificationSuccess, Message: message})
}

func (f *Feed) Error(err error, message string) {
	n := Notification{Kind: NotificationError, Message: message}
	if err != nil {
		n.Detail = err.Error()
	}
	f.push(n)
}

func (f *Feed) push(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.At = f.now()
	f.items = append(f.items, n)
	if over := len(f.items) - f.limit; over > 0 {
		f.items = append([]Notification(nil), f.items[over:]...)
	}
}

// Drain returns the pending notifications oldest first and empties the feed
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.items
	f.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// Fanout forwards every notification to each of its notifiers
type Fanout []Notifier

func (f Fanout) Success(message string) {
	for _, n := range f {
		n.Success(message)
	}
}

func (f Fanout) Error(err error, message string) {
	for _, n := range f {
		n.Error(err, message)
	}
}

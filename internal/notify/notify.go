// Package notify carries transient user-facing notices. Errors that must not
// crash the app are turned into a Notice at their origin and handed to a
// Notifier.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

type Notice struct {
	Level   Level     `json:"level"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

func Error(message string) Notice {
	return Notice{Level: LevelError, Title: "Erro", Message: message, At: time.Now()}
}

func Info(title, message string) Notice {
	return Notice{Level: LevelInfo, Title: title, Message: message, At: time.Now()}
}

type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Discard drops every notice.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(context.Context, Notice) {}

// Log writes notices to a slog logger.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(ctx context.Context, n Notice) {
	lvl := slog.LevelInfo
	if n.Level == LevelError {
		lvl = slog.LevelWarn
	}
	l.logger.Log(ctx, lvl, "notice", "title", n.Title, "message", n.Message)
}

// Multi fans a notice out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notice) {
	for _, nt := range m {
		nt.Notify(ctx, n)
	}
}

const defaultInboxSize = 32

// Inbox holds the most recent notices until the presentation drains them.
// When full, the oldest notice is dropped.
type Inbox struct {
	mu      sync.Mutex
	size    int
	notices []Notice
}

func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = defaultInboxSize
	}
	return &Inbox{size: size}
}

func (i *Inbox) Notify(_ context.Context, n Notice) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.notices) == i.size {
		i.notices = i.notices[1:]
	}
	i.notices = append(i.notices, n)
}

// Drain returns the pending notices oldest first and empties the inbox.
func (i *Inbox) Drain() []Notice {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := i.notices
	i.notices = nil
	if out == nil {
		return []Notice{}
	}
	return out
}

// Package notify carries short user-facing notifications ("toasts").
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Level int

const (
	LevelInfo Level = iota
	LevelError
)

type Toast struct {
	Title       string
	Description string
	Level       Level
	At          time.Time
}

// Emitter is fire-and-forget: it never reports failures back to the caller.
type Emitter interface {
	Emit(t Toast)
}

// Func adapts a plain function to an Emitter.
type Func func(t Toast)

func (f Func) Emit(t Toast) {
	if f != nil {
		f(t)
	}
}

// Info builds an info-level toast stamped with the current time.
func Info(title, description string) Toast {
	return Toast{Title: title, Description: description, Level: LevelInfo, At: time.Now()}
}

func Error(title, description string) Toast {
	return Toast{Title: title, Description: description, Level: LevelError, At: time.Now()}
}

// Log writes toasts to a zerolog logger; used by the non-interactive commands.
type Log struct {
	Logger zerolog.Logger
}

func (l Log) Emit(t Toast) {
	ev := l.Logger.Info()
	if t.Level == LevelError {
		ev = l.Logger.Error()
	}
	ev.Str("description", t.Description).Msg(t.Title)
}

// Queue keeps emitted toasts until the UI picks them up. It is safe to emit
// from any goroutine.
type Queue struct {
	mu    sync.Mutex
	items []Toast
}

func (q *Queue) Emit(t Toast) {
	if t.At.IsZero() {
		t.At = time.Now()
	}
	q.mu.Lock()
	q.items = append(q.items, t)
	q.mu.Unlock()
}

// Drain returns the queued toasts in emit order and empties the queue.
func (q *Queue) Drain() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

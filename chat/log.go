// Package chat holds the local chat history shown over the game view and the
// command console used to type into it.
package chat

import (
	"log"
	"sync"
	"time"
)

// Notifier shows a chat line to the user.
type Notifier interface {
	Chat(msg string)
}

// Line is one chat message.
type Line struct {
	Text string
	At   time.Time
}

// Log keeps the most recent chat lines. It is safe for concurrent use.
type Log struct {
	mu    sync.Mutex
	lines []Line
	max   int
	ttl   time.Duration
	now   func() time.Time
}

// NewLog keeps at most max lines, each visible for ttl after it arrives.
func NewLog(max int, ttl time.Duration) *Log {
	if max < 1 {
		max = 1
	}
	return &Log{max: max, ttl: ttl, now: time.Now}
}

// Chat appends msg, dropping the oldest line when full.
func (l *Log) Chat(msg string) {
	log.Printf("[CHAT] %s", msg)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, Line{Text: msg, At: l.now()})
	if over := len(l.lines) - l.max; over > 0 {
		l.lines = append(l.lines[:0], l.lines[over:]...)
	}
}

// Visible returns the lines younger than the ttl, oldest first.
func (l *Log) Visible() []Line {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.ttl)
	var out []Line
	for _, line := range l.lines {
		if line.At.After(cutoff) {
			out = append(out, line)
		}
	}
	return out
}

// History returns every kept line, oldest first.
func (l *Log) History() []Line {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Line(nil), l.lines...)
}

// Fanout forwards every message to each notifier in order. Nil entries are
// skipped.
type Fanout []Notifier

func (f Fanout) Chat(msg string) {
	for _, n := range f {
		if n != nil {
			n.Chat(msg)
		}
	}
}

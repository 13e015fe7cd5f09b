package editor

import (
	"errors"
	"sync"

	"pathkit/typedef"
)

const pendingImports = 4

var (
	errSessionClosed  = errors.New("the path editor was closed")
	errTooManyImports = errors.New("too many imports are waiting to be applied")
)

type result struct {
	path string
	cfg  *typedef.PathConfig
	err  error
}

// Session is the state of one open/close cycle of the editor. Dialog workers
// hold on to the session they were started from, so a result that arrives
// after the editor closed can never touch a later session.
type Session struct {
	activeTab  string
	scroll     int
	maxVisible int

	mu      sync.Mutex
	closed  bool
	results chan result
}

func newSession(tab string) *Session {
	return &Session{
		activeTab: tab,
		results:   make(chan result, pendingImports),
	}
}

// deliver queues r for the UI thread. It fails when the session is closed or
// too many imports are already waiting.
func (s *Session) deliver(r result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSessionClosed
	}
	select {
	case s.results <- r:
		return nil
	default:
		return errTooManyImports
	}
}

// drain returns every queued result without blocking.
func (s *Session) drain() []result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drainLocked()
}

func (s *Session) drainLocked() []result {
	var out []result
	for {
		select {
		case r := <-s.results:
			out = append(out, r)
		default:
			return out
		}
	}
}

// close marks the session closed and returns results that were never applied.
func (s *Session) close() []result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.drainLocked()
}

package driving

import "sync/atomic"

// Session tracks whether a query is in flight for one user.
// Renderers read Busy to disable input and show a loading state.
type Session struct {
	busy atomic.Bool
}

// NewSession creates an idle session.
func NewSession() *Session {
	return &Session{}
}

// Begin marks the session busy. It returns false if a query is already in flight.
func (s *Session) Begin() bool {
	return s.busy.CompareAndSwap(false, true)
}

// End marks the session idle.
func (s *Session) End() {
	s.busy.Store(false)
}

// Busy reports whether a query is in flight.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

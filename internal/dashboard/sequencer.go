package dashboard

import (
	"context"
	"sync"
)

// Sequencer keeps at most one analysis in flight per browser session. Starting
// a new one cancels the previous and marks it stale.
type Sequencer struct {
	mu       sync.Mutex
	inflight map[string]*Ticket
}

// Ticket identifies one analysis of a session.
type Ticket struct {
	seq     *Sequencer
	session string
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewSequencer() *Sequencer {
	return &Sequencer{inflight: make(map[string]*Ticket)}
}

// Begin registers a new analysis for session. An empty session is never
// superseded.
func (s *Sequencer) Begin(parent context.Context, session string) *Ticket {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	defer s.mu.Unlock()
	t := &Ticket{seq: s, session: session, ctx: ctx, cancel: cancel}
	if session == "" {
		return t
	}
	if prev, ok := s.inflight[session]; ok {
		prev.cancel()
	}
	s.inflight[session] = t
	return t
}

// InFlight reports how many sessions currently have an analysis running.
func (s *Sequencer) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

// Context is cancelled when the ticket is superseded or released.
func (t *Ticket) Context() context.Context { return t.ctx }

// Current reports whether no newer analysis has started for the session.
func (t *Ticket) Current() bool {
	if t.session == "" {
		return true
	}
	t.seq.mu.Lock()
	defer t.seq.mu.Unlock()
	return t.seq.inflight[t.session] == t
}

// Release ends the ticket. It is safe to call more than once.
func (t *Ticket) Release() {
	t.cancel()
	if t.session == "" {
		return
	}
	t.seq.mu.Lock()
	defer t.seq.mu.Unlock()
	if t.seq.inflight[t.session] == t {
		delete(t.seq.inflight, t.session)
	}
}

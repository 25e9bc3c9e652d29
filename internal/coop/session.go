package coop

import "sync"

// SessionHandle is how the coordinator reaches one participant, whatever
// the transport behind it (Bubble Tea over SSH, a websocket, an MCP agent).
type SessionHandle interface {
	ID() SessionID

	// Send delivers an event without blocking the coordinator loop.
	Send(evt Event)

	// Done closes when the participant is gone.
	Done() <-chan struct{}
}

// ChannelSession buffers events on a channel for a reader goroutine.
// When the reader falls behind, the oldest buffered event gives way to the
// newest, so a slow client still ends up with the latest snapshot.
type ChannelSession struct {
	id     SessionID
	events chan Event
	done   chan struct{}

	mu      sync.Mutex
	closed  bool
	dropped int
}

// NewChannelSession creates a session holding up to size undelivered
// events (64 when size is not positive).
func NewChannelSession(id SessionID, size int) *ChannelSession {
	if size < 1 {
		size = 64
	}
	return &ChannelSession{
		id:     id,
		events: make(chan Event, size),
		done:   make(chan struct{}),
	}
}

func (s *ChannelSession) ID() SessionID {
	return s.id
}

// Send queues evt. Events sent after Close are discarded.
func (s *ChannelSession) Send(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	// Senders are serialized, so one eviction always makes room.
	for {
		select {
		case s.events <- evt:
			return
		default:
		}
		select {
		case <-s.events:
			s.dropped++
		default:
		}
	}
}

func (s *ChannelSession) Events() <-chan Event {
	return s.events
}

func (s *ChannelSession) Done() <-chan struct{} {
	return s.done
}

// Dropped reports how many events were evicted unread.
func (s *ChannelSession) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close ends the session. Buffered events stay readable.
func (s *ChannelSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
}

// SessionRegistry maps session ids to live handles. Safe for concurrent use.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[SessionID]SessionHandle
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[SessionID]SessionHandle)}
}

// Register adds h, replacing any handle with the same id.
func (r *SessionRegistry) Register(h SessionHandle) {
	r.mu.Lock()
	r.sessions[h.ID()] = h
	r.mu.Unlock()
}

func (r *SessionRegistry) Unregister(id SessionID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *SessionRegistry) Get(id SessionID) (SessionHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.sessions[id]
	return h, ok
}

func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

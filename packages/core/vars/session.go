package vars

import (
	"maps"
	"sync"
)

// Session holds the runtime globals of one collection. Scripts write to it
// through client.global.set and every later merge reads from it.
type Session struct {
	mu         sync.RWMutex
	collection string
	values     map[string]string
}

func NewSession(collection string) *Session {
	return &Session{
		collection: collection,
		values:     make(map[string]string),
	}
}

// Collection returns the collection path the session belongs to.
func (s *Session) Collection() string {
	return s.collection
}

func (s *Session) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

func (s *Session) Set(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}

func (s *Session) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, name)
}

// Apply sets every entry of changes.
func (s *Session) Apply(changes map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range changes {
		s.values[k] = v
	}
}

// Snapshot returns a copy of the current globals.
func (s *Session) Snapshot() map[string]string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
}

func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Sessions tracks one Session per collection path.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]*Session)}
}

// Open returns the session for collection, creating it on first use.
func (r *Sessions) Open(collection string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[collection]; ok {
		return s
	}
	s := NewSession(collection)
	r.sessions[collection] = s
	return s
}

// Close clears and forgets the session for collection.
func (r *Sessions) Close(collection string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[collection]; ok {
		s.Clear()
		delete(r.sessions, collection)
	}
}

func (r *Sessions) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, s := range r.sessions {
		s.Clear()
		delete(r.sessions, k)
	}
}

package booking

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TejjP/zyero-lead-accelerator/internal/timeslot"
)

// Draft holds the working state of a submission: the contact fields,
// the qualification answers, and the chosen date/slot.
type Draft struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Answers map[string]string

	Date timeslot.DateKey
	Slot string
}

// Session is one visitor's progress through the flow.
type Session struct {
	ID        string
	State     State
	Draft     Draft
	StartedAt time.Time
	UpdatedAt time.Time
	mu        sync.Mutex
}

// NewSession creates a session at Step1.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New().String(),
		State:     StateStep1,
		Draft:     Draft{Answers: make(map[string]string)},
		StartedAt: now,
		UpdatedAt: now,
	}
}

// SetState updates the session state.
func (s *Session) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = state
	s.UpdatedAt = time.Now()
}

// GetState returns the current state.
func (s *Session) GetState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.State
}

// Reset clears the form fields and returns the session to Step1, as
// happens when the dialog is reopened after a confirmed booking.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = StateStep1
	s.Draft = Draft{Answers: make(map[string]string)}
	s.UpdatedAt = time.Now()
}

// IsExpired checks if the session has been idle past timeout.
func (s *Session) IsExpired(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.UpdatedAt) > timeout
}

// SessionStore manages flow sessions by ID and remembers which flow
// variant each session belongs to.
type SessionStore struct {
	sessions map[string]*Session
	flows    map[string]string
	mu       sync.RWMutex
	timeout  time.Duration
}

// NewSessionStore creates a session store.
func NewSessionStore(timeout time.Duration) *SessionStore {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		flows:    make(map[string]string),
		timeout:  timeout,
	}
}

// Get returns a live session by ID, or nil.
func (ss *SessionStore) Get(id string) *Session {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	session, ok := ss.sessions[id]
	if !ok || session.IsExpired(ss.timeout) {
		return nil
	}
	return session
}

// Create registers a new session.
func (ss *SessionStore) Create() *Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	session := NewSession()
	ss.sessions[session.ID] = session
	return session
}

// Bind attaches a session to a flow variant.
func (ss *SessionStore) Bind(id, flowName string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.flows[id] = flowName
}

// FlowName returns the flow variant a session is bound to.
func (ss *SessionStore) FlowName(id string) string {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.flows[id]
}

// Delete removes a session.
func (ss *SessionStore) Delete(id string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, id)
	delete(ss.flows, id)
}

// Cleanup removes expired sessions and returns how many were removed.
func (ss *SessionStore) Cleanup() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	removed := 0
	for id, session := range ss.sessions {
		if session.IsExpired(ss.timeout) {
			delete(ss.sessions, id)
			delete(ss.flows, id)
			removed++
		}
	}
	return removed
}

package session

import (
	"fmt"
	"sync"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

// Registry tracks live sessions by interview id so a second connection to the
// same interview is rejected while the first is still running.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add registers a session. It fails with ErrConflict when the interview
// already has a live session.
func (r *Registry) Add(interviewID string, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[interviewID]; ok {
		select {
		case <-existing.Done():
			// Stale entry from a session that stopped without removal.
		default:
			return fmt.Errorf("%w: interview %s already has a live session", domain.ErrConflict, interviewID)
		}
	}
	r.sessions[interviewID] = s
	return nil
}

// Remove drops a session; removing an unknown id is a no-op.
func (r *Registry) Remove(interviewID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, interviewID)
}

// Get returns the live session for an interview, if any.
func (r *Registry) Get(interviewID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[interviewID]
	return s, ok
}

// Len reports the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

package handlers

import (
	"sync"

	"khamboran/internal/game"
	"khamboran/internal/models"
)

// SessionRegistry tracks the live game manager per learner. One learner has
// at most one active session; starting again reuses or replaces it.
type SessionRegistry struct {
	mu       sync.Mutex
	managers map[string]*game.Manager
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{managers: make(map[string]*game.Manager)}
}

// Get returns the learner's live manager, or nil.
func (r *SessionRegistry) Get(learnerID string) *game.Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.managers[learnerID]
}

// Put registers a manager for a learner.
func (r *SessionRegistry) Put(learnerID string, m *game.Manager) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.managers[learnerID] = m
}

// Terminate drops a learner's live session, used when a teacher deletes the
// learner mid-game.
func (r *SessionRegistry) Terminate(learnerID string) {
	r.mu.Lock()
	m := r.managers[learnerID]
	delete(r.managers, learnerID)
	r.mu.Unlock()
	if m != nil {
		m.Terminate()
	}
}

// UpdateProfile live-merges an edited profile into the learner's active
// session, if any.
func (r *SessionRegistry) UpdateProfile(profile *models.LearnerProfile) {
	r.mu.Lock()
	m := r.managers[profile.ID]
	r.mu.Unlock()
	if m != nil {
		m.UpdateProfile(profile)
	}
}

// Flush waits for every live manager's in-flight saves, used on shutdown.
func (r *SessionRegistry) Flush() {
	r.mu.Lock()
	managers := make([]*game.Manager, 0, len(r.managers))
	for _, m := range r.managers {
		managers = append(managers, m)
	}
	r.mu.Unlock()
	for _, m := range managers {
		m.Flush()
	}
}

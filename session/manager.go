package session

import (
	"fmt"
	"sync"
	"time"
)

// Manager is a registry of live sessions with least-recently-used eviction.
type Manager struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	lastAccessed map[string]time.Time
	maxSessions  int
}

// NewManager returns a manager holding at most maxSessions sessions and
// starts the inactivity sweep.
func NewManager(maxSessions int) *Manager {
	if maxSessions <= 0 {
		maxSessions = 64
	}
	m := &Manager{
		sessions:     make(map[string]*Session),
		lastAccessed: make(map[string]time.Time),
		maxSessions:  maxSessions,
	}
	go m.cleanupInactiveSessions()
	return m
}

// Add registers a session, evicting the least recently used one when full.
func (m *Manager) Add(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.maxSessions {
		var oldestID string
		var oldestTime time.Time
		first := true
		for id, accessTime := range m.lastAccessed {
			if first || accessTime.Before(oldestTime) {
				oldestID = id
				oldestTime = accessTime
				first = false
			}
		}
		if oldestID != "" {
			delete(m.sessions, oldestID)
			delete(m.lastAccessed, oldestID)
		}
	}

	m.sessions[s.ID] = s
	m.lastAccessed[s.ID] = time.Now()
}

// Get returns a session by id and refreshes its access time.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	m.lastAccessed[id] = time.Now()
	return s, nil
}

// Remove drops a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	delete(m.lastAccessed, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) cleanupInactiveSessions() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		m.mu.Lock()
		now := time.Now()
		for id, lastAccess := range m.lastAccessed {
			if now.Sub(lastAccess) > 30*time.Minute {
				delete(m.sessions, id)
				delete(m.lastAccessed, id)
			}
		}
		m.mu.Unlock()
	}
}

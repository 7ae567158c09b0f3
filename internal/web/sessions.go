package web

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"wayfarer/internal/engine"
)

// Session is one live playthrough: an id plus its engine.
type Session struct {
	ID        string
	Engine    *engine.Engine
	CreatedAt time.Time
}

// SessionManager owns the live engines, one per play session. The engines
// themselves serialize their intents; the manager only guards the map.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	created  atomic.Int64

	newEngine func(sessionID string) (*engine.Engine, error)
}

// NewSessionManager builds a manager; newEngine constructs a fresh engine
// for a new game.
func NewSessionManager(newEngine func(sessionID string) (*engine.Engine, error)) *SessionManager {
	return &SessionManager{
		sessions:  make(map[string]*Session),
		newEngine: newEngine,
	}
}

// Create starts a new game session.
func (m *SessionManager) Create() (*Session, error) {
	id := generateSessionID()
	eng, err := m.newEngine(id)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	session := &Session{ID: id, Engine: eng, CreatedAt: time.Now()}

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()
	m.created.Inc()
	return session, nil
}

// Replace swaps the engine of an existing session, e.g. after a load.
func (m *SessionManager) Replace(id string, eng *engine.Engine) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	session.Engine = eng
	return session, true
}

// Get returns the session with the given id.
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	return session, ok
}

// Delete drops a session. The save, if any, stays in storage.
func (m *SessionManager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CreatedTotal returns how many sessions were created since boot.
func (m *SessionManager) CreatedTotal() int64 {
	return m.created.Load()
}

func generateSessionID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))[:16]
	}
	return hex.EncodeToString(b)
}

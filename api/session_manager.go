package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/Maksym-Lukianenko123/impc/service"
)

// ErrSessionNotFound is returned when a session ID is unknown.
var ErrSessionNotFound = errors.New("session not found")

// Session is one active compile+execute session.
type Session struct {
	ID        string
	Service   *service.CompileService
	CreatedAt time.Time
}

// SessionManager manages concurrent compile sessions, broadcasting each
// session's program output to WebSocket clients subscribed to it. There
// are no memory-layout options (size, stack, filesystem root) to carry
// per session, since the register machine has no configurable memory
// layout or sandboxed filesystem.
type SessionManager struct {
	sessions    map[string]*Session
	broadcaster *Broadcaster
	mu          sync.RWMutex
}

// NewSessionManager creates a session manager that broadcasts through b.
func NewSessionManager(b *Broadcaster) *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session), broadcaster: b}
}

// CreateSession creates an empty session (no program compiled yet).
func (sm *SessionManager) CreateSession() (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	svc := service.NewCompileService()
	if sm.broadcaster != nil {
		svc.SetOutputCallback(wireBroadcastOutput(sm.broadcaster, id))
	} else {
		debugLog("session %s: no broadcaster available for output", id)
	}

	session := &Session{ID: id, Service: svc, CreatedAt: time.Now()}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[id] = session
	return session, nil
}

// GetSession looks up a session by ID.
func (sm *SessionManager) GetSession(id string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, ok := sm.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// DestroySession removes a session.
func (sm *SessionManager) DestroySession(id string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, ok := sm.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(sm.sessions, id)
	return nil
}

// ListSessions returns every active session ID.
func (sm *SessionManager) ListSessions() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of active sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

func generateSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

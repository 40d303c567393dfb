package session

import (
	"log/slog"
	"sync"

	"github.com/reelcut/reelcut-agent/internal/frames"
)

// Manager owns the live edit sessions, keyed by session id.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	extractor frames.Extractor
	logger    *slog.Logger
}

func NewManager(extractor frames.Extractor, logger *slog.Logger) *Manager {
	return &Manager{
		sessions:  make(map[string]*Session),
		extractor: extractor,
		logger:    logger,
	}
}

// Open creates a session for the given media and registers it.
func (m *Manager) Open(mediaURI string, duration float64) *Session {
	s := New(mediaURI, duration, m.extractor, m.logger)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.Info("session opened", "session_id", s.ID, "duration", duration)
	}
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close discards a session and all its edit state.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Manager is the registry of open sessions with TTL eviction of idle
// ones.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	ttl                  time.Duration
	maxConcurrentExtract int
	log                  *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager(ttl time.Duration, maxConcurrentExtract int, log *slog.Logger) *Manager {
	return &Manager{
		sessions:             make(map[string]*Session),
		ttl:                  ttl,
		maxConcurrentExtract: maxConcurrentExtract,
		log:                  log,
	}
}

// Open registers a new session for the given document.
func (m *Manager) Open(doc Document, fileName, title, author string) (*Session, error) {
	s, err := newSession(doc, fileName, title, author, m.maxConcurrentExtract, m.log)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns a session by ID, or nil.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Close removes a session and releases its document. Returns the
// closed session, or nil when the ID is unknown.
func (m *Manager) Close(id string) *Session {
	m.mu.Lock()
	s := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if s != nil {
		if err := s.Close(); err != nil {
			m.log.Warn("closing session document", "session_id", id, "error", err)
		}
	}
	return s
}

// Start launches the idle-session eviction loop.
func (m *Manager) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				m.evictIdle()
			}
		}
	}()
}

func (m *Manager) evictIdle() {
	cutoff := time.Now().Add(-m.ttl)
	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		m.log.Info("evicting idle session", "session_id", s.ID, "file", s.FileName)
		if err := s.Close(); err != nil {
			m.log.Warn("closing evicted session", "session_id", s.ID, "error", err)
		}
	}
}

// Stop halts eviction and closes every open session.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()

	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		if err := s.Close(); err != nil {
			m.log.Warn("closing session on shutdown", "session_id", s.ID, "error", err)
		}
	}
}

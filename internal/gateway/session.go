package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/internal/connectrpc"
	"github.com/fpt/notice-cli/pkg/agent/domain"
)

// AgentClient is the part of the notice RPC service the gateway uses.
// *connectrpc.Client implements it.
type AgentClient interface {
	StartSession(ctx context.Context) (string, error)
	DraftNotice(ctx context.Context, sessionID, grievance string) (string, error)
	ClearSession(ctx context.Context, sessionID string) error
	GetTranscript(ctx context.Context, sessionID string, maxEntries int) ([]domain.TranscriptEntry, error)
}

// SessionKey uniquely identifies a conversation context.
type SessionKey struct {
	ChannelType string
	ChannelID   string
	PeerID      string
}

// Session holds per-peer state.
type Session struct {
	Key            SessionKey
	AgentSessionID string // RPC session ID

	mu           sync.Mutex
	lastActivity time.Time
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// LastActivity reports when the peer last used the session.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// SessionManager maps peers to RPC sessions.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[SessionKey]*Session
	client   AgentClient
}

// NewSessionManager creates a session manager.
func NewSessionManager(client AgentClient) *SessionManager {
	return &SessionManager{
		sessions: make(map[SessionKey]*Session),
		client:   client,
	}
}

// GetOrCreateSession returns the peer's session, starting one over RPC when absent.
func (sm *SessionManager) GetOrCreateSession(ctx context.Context, key SessionKey) (*Session, error) {
	sm.mu.RLock()
	if s, ok := sm.sessions[key]; ok {
		sm.mu.RUnlock()
		s.touch()
		return s, nil
	}
	sm.mu.RUnlock()

	id, err := sm.client.StartSession(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to start agent session")
	}
	session := &Session{Key: key, AgentSessionID: id, lastActivity: time.Now()}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	if existing, ok := sm.sessions[key]; ok {
		return existing, nil
	}
	sm.sessions[key] = session
	return session, nil
}

// Draft sends grievance in the peer's session. A session lost on the server
// is replaced once and the request retried.
func (sm *SessionManager) Draft(ctx context.Context, key SessionKey, grievance string) (string, error) {
	session, err := sm.GetOrCreateSession(ctx, key)
	if err != nil {
		return "", err
	}
	notice, err := sm.client.DraftNotice(ctx, session.AgentSessionID, grievance)
	if err != nil && connectrpc.IsNotFound(err) {
		sm.forget(key)
		if session, err = sm.GetOrCreateSession(ctx, key); err != nil {
			return "", err
		}
		notice, err = sm.client.DraftNotice(ctx, session.AgentSessionID, grievance)
	}
	return notice, err
}

// Transcript returns the peer's transcript, or nil when the peer has no session.
func (sm *SessionManager) Transcript(ctx context.Context, key SessionKey, maxEntries int) ([]domain.TranscriptEntry, error) {
	sm.mu.RLock()
	session, ok := sm.sessions[key]
	sm.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	entries, err := sm.client.GetTranscript(ctx, session.AgentSessionID, maxEntries)
	if connectrpc.IsNotFound(err) {
		sm.forget(key)
		return nil, nil
	}
	return entries, err
}

// ClearSession clears the peer's history and forgets the session.
func (sm *SessionManager) ClearSession(ctx context.Context, key SessionKey) error {
	session, ok := sm.forget(key)
	if !ok {
		return nil
	}
	err := sm.client.ClearSession(ctx, session.AgentSessionID)
	if connectrpc.IsNotFound(err) {
		return nil
	}
	return err
}

// ReapIdle forgets sessions idle for longer than maxIdle and returns their count.
func (sm *SessionManager) ReapIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	sm.mu.Lock()
	defer sm.mu.Unlock()
	n := 0
	for key, s := range sm.sessions {
		if s.LastActivity().Before(cutoff) {
			delete(sm.sessions, key)
			n++
		}
	}
	return n
}

// Len returns the number of tracked sessions.
func (sm *SessionManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

func (sm *SessionManager) forget(key SessionKey) (*Session, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s, ok := sm.sessions[key]
	delete(sm.sessions, key)
	return s, ok
}

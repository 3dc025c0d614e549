package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/internal/repository"
	"github.com/fpt/notice-cli/pkg/agent/domain"
	"github.com/fpt/notice-cli/pkg/agent/executor"
	pkgLogger "github.com/fpt/notice-cli/pkg/logger"
)

// Drafter runs one drafting request. *executor.Executor implements it.
type Drafter interface {
	Run(ctx context.Context, input string, transcript []domain.TranscriptEntry, opts ...executor.RunOption) (string, error)
}

// DrafterFactory builds a Drafter on first use. A failed build is retried on
// the next request, so a missing key is reported per request.
type DrafterFactory func() (Drafter, error)

// AgentFactory returns a DrafterFactory over BuildAgent.
func AgentFactory(build func() (*executor.Executor, error)) DrafterFactory {
	return func() (Drafter, error) {
		e, err := build()
		if err != nil {
			return nil, err
		}
		return e, nil
	}
}

// Memoize shares one successfully built Drafter across callers. A failed
// build is retried on the next call.
func Memoize(factory DrafterFactory) DrafterFactory {
	var (
		mu      sync.Mutex
		drafter Drafter
	)
	return func() (Drafter, error) {
		mu.Lock()
		defer mu.Unlock()
		if drafter != nil {
			return drafter, nil
		}
		d, err := factory()
		if err != nil {
			return nil, err
		}
		drafter = d
		return d, nil
	}
}

// Session owns one transcript and the drafter serving it.
type Session struct {
	id      string
	factory DrafterFactory
	timeout time.Duration
	logger  *pkgLogger.Logger

	mu         sync.Mutex
	drafter    Drafter
	transcript domain.Transcript
	lastActive time.Time
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithRequestTimeout bounds each DraftNotice call.
func WithRequestTimeout(d time.Duration) SessionOption {
	return func(s *Session) { s.timeout = d }
}

// WithSessionID fixes the session ID instead of generating one.
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithTranscript seeds the session with prior turns.
func WithTranscript(entries []domain.TranscriptEntry) SessionOption {
	return func(s *Session) { s.transcript = *domain.NewTranscript(entries) }
}

// NewSession creates an empty session.
func NewSession(factory DrafterFactory, opts ...SessionOption) *Session {
	s := &Session{
		id:         uuid.NewString(),
		factory:    factory,
		lastActive: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = pkgLogger.NewComponentLogger("session").WithSession(s.id)
	return s
}

func (s *Session) ID() string { return s.id }

// DraftNotice drafts a notice for grievance using the session transcript as
// context. The exchange is appended only when drafting succeeds.
func (s *Session) DraftNotice(ctx context.Context, grievance string, opts ...executor.RunOption) (string, error) {
	grievance = strings.TrimSpace(grievance)
	if grievance == "" {
		return "", ErrEmptyGrievance
	}

	drafter, err := s.getDrafter()
	if err != nil {
		s.logger.WarnWithIntention(pkgLogger.IntentionConfig, "Agent unavailable", "error", err)
		return "", err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.touch()
	output, err := drafter.Run(ctx, grievance, s.Transcript(), opts...)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.transcript.AppendExchange(grievance, output)
	s.lastActive = time.Now()
	s.mu.Unlock()

	s.logger.InfoWithIntention(pkgLogger.IntentionSuccess, "Notice ready", "chars", len(output))
	return output, nil
}

func (s *Session) getDrafter() (Drafter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drafter != nil {
		return s.drafter, nil
	}
	d, err := s.factory()
	if err != nil {
		return nil, err
	}
	s.drafter = d
	return d, nil
}

// ClearHistory empties the transcript. A draft already in flight is not
// cancelled; when it succeeds its exchange is appended to the cleared
// transcript.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript.Clear()
	s.lastActive = time.Now()
}

// Transcript returns a copy of the entries.
func (s *Session) Transcript() []domain.TranscriptEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Entries()
}

// LastActive reports when the session was last used.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// SaveTranscript exports the session transcript through repo.
func SaveTranscript(s *Session, repo repository.TranscriptRepository) error {
	record := repository.TranscriptRecord{
		SessionID: s.ID(),
		SavedAt:   time.Now().UTC(),
		Entries:   s.Transcript(),
	}
	return errors.Wrap(repo.Save(record), "failed to save transcript")
}

// LoadTranscript reads a saved transcript and returns an option seeding a
// session with it, keeping the saved session ID.
func LoadTranscript(repo repository.TranscriptRepository) (SessionOption, error) {
	record, err := repo.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load transcript")
	}
	return func(s *Session) {
		WithSessionID(record.SessionID)(s)
		WithTranscript(record.Entries)(s)
	}, nil
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// SessionStore keeps sessions for the network front ends.
type SessionStore struct {
	factory DrafterFactory
	opts    []SessionOption

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore creates sessions sharing factory and opts.
func NewSessionStore(factory DrafterFactory, opts ...SessionOption) *SessionStore {
	return &SessionStore{factory: factory, opts: opts, sessions: make(map[string]*Session)}
}

// Create starts a new session.
func (st *SessionStore) Create() *Session {
	s := NewSession(st.factory, st.opts...)
	st.mu.Lock()
	st.sessions[s.ID()] = s
	st.mu.Unlock()
	return s
}

// Get returns the session with id.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// GetOrCreate returns the session with id, creating it under that id when absent.
// An empty id creates a session with a fresh id.
func (st *SessionStore) GetOrCreate(id string) *Session {
	if id == "" {
		return st.Create()
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok {
		return s
	}
	s := NewSession(st.factory, append(append([]SessionOption(nil), st.opts...), WithSessionID(id))...)
	st.sessions[id] = s
	return s
}

// Delete removes a session. It reports whether it existed.
func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	return ok
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Reap removes sessions idle for longer than maxIdle and returns how many were removed.
func (st *SessionStore) Reap(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if s.LastActive().Before(cutoff) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/internal/infra"
	"github.com/fpt/notice-cli/pkg/agent/domain"
	"github.com/fpt/notice-cli/pkg/agent/executor"
)

type stubDrafter struct {
	mu       sync.Mutex
	reply    string
	err      error
	received [][]domain.TranscriptEntry
}

func (d *stubDrafter) Run(ctx context.Context, input string, transcript []domain.TranscriptEntry, _ ...executor.RunOption) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.received = append(d.received, transcript)
	if d.err != nil {
		return "", d.err
	}
	return d.reply + " for " + input, nil
}

func factoryFor(d Drafter) DrafterFactory {
	return func() (Drafter, error) { return d, nil }
}

func TestSessionDraftNoticeAppendsOnSuccess(t *testing.T) {
	d := &stubDrafter{reply: "Notice"}
	s := NewSession(factoryFor(d))

	out, err := s.DraftNotice(context.Background(), "  deposit withheld  ")
	if err != nil {
		t.Fatalf("DraftNotice: %v", err)
	}
	if out != "Notice for deposit withheld" {
		t.Errorf("output = %q", out)
	}

	if _, err := s.DraftNotice(context.Background(), "refund refused"); err != nil {
		t.Fatalf("second DraftNotice: %v", err)
	}

	entries := s.Transcript()
	if len(entries) != 4 {
		t.Fatalf("transcript len = %d, want 4", len(entries))
	}
	if entries[0].Role != domain.UserTurn || entries[0].Text != "deposit withheld" {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].Role != domain.AgentTurn {
		t.Errorf("entry 1 role = %v", entries[1].Role)
	}
	if len(d.received[0]) != 0 || len(d.received[1]) != 2 {
		t.Errorf("drafter saw transcripts of len %d and %d", len(d.received[0]), len(d.received[1]))
	}
}

func TestSessionDraftNoticeFailureLeavesTranscript(t *testing.T) {
	d := &stubDrafter{reply: "Notice"}
	s := NewSession(factoryFor(d))
	if _, err := s.DraftNotice(context.Background(), "first"); err != nil {
		t.Fatalf("DraftNotice: %v", err)
	}

	d.err = &domain.AgentRuntimeError{State: domain.StateFailed, Steps: 2, Err: domain.ErrStepBudgetExhausted}
	_, err := s.DraftNotice(context.Background(), "second")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := len(s.Transcript()); got != 2 {
		t.Errorf("transcript len = %d, want 2", got)
	}
}

func TestSessionRejectsEmptyGrievance(t *testing.T) {
	called := false
	s := NewSession(func() (Drafter, error) {
		called = true
		return &stubDrafter{}, nil
	})

	_, err := s.DraftNotice(context.Background(), " \n\t ")
	if !errors.Is(err, ErrEmptyGrievance) {
		t.Fatalf("err = %v, want ErrEmptyGrievance", err)
	}
	if called {
		t.Error("factory should not run for empty input")
	}
}

func TestSessionRetriesFailedBuild(t *testing.T) {
	builds := 0
	d := &stubDrafter{reply: "Notice"}
	s := NewSession(func() (Drafter, error) {
		builds++
		if builds == 1 {
			return nil, domain.NewMissingCredentialError("GROQ_API_KEY")
		}
		return d, nil
	})

	_, err := s.DraftNotice(context.Background(), "grievance")
	var ce *domain.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want ConfigurationError", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := s.DraftNotice(context.Background(), "grievance"); err != nil {
			t.Fatalf("DraftNotice: %v", err)
		}
	}
	if builds != 2 {
		t.Errorf("builds = %d, want 2", builds)
	}
}

func TestSessionClearHistory(t *testing.T) {
	s := NewSession(factoryFor(&stubDrafter{reply: "Notice"}))
	if _, err := s.DraftNotice(context.Background(), "grievance"); err != nil {
		t.Fatalf("DraftNotice: %v", err)
	}
	s.ClearHistory()
	if got := len(s.Transcript()); got != 0 {
		t.Errorf("transcript len after clear = %d", got)
	}
}

type blockingDrafter struct{}

func (blockingDrafter) Run(ctx context.Context, _ string, _ []domain.TranscriptEntry, _ ...executor.RunOption) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestSessionRequestTimeout(t *testing.T) {
	s := NewSession(factoryFor(blockingDrafter{}), WithRequestTimeout(20*time.Millisecond))
	_, err := s.DraftNotice(context.Background(), "grievance")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestSessionStore(t *testing.T) {
	st := NewSessionStore(factoryFor(&stubDrafter{reply: "Notice"}))

	a := st.Create()
	if got, ok := st.Get(a.ID()); !ok || got != a {
		t.Fatal("Get did not return created session")
	}
	b := st.GetOrCreate("peer-1")
	if b.ID() != "peer-1" {
		t.Errorf("id = %q, want peer-1", b.ID())
	}
	if st.GetOrCreate("peer-1") != b {
		t.Error("GetOrCreate should return the existing session")
	}
	if st.Len() != 2 {
		t.Errorf("Len = %d, want 2", st.Len())
	}
	if !st.Delete(a.ID()) || st.Delete(a.ID()) {
		t.Error("Delete should report existence once")
	}

	time.Sleep(10 * time.Millisecond)
	if n := st.Reap(time.Hour); n != 0 {
		t.Errorf("Reap(hour) = %d, want 0", n)
	}
	if n := st.Reap(time.Millisecond); n != 1 {
		t.Errorf("Reap(ms) = %d, want 1", n)
	}
	if st.Len() != 0 {
		t.Errorf("Len after reap = %d", st.Len())
	}
}

func TestMemoizeSharesDrafter(t *testing.T) {
	builds := 0
	shared := Memoize(func() (Drafter, error) {
		builds++
		if builds == 1 {
			return nil, errors.New("transient")
		}
		return &stubDrafter{reply: "Notice"}, nil
	})

	if _, err := shared(); err == nil {
		t.Fatal("expected first build to fail")
	}
	a, err := shared()
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	b, _ := shared()
	if a != b || builds != 2 {
		t.Errorf("drafters differ or builds = %d", builds)
	}
}

func TestWithTranscriptSeedsContext(t *testing.T) {
	d := &stubDrafter{reply: "Notice"}
	seed := []domain.TranscriptEntry{
		{Role: domain.UserTurn, Text: "earlier"},
		{Role: domain.AgentTurn, Text: "earlier notice"},
	}
	s := NewSession(factoryFor(d), WithTranscript(seed))
	if _, err := s.DraftNotice(context.Background(), "follow up"); err != nil {
		t.Fatalf("DraftNotice: %v", err)
	}
	if len(d.received[0]) != 2 || d.received[0][0].Text != "earlier" {
		t.Errorf("drafter saw %+v", d.received[0])
	}
	if len(s.Transcript()) != 4 {
		t.Errorf("transcript len = %d, want 4", len(s.Transcript()))
	}
}

func TestSaveThenLoadTranscript(t *testing.T) {
	d := &stubDrafter{reply: "Notice"}
	s := NewSession(factoryFor(d))
	if _, err := s.DraftNotice(context.Background(), "deposit withheld"); err != nil {
		t.Fatalf("DraftNotice: %v", err)
	}
	repo := infra.NewFileTranscriptRepository(filepath.Join(t.TempDir(), "t.json"))
	if err := SaveTranscript(s, repo); err != nil {
		t.Fatalf("SaveTranscript: %v", err)
	}

	opt, err := LoadTranscript(repo)
	if err != nil {
		t.Fatalf("LoadTranscript: %v", err)
	}
	resumed := NewSession(factoryFor(d), opt)
	if resumed.ID() != s.ID() {
		t.Errorf("ID = %q, want %q", resumed.ID(), s.ID())
	}
	got := resumed.Transcript()
	if len(got) != 2 || got[0].Text != "deposit withheld" || got[1].Text != "Notice" {
		t.Errorf("transcript = %+v", got)
	}
}

func TestLoadTranscriptMissingFileStartsEmpty(t *testing.T) {
	repo := infra.NewFileTranscriptRepository(filepath.Join(t.TempDir(), "missing.json"))
	opt, err := LoadTranscript(repo)
	if err != nil {
		t.Fatalf("LoadTranscript: %v", err)
	}
	s := NewSession(factoryFor(&stubDrafter{}), opt)
	if s.ID() == "" || len(s.Transcript()) != 0 {
		t.Errorf("id = %q, transcript = %+v", s.ID(), s.Transcript())
	}
}

type gatedDrafter struct {
	started chan struct{}
	release chan struct{}
}

func (d *gatedDrafter) Run(ctx context.Context, input string, _ []domain.TranscriptEntry, _ ...executor.RunOption) (string, error) {
	close(d.started)
	<-d.release
	return "notice", nil
}

func TestClearHistoryDuringDraftKeepsFinishedExchange(t *testing.T) {
	d := &gatedDrafter{started: make(chan struct{}), release: make(chan struct{})}
	s := NewSession(factoryFor(d), WithTranscript([]domain.TranscriptEntry{
		{Role: domain.UserTurn, Text: "old"},
		{Role: domain.AgentTurn, Text: "old notice"},
	}))

	done := make(chan error, 1)
	go func() {
		_, err := s.DraftNotice(context.Background(), "new")
		done <- err
	}()

	<-d.started
	s.ClearHistory()
	close(d.release)
	if err := <-done; err != nil {
		t.Fatalf("DraftNotice: %v", err)
	}

	got := s.Transcript()
	if len(got) != 2 || got[0].Text != "new" || got[1].Text != "notice" {
		t.Errorf("transcript = %+v, want only the finished exchange", got)
	}
}

package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/pkg/agent/domain"
)

type fakeAgent struct {
	mu         sync.Mutex
	next       int
	sessions   map[string][]domain.TranscriptEntry
	draftErr   error
	startCalls int
}

func newFakeAgent() *fakeAgent {
	return &fakeAgent{sessions: make(map[string][]domain.TranscriptEntry)}
}

func (f *fakeAgent) StartSession(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.startCalls++
	id := fmt.Sprintf("s%d", f.next)
	f.sessions[id] = nil
	return id, nil
}

func (f *fakeAgent) DraftNotice(ctx context.Context, sessionID, grievance string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draftErr != nil {
		return "", f.draftErr
	}
	entries, ok := f.sessions[sessionID]
	if !ok {
		return "", connect.NewError(connect.CodeNotFound, errors.New("gone"))
	}
	notice := "Notice re " + grievance
	f.sessions[sessionID] = append(entries,
		domain.TranscriptEntry{Role: domain.UserTurn, Text: grievance},
		domain.TranscriptEntry{Role: domain.AgentTurn, Text: notice})
	return notice, nil
}

func (f *fakeAgent) ClearSession(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[sessionID] = nil
	return nil
}

func (f *fakeAgent) GetTranscript(ctx context.Context, sessionID string, maxEntries int) ([]domain.TranscriptEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.TranscriptEntry(nil), f.sessions[sessionID]...), nil
}

func (f *fakeAgent) drop(id string) {
	f.mu.Lock()
	delete(f.sessions, id)
	f.mu.Unlock()
}

type fakeAdapter struct {
	mu     sync.Mutex
	sent   []OutboundMessage
	typing int
}

func (a *fakeAdapter) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (a *fakeAdapter) Stop() error { return nil }

func (a *fakeAdapter) Send(ctx context.Context, msg OutboundMessage) error {
	a.mu.Lock()
	a.sent = append(a.sent, msg)
	a.mu.Unlock()
	return nil
}

func (a *fakeAdapter) SendTyping(ctx context.Context, channelID string) error {
	a.mu.Lock()
	a.typing++
	a.mu.Unlock()
	return nil
}

func newTestGateway(t *testing.T, agent AgentClient) (*Gateway, *fakeAdapter) {
	t.Helper()
	gw, err := NewGateway(DefaultConfig(), agent)
	if err != nil {
		t.Fatalf("NewGateway: %v", err)
	}
	a := &fakeAdapter{}
	gw.AddAdapter("discord", a)
	return gw, a
}

func inbound(text string) InboundMessage {
	return InboundMessage{ChannelType: "discord", ChannelID: "c1", PeerID: "u1", PeerName: "user", Text: text, ReplyToID: "m1"}
}

func nextOutbound(t *testing.T, gw *Gateway) OutboundMessage {
	t.Helper()
	select {
	case msg := <-gw.bus.Outbound:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no outbound message")
		return OutboundMessage{}
	}
}

func TestGatewayDraftsAndReplies(t *testing.T) {
	agent := newFakeAgent()
	gw, adapter := newTestGateway(t, agent)

	gw.handleInbound(context.Background(), inbound("deposit withheld"))
	out := nextOutbound(t, gw)

	if out.ReplyToID != "m1" || out.ChannelID != "c1" {
		t.Errorf("routing = %+v", out)
	}
	if !strings.Contains(out.Text, "📜 Drafted Notice") || !strings.Contains(out.Text, "Notice re deposit withheld") {
		t.Errorf("text = %q", out.Text)
	}
	adapter.mu.Lock()
	typing := adapter.typing
	adapter.mu.Unlock()
	if typing == 0 {
		t.Error("expected a typing indicator")
	}
}

func TestGatewayCommands(t *testing.T) {
	agent := newFakeAgent()
	gw, _ := newTestGateway(t, agent)
	ctx := context.Background()

	gw.handleInbound(ctx, inbound("!history"))
	if out := nextOutbound(t, gw); !strings.Contains(out.Text, "No conversation history") {
		t.Errorf("empty history = %q", out.Text)
	}

	gw.handleInbound(ctx, inbound("refund refused"))
	nextOutbound(t, gw)

	gw.handleInbound(ctx, inbound("!history"))
	if out := nextOutbound(t, gw); !strings.Contains(out.Text, "👤 You: refund refused") {
		t.Errorf("history = %q", out.Text)
	}

	gw.handleInbound(ctx, inbound("!clear"))
	if out := nextOutbound(t, gw); !strings.Contains(out.Text, "cleared") {
		t.Errorf("clear = %q", out.Text)
	}
	if gw.sessions.Len() != 0 {
		t.Errorf("sessions after clear = %d", gw.sessions.Len())
	}

	gw.handleInbound(ctx, inbound("!bogus"))
	if out := nextOutbound(t, gw); !strings.Contains(out.Text, "Unknown command: !bogus") {
		t.Errorf("unknown = %q", out.Text)
	}
}

func TestGatewayRendersErrors(t *testing.T) {
	agent := newFakeAgent()
	agent.draftErr = &domain.ConfigurationError{Reason: "TAVILY_API_KEY is missing in .env"}
	gw, _ := newTestGateway(t, agent)

	gw.handleInbound(context.Background(), inbound("grievance"))
	out := nextOutbound(t, gw)
	if out.Text != "❌ Configuration Error: TAVILY_API_KEY is missing in .env" {
		t.Errorf("text = %q", out.Text)
	}
}

func TestSessionManagerRecreatesLostSession(t *testing.T) {
	agent := newFakeAgent()
	sm := NewSessionManager(agent)
	ctx := context.Background()
	key := SessionKey{ChannelType: "discord", ChannelID: "c1", PeerID: "u1"}

	s, err := sm.GetOrCreateSession(ctx, key)
	if err != nil {
		t.Fatalf("GetOrCreateSession: %v", err)
	}
	agent.drop(s.AgentSessionID)

	notice, err := sm.Draft(ctx, key, "grievance")
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if notice != "Notice re grievance" {
		t.Errorf("notice = %q", notice)
	}
	if agent.startCalls != 2 {
		t.Errorf("StartSession calls = %d, want 2", agent.startCalls)
	}
}

func TestSessionManagerReapIdle(t *testing.T) {
	sm := NewSessionManager(newFakeAgent())
	ctx := context.Background()
	for _, peer := range []string{"a", "b"} {
		if _, err := sm.GetOrCreateSession(ctx, SessionKey{ChannelType: "discord", PeerID: peer}); err != nil {
			t.Fatal(err)
		}
	}
	time.Sleep(5 * time.Millisecond)
	if n := sm.ReapIdle(time.Hour); n != 0 {
		t.Errorf("ReapIdle(hour) = %d", n)
	}
	if n := NewReaper(sm, time.Millisecond).sweep(); n != 2 {
		t.Errorf("sweep = %d, want 2", n)
	}
	if sm.Len() != 0 {
		t.Errorf("Len = %d", sm.Len())
	}
}

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   []string
	}{
		{"short", "hello", 10, []string{"hello"}},
		{"newline boundary", "line one\nline two\nline three", 12, []string{"line one\n", "line two\n", "line three"}},
		{"hard cut", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"multibyte", "₹₹₹₹₹", 2, []string{"₹₹", "₹₹", "₹"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitMessage(tt.text, tt.maxLen)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("splitMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitMessageDiscordLimit(t *testing.T) {
	text := strings.Repeat("Legal notice paragraph.\n", 200)
	chunks := splitMessage(text, discordMessageLimit)
	if len(chunks) < 2 {
		t.Fatalf("chunks = %d", len(chunks))
	}
	for i, c := range chunks {
		if len([]rune(c)) > discordMessageLimit {
			t.Errorf("chunk %d has %d chars", i, len([]rune(c)))
		}
	}
	if strings.Join(chunks, "") != text {
		t.Error("chunks do not reassemble the text")
	}
}

func TestDiscordAccept(t *testing.T) {
	a := &DiscordAdapter{
		config:     DiscordConfig{MentionOnly: true},
		allowUsers: toSet([]string{"u1"}),
		allowChans: toSet(nil),
	}
	bot := &discordgo.User{ID: "bot"}
	user := &discordgo.User{ID: "u1", Username: "alice"}

	tests := []struct {
		name string
		msg  *discordgo.Message
		ok   bool
		text string
	}{
		{"dm accepted", &discordgo.Message{ID: "m", ChannelID: "c", Author: user, Content: " refund "}, true, "refund"},
		{"bot author ignored", &discordgo.Message{Author: &discordgo.User{ID: "x", Bot: true}, Content: "hi"}, false, ""},
		{"user not allowed", &discordgo.Message{Author: &discordgo.User{ID: "u2"}, Content: "hi"}, false, ""},
		{"guild without mention", &discordgo.Message{GuildID: "g", Author: user, Content: "hi"}, false, ""},
		{"guild with mention", &discordgo.Message{GuildID: "g", Author: user, Content: "<@bot> deposit", Mentions: []*discordgo.User{bot}}, true, "deposit"},
		{"mention only", &discordgo.Message{GuildID: "g", Author: user, Content: "<@bot>", Mentions: []*discordgo.User{bot}}, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := a.accept(tt.msg, "bot")
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got.Text != tt.text {
				t.Errorf("text = %q, want %q", got.Text, tt.text)
			}
		})
	}
}

package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/internal/app"
	"github.com/fpt/notice-cli/pkg/agent/domain"
	"github.com/fpt/notice-cli/pkg/message"
	pkgLogger "github.com/fpt/notice-cli/pkg/logger"
)

const (
	typingRefresh     = 8 * time.Second
	historyMaxEntries = 10
	historyEntryChars = 300
)

// Gateway routes channel messages to notice sessions on the RPC server.
type Gateway struct {
	config   *Config
	bus      *MessageBus
	sessions *SessionManager
	reaper   *Reaper
	adapters map[string]Adapter
	logger   *pkgLogger.Logger
}

// NewGateway creates a gateway over client. The Discord adapter is added when
// a token is configured.
func NewGateway(cfg *Config, client AgentClient) (*Gateway, error) {
	bus := NewMessageBus(64)
	sessions := NewSessionManager(client)

	gw := &Gateway{
		config:   cfg,
		bus:      bus,
		sessions: sessions,
		reaper:   NewReaper(sessions, cfg.SessionTimeoutDuration()),
		adapters: make(map[string]Adapter),
		logger:   pkgLogger.NewComponentLogger("gateway"),
	}

	if cfg.Discord.Token != "" {
		discord, err := NewDiscordAdapter(bus, cfg.Discord)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create discord adapter")
		}
		gw.adapters["discord"] = discord
	}

	return gw, nil
}

// AddAdapter registers an adapter for a channel type.
func (gw *Gateway) AddAdapter(channelType string, a Adapter) {
	gw.adapters[channelType] = a
}

// Bus exposes the message bus adapters publish to.
func (gw *Gateway) Bus() *MessageBus { return gw.bus }

// Run starts all adapters and processes messages. Blocks until ctx is cancelled.
func (gw *Gateway) Run(ctx context.Context) error {
	if len(gw.adapters) == 0 {
		return errors.New("no channel adapters configured")
	}

	for name, a := range gw.adapters {
		gw.logger.InfoWithIntention(pkgLogger.IntentionStatus, "Starting adapter", "adapter", name)
		go func(n string, ad Adapter) {
			if err := ad.Start(ctx); err != nil {
				gw.logger.ErrorWithIntention(pkgLogger.IntentionError, "Adapter failed", "adapter", n, "error", err)
			}
		}(name, a)
	}

	go gw.reaper.Start(ctx)
	go gw.dispatchOutbound(ctx)

	gw.logger.InfoWithIntention(pkgLogger.IntentionStatus, "Gateway running, processing messages")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-gw.bus.Inbound:
			go gw.handleInbound(ctx, msg)
		}
	}
}

func keyFor(msg InboundMessage) SessionKey {
	return SessionKey{
		ChannelType: msg.ChannelType,
		ChannelID:   msg.ChannelID,
		PeerID:      msg.PeerID,
	}
}

func (gw *Gateway) handleInbound(ctx context.Context, msg InboundMessage) {
	if strings.HasPrefix(msg.Text, "!") {
		gw.handleCommand(ctx, msg)
		return
	}

	stopTyping := gw.keepTyping(ctx, msg)
	notice, err := gw.sessions.Draft(ctx, keyFor(msg), msg.Text)
	stopTyping()

	if err != nil {
		gw.logger.WarnWithIntention(pkgLogger.IntentionError, "Draft failed", "peer", msg.PeerName, "error", err)
		gw.reply(msg, "❌ "+app.RenderError(err))
		return
	}
	gw.reply(msg, formatNotice(notice))
}

// keepTyping refreshes the typing indicator until the returned func is called.
func (gw *Gateway) keepTyping(ctx context.Context, msg InboundMessage) func() {
	a, ok := gw.adapters[msg.ChannelType]
	if !ok {
		return func() {}
	}
	_ = a.SendTyping(ctx, msg.ChannelID)

	typingCtx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(typingRefresh)
		defer ticker.Stop()
		for {
			select {
			case <-typingCtx.Done():
				return
			case <-ticker.C:
				_ = a.SendTyping(typingCtx, msg.ChannelID)
			}
		}
	}()
	return cancel
}

func (gw *Gateway) handleCommand(ctx context.Context, msg InboundMessage) {
	parts := strings.Fields(msg.Text)
	cmd := strings.TrimPrefix(parts[0], "!")
	key := keyFor(msg)

	var response string
	switch cmd {
	case "clear":
		if err := gw.sessions.ClearSession(ctx, key); err != nil {
			response = "❌ " + app.RenderError(err)
		} else {
			response = "🧹 Conversation cleared. Starting fresh."
		}
	case "history":
		entries, err := gw.sessions.Transcript(ctx, key, historyMaxEntries)
		if err != nil {
			response = "❌ " + app.RenderError(err)
		} else {
			response = formatHistory(entries)
		}
	case "help":
		response = "**Available commands:**\n" +
			"`!clear` Clear conversation\n" +
			"`!history` Show recent conversation\n" +
			"`!help` Show this help\n\n" +
			"Anything else is treated as a grievance, e.g. " + strings.TrimPrefix(app.InputExample, "E.g., ")
	default:
		response = fmt.Sprintf("Unknown command: !%s. Use !help for available commands.", cmd)
	}

	gw.reply(msg, response)
}

func (gw *Gateway) reply(orig InboundMessage, text string) {
	gw.bus.Outbound <- OutboundMessage{
		ChannelType: orig.ChannelType,
		ChannelID:   orig.ChannelID,
		Text:        text,
		ReplyToID:   orig.ReplyToID,
	}
}

func (gw *Gateway) dispatchOutbound(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-gw.bus.Outbound:
			if a, ok := gw.adapters[msg.ChannelType]; ok {
				if err := a.Send(ctx, msg); err != nil {
					gw.logger.ErrorWithIntention(pkgLogger.IntentionNetwork, "Failed to send outbound message", "error", err)
				}
			}
		}
	}
}

func formatNotice(notice string) string {
	return fmt.Sprintf("**%s**\n---\n%s\n---", app.NoticeHeader, strings.TrimSpace(notice))
}

func formatHistory(entries []domain.TranscriptEntry) string {
	if len(entries) == 0 {
		return "📜 No conversation history found."
	}
	var b strings.Builder
	b.WriteString("**Recent conversation:**\n")
	for _, e := range entries {
		label := "👤 You"
		if e.Role == domain.AgentTurn {
			label = "⚖️ Agent"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, message.Truncate(e.Text, historyEntryChars))
	}
	return b.String()
}

// Close shuts down all adapters.
func (gw *Gateway) Close() error {
	for _, a := range gw.adapters {
		_ = a.Stop()
	}
	return nil
}

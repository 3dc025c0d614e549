package gateway

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"

	pkgLogger "github.com/fpt/notice-cli/pkg/logger"
)

// discordMessageLimit is Discord's maximum message length in characters.
const discordMessageLimit = 2000

// DiscordAdapter implements the Adapter interface for Discord.
type DiscordAdapter struct {
	session     *discordgo.Session
	bus         *MessageBus
	config      DiscordConfig
	logger      *pkgLogger.Logger
	allowGuilds map[string]bool
	allowChans  map[string]bool
	allowUsers  map[string]bool

	mu        sync.RWMutex
	botUserID string
}

// NewDiscordAdapter creates a Discord adapter.
func NewDiscordAdapter(bus *MessageBus, cfg DiscordConfig) (*DiscordAdapter, error) {
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create discord session")
	}

	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

	a := &DiscordAdapter{
		session:     dg,
		bus:         bus,
		config:      cfg,
		logger:      pkgLogger.NewComponentLogger("discord"),
		allowGuilds: toSet(cfg.AllowedGuildIDs),
		allowChans:  toSet(cfg.AllowedChannelIDs),
		allowUsers:  toSet(cfg.AllowedUserIDs),
	}

	dg.AddHandler(a.handleMessage)
	dg.AddHandler(a.handleReady)

	return a, nil
}

func (a *DiscordAdapter) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	a.mu.Lock()
	a.botUserID = r.User.ID
	a.mu.Unlock()
	a.logger.InfoWithIntention(pkgLogger.IntentionNetwork, "Discord bot connected", "user", r.User.Username)
}

func (a *DiscordAdapter) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	a.mu.RLock()
	botID := a.botUserID
	a.mu.RUnlock()

	msg, ok := a.accept(m.Message, botID)
	if !ok {
		return
	}
	a.bus.Inbound <- msg
}

// accept applies the allowlists and mention rule, and strips the bot mention.
func (a *DiscordAdapter) accept(m *discordgo.Message, botID string) (InboundMessage, bool) {
	if m.Author == nil || m.Author.ID == botID || m.Author.Bot {
		return InboundMessage{}, false
	}
	if len(a.allowUsers) > 0 && !a.allowUsers[m.Author.ID] {
		return InboundMessage{}, false
	}
	if m.GuildID != "" && len(a.allowGuilds) > 0 && !a.allowGuilds[m.GuildID] {
		return InboundMessage{}, false
	}
	if len(a.allowChans) > 0 && !a.allowChans[m.ChannelID] {
		return InboundMessage{}, false
	}
	if m.GuildID != "" && a.config.MentionOnly && !isBotMentioned(m.Mentions, botID) {
		return InboundMessage{}, false
	}

	text := m.Content
	if botID != "" {
		text = strings.ReplaceAll(text, "<@"+botID+">", "")
		text = strings.ReplaceAll(text, "<@!"+botID+">", "")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return InboundMessage{}, false
	}

	return InboundMessage{
		ChannelType: "discord",
		ChannelID:   m.ChannelID,
		PeerID:      m.Author.ID,
		PeerName:    m.Author.Username,
		Text:        text,
		ReplyToID:   m.ID,
		Timestamp:   m.Timestamp,
	}, true
}

// Start connects to Discord and blocks until ctx is cancelled.
func (a *DiscordAdapter) Start(ctx context.Context) error {
	a.logger.InfoWithIntention(pkgLogger.IntentionStatus, "Starting Discord adapter")

	if err := a.session.Open(); err != nil {
		return errors.Wrap(err, "failed to open discord connection")
	}

	<-ctx.Done()
	return a.session.Close()
}

// Stop closes the Discord connection.
func (a *DiscordAdapter) Stop() error {
	return a.session.Close()
}

// Send sends a message to a Discord channel, splitting if over 2000 chars.
// The first chunk replies to the original message when ReplyToID is set.
func (a *DiscordAdapter) Send(ctx context.Context, msg OutboundMessage) error {
	for i, chunk := range splitMessage(msg.Text, discordMessageLimit) {
		var err error
		if i == 0 && msg.ReplyToID != "" {
			ref := &discordgo.MessageReference{MessageID: msg.ReplyToID, ChannelID: msg.ChannelID}
			_, err = a.session.ChannelMessageSendReply(msg.ChannelID, chunk, ref, discordgo.WithContext(ctx))
		} else {
			_, err = a.session.ChannelMessageSend(msg.ChannelID, chunk, discordgo.WithContext(ctx))
		}
		if err != nil {
			return errors.Wrap(err, "failed to send discord message")
		}
	}
	return nil
}

// SendTyping shows a typing indicator.
func (a *DiscordAdapter) SendTyping(ctx context.Context, channelID string) error {
	return a.session.ChannelTyping(channelID, discordgo.WithContext(ctx))
}

// splitMessage splits text into chunks of at most maxLen characters,
// preferring newline boundaries. Multi-byte characters are never cut.
func splitMessage(text string, maxLen int) []string {
	if utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for text != "" {
		if utf8.RuneCountInString(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		limit := byteOffset(text, maxLen)
		cutAt := limit
		if idx := strings.LastIndex(text[:limit], "\n"); idx > 0 {
			cutAt = idx + 1
		}

		chunks = append(chunks, text[:cutAt])
		text = text[cutAt:]
	}
	return chunks
}

// byteOffset returns the byte index just past the first n runes of s.
func byteOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}

func isBotMentioned(mentions []*discordgo.User, botID string) bool {
	for _, u := range mentions {
		if u.ID == botID {
			return true
		}
	}
	return false
}

func toSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

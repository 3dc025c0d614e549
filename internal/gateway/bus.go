package gateway

import "time"

// InboundMessage is a grievance or command arriving from a channel adapter.
type InboundMessage struct {
	ChannelType string // "discord"
	ChannelID   string
	PeerID      string
	PeerName    string
	Text        string
	ReplyToID   string // original message ID for threading
	Timestamp   time.Time
}

// OutboundMessage is a reply to send back to a channel.
type OutboundMessage struct {
	ChannelType string
	ChannelID   string
	Text        string
	ReplyToID   string // optional: reply to specific message
}

// MessageBus decouples channel adapters from agent routing.
type MessageBus struct {
	Inbound  chan InboundMessage
	Outbound chan OutboundMessage
}

// NewMessageBus creates a message bus with buffered channels.
func NewMessageBus(bufferSize int) *MessageBus {
	return &MessageBus{
		Inbound:  make(chan InboundMessage, bufferSize),
		Outbound: make(chan OutboundMessage, bufferSize),
	}
}

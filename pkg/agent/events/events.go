package events

import (
	"sync"
	"time"

	"github.com/fpt/notice-cli/pkg/agent/domain"
	"github.com/fpt/notice-cli/pkg/message"
)

// EventType represents different types of agent events
type EventType string

const (
	EventTypeStateChange   EventType = "state_change"
	EventTypeToolCallStart EventType = "tool_call_start"
	EventTypeToolResult    EventType = "tool_result"
	EventTypeRecovery      EventType = "recovery"
	EventTypeResponse      EventType = "response"
	EventTypeError         EventType = "error"
)

// AgentEvent represents a structured event from the agent
type AgentEvent struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Step      *StepInfo `json:"step,omitempty"`
}

// StepInfo places an event within the step budget
type StepInfo struct {
	Used    int `json:"used"`
	Maximum int `json:"maximum"`
}

type StateChangeData struct {
	From domain.AgentState `json:"from"`
	To   domain.AgentState `json:"to"`
}

type ToolCallStartData struct {
	ToolName  string                     `json:"tool_name"`
	Arguments message.ToolArgumentValues `json:"arguments"`
	CallID    string                     `json:"call_id,omitempty"`
}

type ToolResultData struct {
	ToolName string        `json:"tool_name"`
	CallID   string        `json:"call_id,omitempty"`
	Content  string        `json:"content"`
	IsError  bool          `json:"is_error"`
	Duration time.Duration `json:"duration"`
}

// RecoveryData describes output that triggered a recovery re-prompt
type RecoveryData struct {
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

type ResponseData struct {
	Text   string `json:"text"`
	Forced bool   `json:"forced"`
}

type ErrorData struct {
	Error   error  `json:"error"`
	Context string `json:"context,omitempty"`
}

// EventHandler is a function that processes agent events
type EventHandler func(event AgentEvent)

// EventEmitter provides methods for emitting agent events
type EventEmitter interface {
	EmitEvent(eventType EventType, data any, step *StepInfo)
	AddHandler(handler EventHandler)
}

// SimpleEventEmitter delivers events synchronously to its handlers.
type SimpleEventEmitter struct {
	mu       sync.RWMutex
	handlers []EventHandler
}

func NewSimpleEventEmitter(handlers ...EventHandler) *SimpleEventEmitter {
	e := &SimpleEventEmitter{}
	for _, h := range handlers {
		if h != nil {
			e.handlers = append(e.handlers, h)
		}
	}
	return e
}

func (e *SimpleEventEmitter) EmitEvent(eventType EventType, data any, step *StepInfo) {
	event := AgentEvent{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Step:      step,
	}

	e.mu.RLock()
	handlers := e.handlers
	e.mu.RUnlock()
	for _, handler := range handlers {
		handler(event)
	}
}

func (e *SimpleEventEmitter) AddHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
}

package domain

// TurnRole tags a transcript entry as a user turn or an agent turn.
type TurnRole int

const (
	UserTurn TurnRole = iota
	AgentTurn
)

func (r TurnRole) String() string {
	switch r {
	case UserTurn:
		return "user"
	case AgentTurn:
		return "agent"
	default:
		return "unknown"
	}
}

// TranscriptEntry is one displayed turn of a session.
type TranscriptEntry struct {
	Role TurnRole `json:"role"`
	Text string   `json:"text"`
}

// Transcript is the append-only turn history owned by a session.
// The zero value is an empty transcript.
type Transcript struct {
	entries []TranscriptEntry
}

// NewTranscript seeds a transcript from existing entries.
func NewTranscript(entries []TranscriptEntry) *Transcript {
	return &Transcript{entries: append([]TranscriptEntry(nil), entries...)}
}

// AppendExchange records a completed request: the user turn followed by the agent turn.
func (t *Transcript) AppendExchange(userText, agentText string) {
	t.entries = append(t.entries,
		TranscriptEntry{Role: UserTurn, Text: userText},
		TranscriptEntry{Role: AgentTurn, Text: agentText},
	)
}

// Entries returns a copy of the entries in order.
func (t *Transcript) Entries() []TranscriptEntry {
	return append([]TranscriptEntry(nil), t.entries...)
}

func (t *Transcript) Len() int {
	return len(t.entries)
}

// Clear resets the transcript to empty.
func (t *Transcript) Clear() {
	t.entries = nil
}

package logger

// Intention represents the semantic intent of a log line, orthogonal to level.
// The console handler turns it into an icon; the file handler keeps it as a
// structured attribute.
type Intention string

const (
	IntentionSearch  Intention = "search"
	IntentionDraft   Intention = "draft"
	IntentionRecover Intention = "recover"
	IntentionState   Intention = "state"
	IntentionNetwork Intention = "network"
	IntentionStatus  Intention = "status"
	IntentionSuccess Intention = "success"
	IntentionWarning Intention = "warning" // no icon mapping; level handles emphasis
	IntentionError   Intention = "error"   // no icon mapping; level handles emphasis
	IntentionDebug   Intention = "debug"
	IntentionCancel  Intention = "cancel"
	IntentionConfig  Intention = "config"
)

func iconFor(i Intention) string {
	switch i {
	case IntentionSearch:
		return "🔍"
	case IntentionDraft:
		return "📜"
	case IntentionRecover:
		return "🩹"
	case IntentionState:
		return "🔁"
	case IntentionNetwork:
		return "🌐"
	case IntentionStatus:
		return "ℹ️"
	case IntentionSuccess:
		return "✅"
	case IntentionDebug:
		return "🛠️"
	case IntentionCancel:
		return "🛑"
	case IntentionConfig:
		return "⚙️"
	default:
		return "➤"
	}
}

package domain

// AgentState is a state of the bounded think/act loop.
type AgentState string

const (
	StateThinking     AgentState = "thinking"
	StateActingSearch AgentState = "acting_search"
	StateResponding   AgentState = "responding"
	StateDone         AgentState = "done"
	StateFailed       AgentState = "failed"
)

// Terminal reports whether no further transition can happen.
func (s AgentState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

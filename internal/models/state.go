package models

import "strings"

// ConversationState is the per-session dialogue state. It is owned by the
// session store and read/written exactly once per turn by the orchestrator.
type ConversationState string

const (
	StateIdle       ConversationState = "idle"
	StateOrdering   ConversationState = "ordering"
	StateThinking   ConversationState = "thinking"
	StateClarifying ConversationState = "clarifying"
	StateConfirming ConversationState = "confirming"
	StateClosing    ConversationState = "closing"
)

// AllConversationStates lists every dialogue state.
func AllConversationStates() []ConversationState {
	return []ConversationState{
		StateIdle,
		StateOrdering,
		StateThinking,
		StateClarifying,
		StateConfirming,
		StateClosing,
	}
}

// ParseConversationState maps a stored string to a state, defaulting to
// idle for anything unrecognized (a fresh or corrupted session starts over).
func ParseConversationState(s string) ConversationState {
	candidate := ConversationState(strings.ToLower(strings.TrimSpace(s)))
	for _, cs := range AllConversationStates() {
		if cs == candidate {
			return cs
		}
	}
	return StateIdle
}

func (s ConversationState) String() string { return string(s) }

// Transition is the state machine's verdict for one (state, intent) pair.
// Recomputed every turn, never persisted.
type Transition struct {
	TargetState     ConversationState
	RequiresCommand bool
	ResponseKey     string // canned phrase key used when no command runs
	IsValid         bool
}

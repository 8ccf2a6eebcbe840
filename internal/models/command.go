package models

// CommandDescriptor is the canonical request to mutate order state.
// Produced by the intent parsers, validated against the descriptor schema,
// then consumed by the batch executor. Invalid descriptors never reach an
// order-mutation collaborator.
type CommandDescriptor struct {
	Intent     IntentType             `json:"intent"`
	Confidence float64                `json:"confidence"`
	Slots      map[string]interface{} `json:"slots"`
	Notes      string                 `json:"notes,omitempty"`
	UserInput  string                 `json:"user_input,omitempty"`
}

// Well-known slot keys shared between parsers, the executor and the
// response aggregator.
const (
	SlotMenuItemID            = "menu_item_id"
	SlotQuantity              = "quantity"
	SlotSize                  = "size"
	SlotModifiers             = "modifiers"
	SlotSpecialInstructions   = "special_instructions"
	SlotAmbiguousItem         = "ambiguous_item"
	SlotSuggestedOptions      = "suggested_options"
	SlotClarificationQuestion = "clarification_question"
	SlotTargetRef             = "target_ref"
	SlotScope                 = "scope"
	SlotQuestion              = "question"
	SlotCategory              = "category"
	SlotResponseType          = "response_type"
	SlotRawInput              = "raw_input"
)

// IsAmbiguous reports whether the descriptor carries an ambiguous item
// reference that needs the user to pick among suggested options. Ambiguity
// is a successfully parsed descriptor, not an error.
func (d CommandDescriptor) IsAmbiguous() bool {
	if d.Slots == nil {
		return false
	}
	if id, ok := d.Slots[SlotMenuItemID]; ok {
		switch v := id.(type) {
		case int:
			if v != 0 {
				return false
			}
		case float64:
			if v != 0 {
				return false
			}
		}
	}
	_, hasAmbiguous := d.Slots[SlotAmbiguousItem]
	return hasAmbiguous
}

// SessionContext carries the per-turn identifiers and snapshot data that
// command execution and response generation need. All collaborator handles
// are passed explicitly; there is no ambient service registry.
type SessionContext struct {
	SessionID    string
	RestaurantID string
	// OrderID equals the session ID in this system.
	OrderID             string
	ConversationHistory []HistoryEntry
	OrderSnapshot       map[string]interface{}
}

// HistoryEntry is one prior exchange in the conversation.
type HistoryEntry struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

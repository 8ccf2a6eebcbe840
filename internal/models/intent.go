package models

import "strings"

// IntentType identifies what the user is trying to do in one utterance.
// Supplied by the external intent classifier; immutable input to a turn.
type IntentType string

const (
	IntentAddItem      IntentType = "ADD_ITEM"
	IntentRemoveItem   IntentType = "REMOVE_ITEM"
	IntentModifyItem   IntentType = "MODIFY_ITEM"
	IntentSetQuantity  IntentType = "SET_QUANTITY"
	IntentClearOrder   IntentType = "CLEAR_ORDER"
	IntentConfirmOrder IntentType = "CONFIRM_ORDER"
	IntentRepeat       IntentType = "REPEAT"
	IntentQuestion     IntentType = "QUESTION"
	IntentSmallTalk    IntentType = "SMALL_TALK"
	IntentUnknown      IntentType = "UNKNOWN"
)

// AllIntentTypes lists every recognized intent. Routing and transition
// tables are validated against this list at test time.
func AllIntentTypes() []IntentType {
	return []IntentType{
		IntentAddItem,
		IntentRemoveItem,
		IntentModifyItem,
		IntentSetQuantity,
		IntentClearOrder,
		IntentConfirmOrder,
		IntentRepeat,
		IntentQuestion,
		IntentSmallTalk,
		IntentUnknown,
	}
}

// ParseIntentType maps a string to an IntentType, case-insensitively.
// Anything unrecognized maps to IntentUnknown.
func ParseIntentType(s string) IntentType {
	candidate := IntentType(strings.ToUpper(strings.TrimSpace(s)))
	for _, it := range AllIntentTypes() {
		if it == candidate {
			return it
		}
	}
	return IntentUnknown
}

// IsKnown reports whether the intent is one of the recognized values.
func (i IntentType) IsKnown() bool {
	for _, it := range AllIntentTypes() {
		if it == i {
			return true
		}
	}
	return false
}

func (i IntentType) String() string { return string(i) }

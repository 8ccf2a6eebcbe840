// Package statemachine decides, for each (conversation state, intent) pair,
// whether the turn may proceed to command execution and where the dialogue
// goes next. It is a pure lookup: no persistence, no collaborators.
package statemachine

import (
	"fmt"

	"drivethru-dialogue/internal/dialogue/phrases"
	"drivethru-dialogue/internal/models"
)

type pair struct {
	state  models.ConversationState
	intent models.IntentType
}

// Machine holds the transition table, built once and immutable afterward.
type Machine struct {
	transitions map[pair]models.Transition
}

// New builds the full transition table over the state × intent product.
func New() *Machine {
	m := &Machine{transitions: make(map[pair]models.Transition)}
	m.buildTable()
	return m
}

// Transition returns the defined transition for the pair. The function is
// total: an undefined pair yields an invalid transition that keeps the
// current state and points at the generic fallback phrase.
func (m *Machine) Transition(current models.ConversationState, intent models.IntentType) models.Transition {
	if t, ok := m.transitions[pair{current, intent}]; ok {
		return t
	}
	return models.Transition{
		TargetState:     current,
		RequiresCommand: false,
		ResponseKey:     string(phrases.DidntUnderstand),
		IsValid:         false,
	}
}

// Validate checks that every (state, intent) combination has an explicit
// entry. A missing entry is a programming error, fatal at startup.
func (m *Machine) Validate() error {
	for _, state := range models.AllConversationStates() {
		for _, intent := range models.AllIntentTypes() {
			if _, ok := m.transitions[pair{state, intent}]; !ok {
				return fmt.Errorf("no transition defined for state %s, intent %s", state, intent)
			}
		}
	}
	return nil
}

// Size returns the number of defined transitions.
func (m *Machine) Size() int { return len(m.transitions) }

func (m *Machine) add(state models.ConversationState, intent models.IntentType, t models.Transition) {
	m.transitions[pair{state, intent}] = t
}

func command(target models.ConversationState) models.Transition {
	return models.Transition{TargetState: target, RequiresCommand: true, IsValid: true}
}

func canned(target models.ConversationState, key phrases.Key) models.Transition {
	return models.Transition{TargetState: target, RequiresCommand: false, ResponseKey: string(key), IsValid: true}
}

func rejected(current models.ConversationState, key phrases.Key) models.Transition {
	return models.Transition{TargetState: current, RequiresCommand: false, ResponseKey: string(key), IsValid: false}
}

func (m *Machine) buildTable() {
	states := models.AllConversationStates()

	// ADD_ITEM is welcome from anywhere and always moves to ORDERING,
	// even after the order was confirmed (customer wants one more thing).
	for _, s := range states {
		m.add(s, models.IntentAddItem, command(models.StateOrdering))
	}

	// Order mutations need an order to mutate.
	mutations := []models.IntentType{
		models.IntentRemoveItem,
		models.IntentModifyItem,
		models.IntentSetQuantity,
		models.IntentClearOrder,
	}
	for _, intent := range mutations {
		m.add(models.StateOrdering, intent, command(models.StateOrdering))
		m.add(models.StateClarifying, intent, command(models.StateOrdering))
		m.add(models.StateConfirming, intent, command(models.StateOrdering))
		m.add(models.StateIdle, intent, rejected(models.StateIdle, phrases.NoOrderYet))
		m.add(models.StateThinking, intent, rejected(models.StateThinking, phrases.NoOrderYet))
		m.add(models.StateClosing, intent, rejected(models.StateClosing, phrases.OrderBeingPrepared))
	}

	// CONFIRM_ORDER walks the finisher path: ORDERING -> CONFIRMING -> CLOSING.
	m.add(models.StateOrdering, models.IntentConfirmOrder, canned(models.StateConfirming, phrases.OrderSummary))
	m.add(models.StateConfirming, models.IntentConfirmOrder, canned(models.StateClosing, phrases.OrderComplete))
	m.add(models.StateIdle, models.IntentConfirmOrder, rejected(models.StateIdle, phrases.Greeting))
	m.add(models.StateThinking, models.IntentConfirmOrder, rejected(models.StateThinking, phrases.NoOrderYet))
	m.add(models.StateClarifying, models.IntentConfirmOrder, rejected(models.StateClarifying, phrases.AddItemsFirst))
	m.add(models.StateClosing, models.IntentConfirmOrder, rejected(models.StateClosing, phrases.OrderAlreadyConfirmed))

	// REPEAT only makes sense once there is (or was) an order.
	m.add(models.StateOrdering, models.IntentRepeat, canned(models.StateOrdering, phrases.OrderRepeat))
	m.add(models.StateClarifying, models.IntentRepeat, canned(models.StateClarifying, phrases.OrderRepeat))
	m.add(models.StateConfirming, models.IntentRepeat, canned(models.StateConfirming, phrases.OrderRepeat))
	m.add(models.StateClosing, models.IntentRepeat, canned(models.StateClosing, phrases.OrderRepeat))
	m.add(models.StateIdle, models.IntentRepeat, rejected(models.StateIdle, phrases.NothingToRepeat))
	m.add(models.StateThinking, models.IntentRepeat, rejected(models.StateThinking, phrases.NoOrderYet))

	// Questions are answered via the QUESTION command strategy (menu and
	// restaurant lookups happen during execution); state is unchanged.
	for _, s := range states {
		m.add(s, models.IntentQuestion, command(s))
	}

	// Small talk never mutates the order.
	m.add(models.StateIdle, models.IntentSmallTalk, canned(models.StateIdle, phrases.WelcomeMenu))
	m.add(models.StateOrdering, models.IntentSmallTalk, canned(models.StateOrdering, phrases.ContinueOrdering))
	m.add(models.StateThinking, models.IntentSmallTalk, canned(models.StateThinking, phrases.WelcomeMenu))
	m.add(models.StateClarifying, models.IntentSmallTalk, canned(models.StateClarifying, phrases.ContinueOrdering))
	m.add(models.StateConfirming, models.IntentSmallTalk, canned(models.StateConfirming, phrases.ContinueOrdering))
	m.add(models.StateClosing, models.IntentSmallTalk, canned(models.StateClosing, phrases.ThankYou))

	// UNKNOWN answers with a canned nudge; in IDLE it doubles as a greeting.
	m.add(models.StateIdle, models.IntentUnknown, canned(models.StateIdle, phrases.Greeting))
	for _, s := range states {
		if s == models.StateIdle {
			continue
		}
		m.add(s, models.IntentUnknown, canned(s, phrases.ComeAgain))
	}
}

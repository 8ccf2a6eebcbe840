package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivethru-dialogue/internal/dialogue/phrases"
	"drivethru-dialogue/internal/models"
)

// ===== TABLE TOTALITY =====

func TestMachine_TableIsTotal(t *testing.T) {
	m := New()

	require.NoError(t, m.Validate())
	assert.Equal(t, len(models.AllConversationStates())*len(models.AllIntentTypes()), m.Size())

	for _, state := range models.AllConversationStates() {
		for _, intent := range models.AllIntentTypes() {
			tr := m.Transition(state, intent)
			if !tr.RequiresCommand {
				assert.NotEmpty(t, tr.ResponseKey, "state=%s intent=%s needs a response key", state, intent)
			}
		}
	}
}

func TestMachine_UndefinedPairFallsBack(t *testing.T) {
	m := &Machine{transitions: map[pair]models.Transition{}}

	tr := m.Transition(models.StateOrdering, models.IntentAddItem)

	assert.False(t, tr.IsValid)
	assert.False(t, tr.RequiresCommand)
	assert.Equal(t, models.StateOrdering, tr.TargetState)
	assert.Equal(t, string(phrases.DidntUnderstand), tr.ResponseKey)
}

// ===== TRANSITION SEMANTICS =====

func TestMachine_Transitions(t *testing.T) {
	m := New()

	tests := []struct {
		name            string
		state           models.ConversationState
		intent          models.IntentType
		wantValid       bool
		wantCommand     bool
		wantTarget      models.ConversationState
		wantResponseKey string
	}{
		{
			name:        "add item from idle starts ordering",
			state:       models.StateIdle,
			intent:      models.IntentAddItem,
			wantValid:   true,
			wantCommand: true,
			wantTarget:  models.StateOrdering,
		},
		{
			name:        "add item after confirmation reopens the order",
			state:       models.StateClosing,
			intent:      models.IntentAddItem,
			wantValid:   true,
			wantCommand: true,
			wantTarget:  models.StateOrdering,
		},
		{
			name:        "remove item while ordering stays in ordering",
			state:       models.StateOrdering,
			intent:      models.IntentRemoveItem,
			wantValid:   true,
			wantCommand: true,
			wantTarget:  models.StateOrdering,
		},
		{
			name:        "set quantity while confirming returns to ordering",
			state:       models.StateConfirming,
			intent:      models.IntentSetQuantity,
			wantValid:   true,
			wantCommand: true,
			wantTarget:  models.StateOrdering,
		},
		{
			name:            "remove item with no order is rejected",
			state:           models.StateIdle,
			intent:          models.IntentRemoveItem,
			wantValid:       false,
			wantTarget:      models.StateIdle,
			wantResponseKey: string(phrases.NoOrderYet),
		},
		{
			name:            "clear order after confirmation is rejected",
			state:           models.StateClosing,
			intent:          models.IntentClearOrder,
			wantValid:       false,
			wantTarget:      models.StateClosing,
			wantResponseKey: string(phrases.OrderBeingPrepared),
		},
		{
			name:            "confirm while ordering summarizes the order",
			state:           models.StateOrdering,
			intent:          models.IntentConfirmOrder,
			wantValid:       true,
			wantTarget:      models.StateConfirming,
			wantResponseKey: string(phrases.OrderSummary),
		},
		{
			name:            "second confirm completes the order",
			state:           models.StateConfirming,
			intent:          models.IntentConfirmOrder,
			wantValid:       true,
			wantTarget:      models.StateClosing,
			wantResponseKey: string(phrases.OrderComplete),
		},
		{
			name:            "confirm in idle is rejected with a greeting",
			state:           models.StateIdle,
			intent:          models.IntentConfirmOrder,
			wantValid:       false,
			wantTarget:      models.StateIdle,
			wantResponseKey: string(phrases.Greeting),
		},
		{
			name:            "confirm after completion is rejected",
			state:           models.StateClosing,
			intent:          models.IntentConfirmOrder,
			wantValid:       false,
			wantTarget:      models.StateClosing,
			wantResponseKey: string(phrases.OrderAlreadyConfirmed),
		},
		{
			name:            "repeat while ordering reads the order back",
			state:           models.StateOrdering,
			intent:          models.IntentRepeat,
			wantValid:       true,
			wantTarget:      models.StateOrdering,
			wantResponseKey: string(phrases.OrderRepeat),
		},
		{
			name:            "repeat in idle has nothing to repeat",
			state:           models.StateIdle,
			intent:          models.IntentRepeat,
			wantValid:       false,
			wantTarget:      models.StateIdle,
			wantResponseKey: string(phrases.NothingToRepeat),
		},
		{
			name:        "question keeps the current state",
			state:       models.StateConfirming,
			intent:      models.IntentQuestion,
			wantValid:   true,
			wantCommand: true,
			wantTarget:  models.StateConfirming,
		},
		{
			name:            "small talk in idle greets with the menu",
			state:           models.StateIdle,
			intent:          models.IntentSmallTalk,
			wantValid:       true,
			wantTarget:      models.StateIdle,
			wantResponseKey: string(phrases.WelcomeMenu),
		},
		{
			name:            "small talk while ordering nudges back to the order",
			state:           models.StateOrdering,
			intent:          models.IntentSmallTalk,
			wantValid:       true,
			wantTarget:      models.StateOrdering,
			wantResponseKey: string(phrases.ContinueOrdering),
		},
		{
			name:            "unknown intent in idle greets",
			state:           models.StateIdle,
			intent:          models.IntentUnknown,
			wantValid:       true,
			wantTarget:      models.StateIdle,
			wantResponseKey: string(phrases.Greeting),
		},
		{
			name:            "unknown intent while ordering asks to repeat",
			state:           models.StateOrdering,
			intent:          models.IntentUnknown,
			wantValid:       true,
			wantTarget:      models.StateOrdering,
			wantResponseKey: string(phrases.ComeAgain),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := m.Transition(tt.state, tt.intent)

			assert.Equal(t, tt.wantValid, tr.IsValid)
			assert.Equal(t, tt.wantCommand, tr.RequiresCommand)
			assert.Equal(t, tt.wantTarget, tr.TargetState)
			if tt.wantResponseKey != "" {
				assert.Equal(t, tt.wantResponseKey, tr.ResponseKey)
			}
		})
	}
}

func TestMachine_SmallTalkNeverRequiresCommand(t *testing.T) {
	m := New()

	for _, state := range models.AllConversationStates() {
		tr := m.Transition(state, models.IntentSmallTalk)
		assert.False(t, tr.RequiresCommand, "state=%s", state)
		assert.Equal(t, state, tr.TargetState, "small talk must not move the dialogue, state=%s", state)
	}
}

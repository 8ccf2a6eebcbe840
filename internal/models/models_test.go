package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntentType(t *testing.T) {
	tests := []struct {
		input string
		want  IntentType
	}{
		{"ADD_ITEM", IntentAddItem},
		{"add_item", IntentAddItem},
		{"  Confirm_Order  ", IntentConfirmOrder},
		{"ORDER_PIZZA", IntentUnknown},
		{"", IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseIntentType(tt.input))
		})
	}
}

func TestParseConversationState(t *testing.T) {
	assert.Equal(t, StateOrdering, ParseConversationState("ORDERING"))
	assert.Equal(t, StateIdle, ParseConversationState("banana"))
	assert.Equal(t, StateIdle, ParseConversationState(""))
}

func TestCommandDescriptor_IsAmbiguous(t *testing.T) {
	tests := []struct {
		name  string
		slots map[string]interface{}
		want  bool
	}{
		{
			name: "zero item id with ambiguous marker",
			slots: map[string]interface{}{
				SlotMenuItemID:    0,
				SlotAmbiguousItem: "burger",
			},
			want: true,
		},
		{
			name: "marker without an item id",
			slots: map[string]interface{}{
				SlotAmbiguousItem: "burger",
			},
			want: true,
		},
		{
			name: "resolved item id",
			slots: map[string]interface{}{
				SlotMenuItemID:    42,
				SlotAmbiguousItem: "burger",
			},
			want: false,
		},
		{
			name:  "no marker",
			slots: map[string]interface{}{SlotMenuItemID: 0},
			want:  false,
		},
		{
			name:  "nil slots",
			slots: nil,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CommandDescriptor{Intent: IntentAddItem, Confidence: 1, Slots: tt.slots}
			assert.Equal(t, tt.want, d.IsAmbiguous())
		})
	}
}

func TestResultConstructors(t *testing.T) {
	success := SuccessResult("added", map[string]interface{}{DataItemName: "burger"})
	assert.True(t, success.IsSuccess())
	assert.False(t, success.IsError())

	failure := ErrorResult("ITEM_UNAVAILABLE", "nope", nil)
	assert.True(t, failure.IsError())
	assert.EqualValues(t, "BUSINESS", failure.ErrorCategory)

	system := SystemErrorResult("DATABASE_ERROR", "pq: down")
	assert.EqualValues(t, "SYSTEM", system.ErrorCategory)
}

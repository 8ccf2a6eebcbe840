package routing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivethru-dialogue/internal/dialogue/phrases"
	"drivethru-dialogue/internal/models"
)

// ===== TABLE TOTALITY =====

func TestRouter_TableIsTotal(t *testing.T) {
	r := New()

	require.NoError(t, r.Validate())
	assert.Equal(t, len(models.AllIntentTypes())*len(models.AllBatchOutcomes()), r.Size())

	for _, intent := range models.AllIntentTypes() {
		for _, outcome := range models.AllBatchOutcomes() {
			decision, err := r.Route(string(intent), string(outcome))
			require.NoError(t, err, "intent=%s outcome=%s", intent, outcome)
			assert.NotEmpty(t, decision.NextStage)
			assert.NotEmpty(t, decision.TemplateKey)
			assert.NotEmpty(t, decision.TemplatePurpose)
		}
	}
}

func TestRouter_FatalSystemAlwaysApologizes(t *testing.T) {
	r := New()

	for _, intent := range models.AllIntentTypes() {
		decision, err := r.Route(string(intent), string(models.OutcomeFatalSystem))
		require.NoError(t, err)
		assert.Equal(t, models.StageCannedResponse, decision.NextStage, "intent=%s", intent)
		assert.Equal(t, string(phrases.SystemErrorRetry), decision.TemplateKey, "intent=%s", intent)
	}
}

// ===== LOOKUP BEHAVIOR =====

func TestRouter_Route(t *testing.T) {
	r := New()

	tests := []struct {
		name      string
		intent    string
		outcome   string
		wantStage string
		wantKey   string
	}{
		{
			name:      "successful add goes to dynamic response",
			intent:    "ADD_ITEM",
			outcome:   "ALL_SUCCESS",
			wantStage: models.StageDynamicVoiceResponse,
			wantKey:   TemplateItemAdded,
		},
		{
			name:      "partial add needing a choice goes to the follow-up agent",
			intent:    "ADD_ITEM",
			outcome:   "PARTIAL_SUCCESS_ASK",
			wantStage: models.StageFollowUpAgent,
			wantKey:   TemplateClarifyChoice,
		},
		{
			name:      "lookups are case-insensitive",
			intent:    "add_item",
			outcome:   "all_success",
			wantStage: models.StageDynamicVoiceResponse,
			wantKey:   TemplateItemAdded,
		},
		{
			name:      "cleared order is a canned confirmation",
			intent:    "CLEAR_ORDER",
			outcome:   "ALL_SUCCESS",
			wantStage: models.StageCannedResponse,
			wantKey:   string(phrases.OrderClearedSuccess),
		},
		{
			name:      "failed question falls back to canned",
			intent:    "QUESTION",
			outcome:   "ALL_FAIL",
			wantStage: models.StageCannedResponse,
			wantKey:   string(phrases.DidntUnderstand),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := r.Route(tt.intent, tt.outcome)

			require.NoError(t, err)
			assert.Equal(t, tt.wantStage, decision.NextStage)
			assert.Equal(t, tt.wantKey, decision.TemplateKey)
		})
	}
}

func TestRouter_RouteIsDeterministic(t *testing.T) {
	r := New()

	first, err := r.Route("REMOVE_ITEM", "PARTIAL_SUCCESS_CONTINUE")
	require.NoError(t, err)
	second, err := r.Route("REMOVE_ITEM", "PARTIAL_SUCCESS_CONTINUE")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// ===== NAMED ERRORS =====

func TestRouter_UnknownIntent(t *testing.T) {
	r := New()

	_, err := r.Route("ORDER_PIZZA", "ALL_SUCCESS")

	var unknownIntent *UnknownIntentError
	require.True(t, errors.As(err, &unknownIntent))
	assert.Equal(t, "ORDER_PIZZA", unknownIntent.Intent)
}

func TestRouter_UnknownOutcome(t *testing.T) {
	r := New()

	_, err := r.Route("ADD_ITEM", "MOSTLY_FINE")

	var unknownOutcome *UnknownOutcomeError
	require.True(t, errors.As(err, &unknownOutcome))
	assert.Equal(t, "ADD_ITEM", unknownOutcome.Intent)
	assert.Equal(t, "MOSTLY_FINE", unknownOutcome.Outcome)
}

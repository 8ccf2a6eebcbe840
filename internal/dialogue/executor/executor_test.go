package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "drivethru-dialogue/internal/common/errors"
	"drivethru-dialogue/internal/common/logger"
	"drivethru-dialogue/internal/models"
)

// fakeOrderService replays scripted results in call order and records the
// descriptors it saw.
type fakeOrderService struct {
	results   []models.CommandResult
	seen      []models.CommandDescriptor
	panicOnce bool
}

func (f *fakeOrderService) Execute(_ context.Context, d models.CommandDescriptor, _ models.SessionContext) models.CommandResult {
	if f.panicOnce {
		f.panicOnce = false
		panic("order store went away")
	}
	f.seen = append(f.seen, d)
	if len(f.results) == 0 {
		return models.SuccessResult("ok", nil)
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r
}

func validDescriptor(intent models.IntentType) models.CommandDescriptor {
	return models.CommandDescriptor{
		Intent:     intent,
		Confidence: 0.9,
		Slots:      map[string]interface{}{models.SlotMenuItemID: 7},
	}
}

// ===== SEQUENTIAL, FAIL-SOFT EXECUTION =====

func TestExecutor_EveryDescriptorGetsAResult(t *testing.T) {
	orders := &fakeOrderService{results: []models.CommandResult{
		models.SuccessResult("added", map[string]interface{}{models.DataItemName: "burger"}),
		models.ErrorResult(apperrors.ErrCodeItemUnavailable, "no foie gras", nil),
		models.SuccessResult("added", map[string]interface{}{models.DataItemName: "fries"}),
	}}
	e := New(orders, logger.NewTestLogger(t))

	batch := e.Execute(context.Background(), []models.CommandDescriptor{
		validDescriptor(models.IntentAddItem),
		validDescriptor(models.IntentAddItem),
		validDescriptor(models.IntentAddItem),
	}, models.SessionContext{SessionID: "s1"})

	assert.Equal(t, 3, batch.TotalCommands)
	assert.Equal(t, 2, batch.SuccessfulCommands)
	assert.Equal(t, 1, batch.FailedCommands)
	assert.Len(t, batch.Results, 3)
	assert.Len(t, orders.seen, 3, "a failure must not abort the batch")
}

func TestExecutor_PreservesInputOrder(t *testing.T) {
	orders := &fakeOrderService{}
	e := New(orders, logger.NewTestLogger(t))

	first := validDescriptor(models.IntentAddItem)
	first.Slots[models.SlotQuantity] = 1
	second := validDescriptor(models.IntentRemoveItem)
	second.Slots[models.SlotQuantity] = 2

	e.Execute(context.Background(), []models.CommandDescriptor{first, second}, models.SessionContext{})

	require.Len(t, orders.seen, 2)
	assert.Equal(t, models.IntentAddItem, orders.seen[0].Intent)
	assert.Equal(t, models.IntentRemoveItem, orders.seen[1].Intent)
}

func TestExecutor_PanicBecomesSystemResult(t *testing.T) {
	orders := &fakeOrderService{panicOnce: true}
	e := New(orders, logger.NewTestLogger(t))

	batch := e.Execute(context.Background(), []models.CommandDescriptor{
		validDescriptor(models.IntentAddItem),
		validDescriptor(models.IntentAddItem),
	}, models.SessionContext{})

	require.Len(t, batch.Results, 2)
	assert.Equal(t, models.StatusError, batch.Results[0].Status)
	assert.Equal(t, apperrors.CategorySystem, batch.Results[0].ErrorCategory)
	assert.Equal(t, apperrors.ErrCodeInternalError, batch.Results[0].ErrorCode)
	assert.Equal(t, models.StatusSuccess, batch.Results[1].Status, "batch continues after a panic")
	assert.Equal(t, models.OutcomeFatalSystem, batch.BatchOutcome)
}

func TestExecutor_InvalidDescriptorNeverReachesOrders(t *testing.T) {
	orders := &fakeOrderService{}
	e := New(orders, logger.NewTestLogger(t))

	invalid := models.CommandDescriptor{
		Intent:     models.IntentAddItem,
		Confidence: 1.5, // out of range
		Slots:      map[string]interface{}{},
	}

	batch := e.Execute(context.Background(), []models.CommandDescriptor{invalid}, models.SessionContext{})

	assert.Empty(t, orders.seen)
	require.Len(t, batch.Results, 1)
	assert.Equal(t, apperrors.ErrCodeSchemaValidationFailed, batch.Results[0].ErrorCode)
	assert.Equal(t, apperrors.CategoryValidation, batch.Results[0].ErrorCategory)

	issues, ok := batch.Results[0].Data["validation_issues"].([]ValidationIssue)
	require.True(t, ok)
	assert.NotEmpty(t, issues)
}

// ===== BATCH ENRICHMENT =====

func TestExecutor_EnrichesBatchWithClassification(t *testing.T) {
	orders := &fakeOrderService{results: []models.CommandResult{
		models.SuccessResult("added", nil),
		models.ErrorResult(apperrors.ErrCodeItemUnavailable, "nope", map[string]interface{}{
			models.DataRequestedItem: "foie gras",
		}),
	}}
	e := New(orders, logger.NewTestLogger(t))

	batch := e.Execute(context.Background(), []models.CommandDescriptor{
		validDescriptor(models.IntentAddItem),
		validDescriptor(models.IntentAddItem),
	}, models.SessionContext{})

	assert.Equal(t, models.OutcomePartialSuccessAsk, batch.BatchOutcome)
	assert.Equal(t, apperrors.ErrCodeItemUnavailable, batch.FirstErrorCode)
	assert.Equal(t, models.IntentAddItem, batch.CommandFamily)
	assert.NotEmpty(t, batch.SummaryMessage)

	events, ok := batch.ResponsePayload.Telemetry["events"].([]models.SummaryEvent)
	require.True(t, ok)
	require.Len(t, events, 2)
	assert.Equal(t, "ADDED_ITEM", events[0].Type)
	assert.Equal(t, "FAILED_ITEM", events[1].Type)
	assert.Equal(t, "foie gras", events[1].ItemName)
}

func TestExecutor_EmptyBatchIsAllFail(t *testing.T) {
	e := New(&fakeOrderService{}, logger.NewTestLogger(t))

	batch := e.Execute(context.Background(), nil, models.SessionContext{})

	assert.Equal(t, models.OutcomeAllFail, batch.BatchOutcome)
	assert.Equal(t, 0, batch.TotalCommands)
}

// ===== SCHEMA VALIDATION =====

func TestValidateDescriptor(t *testing.T) {
	tests := []struct {
		name       string
		descriptor models.CommandDescriptor
		wantIssues bool
	}{
		{
			name:       "minimal valid descriptor",
			descriptor: models.CommandDescriptor{Intent: models.IntentClearOrder, Confidence: 1, Slots: map[string]interface{}{}},
			wantIssues: false,
		},
		{
			name: "full valid descriptor",
			descriptor: models.CommandDescriptor{
				Intent:     models.IntentAddItem,
				Confidence: 0.75,
				Slots:      map[string]interface{}{models.SlotMenuItemID: 3, models.SlotQuantity: 2},
				Notes:      "no onions",
				UserInput:  "a burger without onions",
			},
			wantIssues: false,
		},
		{
			name:       "unknown intent",
			descriptor: models.CommandDescriptor{Intent: "ORDER_PIZZA", Confidence: 1, Slots: map[string]interface{}{}},
			wantIssues: true,
		},
		{
			name:       "confidence above one",
			descriptor: models.CommandDescriptor{Intent: models.IntentAddItem, Confidence: 1.01, Slots: map[string]interface{}{}},
			wantIssues: true,
		},
		{
			name:       "negative confidence",
			descriptor: models.CommandDescriptor{Intent: models.IntentAddItem, Confidence: -0.1, Slots: map[string]interface{}{}},
			wantIssues: true,
		},
		{
			name:       "missing slots",
			descriptor: models.CommandDescriptor{Intent: models.IntentAddItem, Confidence: 0.5},
			wantIssues: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := ValidateDescriptor(tt.descriptor)
			if tt.wantIssues {
				require.NotEmpty(t, issues)
				for _, issue := range issues {
					assert.NotEmpty(t, issue.Field)
					assert.NotEmpty(t, issue.Message)
				}
			} else {
				assert.Empty(t, issues)
			}
		})
	}
}

func TestValidateRaw_RejectsUnexpectedFields(t *testing.T) {
	issues := ValidateRaw(map[string]interface{}{
		"intent":     "ADD_ITEM",
		"confidence": 0.9,
		"slots":      map[string]interface{}{},
		"priority":   "high",
	})

	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "priority")
}

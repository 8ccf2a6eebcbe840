// Package executor runs a turn's command batch against the order service.
// Execution is strictly sequential and fail-soft: every descriptor produces
// exactly one result, and no failure short-circuits the rest of the batch.
package executor

import (
	"context"
	"fmt"

	"drivethru-dialogue/internal/collaborators"
	apperrors "drivethru-dialogue/internal/common/errors"
	"drivethru-dialogue/internal/common/logger"
	"drivethru-dialogue/internal/common/metrics"
	"drivethru-dialogue/internal/dialogue/classifier"
	"drivethru-dialogue/internal/models"
)

// Executor executes descriptor batches. Stateless; safe for concurrent use
// across sessions.
type Executor struct {
	orders collaborators.OrderService
	logger logger.Logger
}

func New(orders collaborators.OrderService, log logger.Logger) *Executor {
	return &Executor{orders: orders, logger: log}
}

// Execute runs the descriptors in input order, one at a time. Later
// descriptors may reference effects of earlier ones ("remove the last thing
// I added"), so the batch is never parallelized. The returned batch result
// is already classified.
func (e *Executor) Execute(ctx context.Context, descriptors []models.CommandDescriptor, sessCtx models.SessionContext) *models.CommandBatchResult {
	results := make([]models.CommandResult, 0, len(descriptors))

	for i, d := range descriptors {
		result := e.executeOne(ctx, i, d, sessCtx)
		results = append(results, result)

		status := "success"
		if result.IsError() {
			status = "error"
			metrics.CommandErrors.WithLabelValues(string(result.ErrorCode), string(result.ErrorCategory)).Inc()
			e.logCommandFailure(i, d, result, sessCtx)
		}
		metrics.CommandsExecuted.WithLabelValues(string(d.Intent), status).Inc()
	}

	return e.buildBatchResult(descriptors, results)
}

// executeOne validates and runs a single descriptor. A panicking
// collaborator is converted into a SYSTEM result so the batch survives.
func (e *Executor) executeOne(ctx context.Context, index int, d models.CommandDescriptor, sessCtx models.SessionContext) (result models.CommandResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("command execution panicked", map[string]interface{}{
				"session_id": sessCtx.SessionID,
				"index":      index,
				"intent":     d.Intent.String(),
				"panic":      fmt.Sprintf("%v", r),
			})
			stdErr := apperrors.Normalize(fmt.Errorf("panic: %v", r))
			result = models.SystemErrorResult(stdErr.Code, stdErr.Details)
		}
	}()

	if issues := ValidateDescriptor(d); len(issues) > 0 {
		stdErr := apperrors.NewSchemaValidationError(fmt.Sprintf("%d validation issue(s)", len(issues)))
		return models.ErrorResult(
			stdErr.Code,
			stdErr.Message,
			map[string]interface{}{"validation_issues": issues},
		)
	}

	return e.orders.Execute(ctx, d, sessCtx)
}

func (e *Executor) logCommandFailure(index int, d models.CommandDescriptor, result models.CommandResult, sessCtx models.SessionContext) {
	fields := map[string]interface{}{
		"session_id": sessCtx.SessionID,
		"index":      index,
		"intent":     d.Intent.String(),
		"error_code": string(result.ErrorCode),
	}
	switch result.ErrorCategory {
	case apperrors.CategorySystem:
		e.logger.Error("command failed with system error", fields)
	case apperrors.CategoryValidation:
		e.logger.Warn("command rejected by validation", fields)
	default:
		e.logger.Info("command hit a business rule", fields)
	}
}

func (e *Executor) buildBatchResult(descriptors []models.CommandDescriptor, results []models.CommandResult) *models.CommandBatchResult {
	batch := &models.CommandBatchResult{
		Results:       results,
		TotalCommands: len(results),
	}
	for _, r := range results {
		if r.IsSuccess() {
			batch.SuccessfulCommands++
		} else {
			batch.FailedCommands++
		}
	}
	if len(descriptors) > 0 {
		batch.CommandFamily = descriptors[0].Intent
	}

	batch.BatchOutcome = classifier.Classify(results)
	batch.FirstErrorCode = classifier.FirstErrorCode(results)
	batch.SummaryMessage = summaryMessage(batch)
	batch.ResponsePayload = models.ResponsePayload{
		TemplateKey: string(batch.BatchOutcome),
		Args: map[string]interface{}{
			"successful": batch.SuccessfulCommands,
			"failed":     batch.FailedCommands,
		},
		Telemetry: map[string]interface{}{
			"events":           summaryEvents(descriptors, results),
			"command_family":   string(batch.CommandFamily),
			"first_error_code": string(batch.FirstErrorCode),
		},
	}
	return batch
}

// summaryEvents extracts one structured event per result for telemetry and
// dynamic templating.
func summaryEvents(descriptors []models.CommandDescriptor, results []models.CommandResult) []models.SummaryEvent {
	events := make([]models.SummaryEvent, 0, len(results))
	for i, r := range results {
		event := models.SummaryEvent{}
		if name, ok := r.Data[models.DataItemName].(string); ok {
			event.ItemName = name
		}
		if qty, ok := r.Data[models.DataQty].(int); ok {
			event.Qty = qty
		} else if qty, ok := r.Data[models.DataQty].(float64); ok {
			event.Qty = int(qty)
		}
		if r.IsError() {
			event.Type = "FAILED_ITEM"
			event.ErrorCode = r.ErrorCode
			if requested, ok := r.Data[models.DataRequestedItem].(string); ok && event.ItemName == "" {
				event.ItemName = requested
			}
		} else if i < len(descriptors) {
			event.Type = successEventType(descriptors[i].Intent)
		}
		events = append(events, event)
	}
	return events
}

func successEventType(intent models.IntentType) string {
	switch intent {
	case models.IntentRemoveItem, models.IntentClearOrder:
		return "REMOVED_ITEM"
	case models.IntentModifyItem, models.IntentSetQuantity:
		return "UPDATED_ITEM"
	default:
		return "ADDED_ITEM"
	}
}

func summaryMessage(batch *models.CommandBatchResult) string {
	switch batch.BatchOutcome {
	case models.OutcomeAllSuccess:
		return fmt.Sprintf("%d command(s) applied", batch.SuccessfulCommands)
	case models.OutcomeFatalSystem:
		return "batch aborted by a system failure"
	case models.OutcomeAllFail:
		return fmt.Sprintf("%d command(s) failed", batch.FailedCommands)
	default:
		return fmt.Sprintf("%d of %d command(s) applied", batch.SuccessfulCommands, batch.TotalCommands)
	}
}

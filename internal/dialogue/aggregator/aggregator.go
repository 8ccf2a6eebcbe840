// Package aggregator builds the sentence the customer hears from a batch
// result. Parts are assembled in a fixed order and the output is guaranteed
// non-empty for every input, including a missing batch.
package aggregator

import (
	"context"
	"strings"

	"drivethru-dialogue/internal/collaborators"
	"drivethru-dialogue/internal/common/logger"
	"drivethru-dialogue/internal/dialogue/phrases"
	"drivethru-dialogue/internal/models"
)

// Response categories reported alongside the text.
const (
	CategorySuccess       = "success"
	CategoryPartial       = "partial"
	CategoryClarification = "clarification"
	CategoryError         = "error"
	CategoryFallback      = "fallback"
)

const successAck = "Your order has been updated."

// Response is the aggregated, render-ready answer for one turn.
type Response struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Aggregator assembles response text. Stateless apart from its
// collaborator handles.
type Aggregator struct {
	clarifier collaborators.ClarificationGenerator
	logger    logger.Logger
}

func New(clarifier collaborators.ClarificationGenerator, log logger.Logger) *Aggregator {
	return &Aggregator{clarifier: clarifier, logger: log}
}

// Aggregate builds the response in fixed part order: success acknowledgment,
// combined unavailable-items sentence, clarification question, upsell.
// System failures collapse to the generic apology; error details never leak
// into the spoken text.
func (a *Aggregator) Aggregate(ctx context.Context, batch *models.CommandBatchResult, sessCtx models.SessionContext) Response {
	if batch == nil {
		return Response{Text: phrases.Text(phrases.DidntUnderstand, ""), Category: CategoryFallback}
	}
	if batch.BatchOutcome == models.OutcomeFatalSystem {
		return Response{Text: phrases.Text(phrases.SystemErrorRetry, ""), Category: CategoryError}
	}

	var parts []string

	if batch.HasSuccesses() {
		parts = append(parts, successAck)
	}

	if unavailable := unavailableItems(batch.Results); len(unavailable) > 0 {
		parts = append(parts, unavailableSentence(unavailable))
	}

	asked := false
	if needsClarification(batch.Results) {
		if question := a.clarificationText(ctx, batch, sessCtx); question != "" {
			parts = append(parts, question)
			asked = true
		}
	}

	if batch.BatchOutcome == models.OutcomeAllSuccess && !asked {
		parts = append(parts, phrases.Text(phrases.Upsell, ""))
	}

	if len(parts) == 0 {
		return Response{Text: phrases.Text(phrases.DidntUnderstand, ""), Category: CategoryFallback}
	}

	return Response{Text: strings.Join(parts, " "), Category: category(batch, asked)}
}

func category(batch *models.CommandBatchResult, asked bool) string {
	switch {
	case asked:
		return CategoryClarification
	case batch.BatchOutcome == models.OutcomeAllSuccess:
		return CategorySuccess
	case batch.HasSuccesses():
		return CategoryPartial
	default:
		return CategoryError
	}
}

// unavailableItems collects the requested names of every result marked
// item_unavailable, preserving input order.
func unavailableItems(results []models.CommandResult) []string {
	var items []string
	for _, r := range results {
		if r.Data[models.DataResponseType] != models.ResponseTypeItemUnavailable {
			continue
		}
		if name, ok := r.Data[models.DataRequestedItem].(string); ok && name != "" {
			items = append(items, name)
		}
	}
	return items
}

// unavailableSentence renders one combined sentence for all misses:
// "Sorry, we don't have X." / "Sorry, we don't have X and Y." /
// "Sorry, we don't have X, Y and Z."
func unavailableSentence(items []string) string {
	var list string
	switch len(items) {
	case 1:
		list = items[0]
	case 2:
		list = items[0] + " and " + items[1]
	default:
		list = strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
	return "Sorry, we don't have " + list + "."
}

// needsClarification scans for the payload markers that mean the customer
// has to choose before the order can proceed.
func needsClarification(results []models.CommandResult) bool {
	for _, r := range results {
		if r.Data[models.DataClarificationType] == models.ClarificationTypeAmbiguousItem {
			return true
		}
		if r.Data[models.DataResponseType] == models.ResponseTypeClarificationNeed {
			return true
		}
	}
	return false
}

// clarificationText asks the collaborator for the follow-up question. A
// failing collaborator degrades to no question rather than failing the turn.
func (a *Aggregator) clarificationText(ctx context.Context, batch *models.CommandBatchResult, sessCtx models.SessionContext) string {
	text, err := a.clarifier.GenerateClarification(ctx, batch, sessCtx)
	if err != nil {
		a.logger.Warn("clarification generation failed", map[string]interface{}{
			"session_id": sessCtx.SessionID,
			"error":      err.Error(),
		})
		return ""
	}
	return strings.TrimSpace(text)
}

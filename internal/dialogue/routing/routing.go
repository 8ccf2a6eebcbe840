// Package routing maps (intent, batch outcome) pairs to the pipeline stage
// that renders the turn's response. The table is fixed data; lookups are
// pure. A missing entry is a configuration error surfaced at startup, never
// papered over at runtime.
package routing

import (
	"fmt"
	"strings"

	"drivethru-dialogue/internal/dialogue/phrases"
	"drivethru-dialogue/internal/models"
)

// Template keys consumed by the dynamic response and follow-up stages.
const (
	TemplateItemAdded        = "ITEM_ADDED_SUCCESS"
	TemplateItemRemoved      = "ITEM_REMOVED_SUCCESS"
	TemplateItemUpdated      = "ITEM_UPDATED_SUCCESS"
	TemplatePartialApplied   = "PARTIAL_BATCH_APPLIED"
	TemplateBatchFailed      = "BATCH_FAILED"
	TemplateClarifyChoice    = "CLARIFY_ITEM_CHOICE"
	TemplateQuestionAnswer   = "QUESTION_ANSWER"
	TemplateQuestionFollowUp = "QUESTION_FOLLOW_UP"
)

// UnknownIntentError reports a lookup with an intent the table does not
// know. It indicates a missing table entry, not a user mistake.
type UnknownIntentError struct {
	Intent string
}

func (e *UnknownIntentError) Error() string {
	return fmt.Sprintf("routing: unknown intent %q", e.Intent)
}

// UnknownOutcomeError reports a known intent paired with an outcome the
// table does not know.
type UnknownOutcomeError struct {
	Intent  string
	Outcome string
}

func (e *UnknownOutcomeError) Error() string {
	return fmt.Sprintf("routing: unknown outcome %q for intent %q", e.Outcome, e.Intent)
}

type key struct {
	intent  models.IntentType
	outcome models.BatchOutcome
}

// Router owns the intent×outcome table. Construct once, share freely; the
// table is read-only after New.
type Router struct {
	table map[key]models.RoutingDecision
}

// New builds the full table over every intent × outcome combination.
func New() *Router {
	r := &Router{table: make(map[key]models.RoutingDecision)}
	r.buildTable()
	return r
}

// Route resolves the decision for the pair, case-insensitively on both
// keys. Unknown values raise the named errors so a missing entry fails
// loudly instead of defaulting.
func (r *Router) Route(intent, outcome string) (models.RoutingDecision, error) {
	it := models.IntentType(strings.ToUpper(strings.TrimSpace(intent)))
	if !it.IsKnown() {
		return models.RoutingDecision{}, &UnknownIntentError{Intent: intent}
	}
	oc := models.BatchOutcome(strings.ToUpper(strings.TrimSpace(outcome)))
	k := key{intent: it, outcome: oc}
	decision, ok := r.table[k]
	if !ok {
		return models.RoutingDecision{}, &UnknownOutcomeError{Intent: intent, Outcome: outcome}
	}
	return decision, nil
}

// Validate checks that every intent × outcome combination has an entry.
func (r *Router) Validate() error {
	for _, intent := range models.AllIntentTypes() {
		for _, outcome := range models.AllBatchOutcomes() {
			if _, ok := r.table[key{intent, outcome}]; !ok {
				return fmt.Errorf("routing: no entry for intent %s, outcome %s", intent, outcome)
			}
		}
	}
	return nil
}

// Size returns the number of table entries.
func (r *Router) Size() int { return len(r.table) }

func (r *Router) add(intent models.IntentType, outcome models.BatchOutcome, d models.RoutingDecision) {
	r.table[key{intent, outcome}] = d
}

func dynamic(purpose, templateKey string, args map[string]interface{}) models.RoutingDecision {
	return models.RoutingDecision{
		NextStage:       models.StageDynamicVoiceResponse,
		TemplatePurpose: purpose,
		TemplateKey:     templateKey,
		Args:            args,
	}
}

func followUp(purpose, templateKey string) models.RoutingDecision {
	return models.RoutingDecision{
		NextStage:       models.StageFollowUpAgent,
		TemplatePurpose: purpose,
		TemplateKey:     templateKey,
	}
}

func cannedDecision(purpose string, phraseKey phrases.Key) models.RoutingDecision {
	return models.RoutingDecision{
		NextStage:       models.StageCannedResponse,
		TemplatePurpose: purpose,
		TemplateKey:     string(phraseKey),
	}
}

func (r *Router) buildTable() {
	// Infrastructure failures always end in the generic apology, no matter
	// which intent triggered them.
	for _, intent := range models.AllIntentTypes() {
		r.add(intent, models.OutcomeFatalSystem,
			cannedDecision("apologize for a technical failure and ask to retry", phrases.SystemErrorRetry))
	}

	// ADD_ITEM
	r.add(models.IntentAddItem, models.OutcomeAllSuccess,
		dynamic("confirm added items and offer more", TemplateItemAdded, map[string]interface{}{"include_upsell": true}))
	r.add(models.IntentAddItem, models.OutcomePartialSuccessAsk,
		followUp("confirm what was added and ask about the rest", TemplateClarifyChoice))
	r.add(models.IntentAddItem, models.OutcomePartialSuccessContinue,
		dynamic("confirm what was added, mention what was skipped", TemplatePartialApplied, nil))
	r.add(models.IntentAddItem, models.OutcomeAllFail,
		dynamic("explain why nothing could be added", TemplateBatchFailed, nil))

	// REMOVE_ITEM
	r.add(models.IntentRemoveItem, models.OutcomeAllSuccess,
		dynamic("confirm removed items", TemplateItemRemoved, nil))
	r.add(models.IntentRemoveItem, models.OutcomePartialSuccessAsk,
		followUp("ask which item the customer meant to remove", TemplateClarifyChoice))
	r.add(models.IntentRemoveItem, models.OutcomePartialSuccessContinue,
		dynamic("confirm partial removal", TemplatePartialApplied, nil))
	r.add(models.IntentRemoveItem, models.OutcomeAllFail,
		dynamic("explain the item could not be removed", TemplateBatchFailed, nil))

	// MODIFY_ITEM and SET_QUANTITY share response shapes.
	for _, intent := range []models.IntentType{models.IntentModifyItem, models.IntentSetQuantity} {
		r.add(intent, models.OutcomeAllSuccess,
			dynamic("confirm the updated items", TemplateItemUpdated, nil))
		r.add(intent, models.OutcomePartialSuccessAsk,
			followUp("ask how to resolve the conflicting change", TemplateClarifyChoice))
		r.add(intent, models.OutcomePartialSuccessContinue,
			dynamic("confirm partial update", TemplatePartialApplied, nil))
		r.add(intent, models.OutcomeAllFail,
			dynamic("explain the change could not be applied", TemplateBatchFailed, nil))
	}

	// CLEAR_ORDER
	r.add(models.IntentClearOrder, models.OutcomeAllSuccess,
		cannedDecision("confirm the order was cleared", phrases.OrderClearedSuccess))
	r.add(models.IntentClearOrder, models.OutcomePartialSuccessAsk,
		followUp("ask which part of the order to clear", TemplateClarifyChoice))
	r.add(models.IntentClearOrder, models.OutcomePartialSuccessContinue,
		dynamic("confirm what was cleared", TemplatePartialApplied, nil))
	r.add(models.IntentClearOrder, models.OutcomeAllFail,
		cannedDecision("nothing to clear", phrases.NoOrderYet))

	// CONFIRM_ORDER normally resolves through canned state-machine keys and
	// only reaches the table when a confirmation command was executed.
	r.add(models.IntentConfirmOrder, models.OutcomeAllSuccess,
		cannedDecision("acknowledge the completed order", phrases.OrderComplete))
	r.add(models.IntentConfirmOrder, models.OutcomePartialSuccessAsk,
		followUp("ask about the unresolved line before confirming", TemplateClarifyChoice))
	r.add(models.IntentConfirmOrder, models.OutcomePartialSuccessContinue,
		dynamic("summarize what was confirmed", TemplatePartialApplied, nil))
	r.add(models.IntentConfirmOrder, models.OutcomeAllFail,
		cannedDecision("cannot confirm an empty order", phrases.AddItemsFirst))

	// REPEAT
	r.add(models.IntentRepeat, models.OutcomeAllSuccess,
		dynamic("read the requested lines back", TemplateQuestionAnswer, nil))
	r.add(models.IntentRepeat, models.OutcomePartialSuccessAsk,
		followUp("ask which line to repeat", TemplateClarifyChoice))
	r.add(models.IntentRepeat, models.OutcomePartialSuccessContinue,
		dynamic("repeat what could be resolved", TemplatePartialApplied, nil))
	r.add(models.IntentRepeat, models.OutcomeAllFail,
		cannedDecision("nothing to repeat", phrases.NothingToRepeat))

	// QUESTION
	r.add(models.IntentQuestion, models.OutcomeAllSuccess,
		dynamic("answer the customer's question", TemplateQuestionAnswer, nil))
	r.add(models.IntentQuestion, models.OutcomePartialSuccessAsk,
		followUp("ask a follow-up to narrow the question", TemplateQuestionFollowUp))
	r.add(models.IntentQuestion, models.OutcomePartialSuccessContinue,
		dynamic("answer what could be answered", TemplateQuestionAnswer, nil))
	r.add(models.IntentQuestion, models.OutcomeAllFail,
		cannedDecision("could not understand the question", phrases.DidntUnderstand))

	// SMALL_TALK and UNKNOWN never carry order mutations; every non-fatal
	// outcome lands on a canned nudge.
	for _, intent := range []models.IntentType{models.IntentSmallTalk, models.IntentUnknown} {
		r.add(intent, models.OutcomeAllSuccess,
			cannedDecision("acknowledge and steer back to the order", phrases.ContinueOrdering))
		r.add(intent, models.OutcomePartialSuccessAsk,
			cannedDecision("ask the customer to rephrase", phrases.ComeAgain))
		r.add(intent, models.OutcomePartialSuccessContinue,
			cannedDecision("ask the customer to rephrase", phrases.ComeAgain))
		r.add(intent, models.OutcomeAllFail,
			cannedDecision("ask the customer to rephrase", phrases.DidntUnderstand))
	}
}

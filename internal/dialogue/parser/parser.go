// Package parser turns a classified utterance into command descriptors.
// One strategy per intent; the router guarantees every call yields at least
// one descriptor, falling back to the UNKNOWN strategy when a strategy
// fails. Ambiguity is a successful parse with marker slots, never an error.
package parser

import (
	"context"
	"fmt"

	"drivethru-dialogue/internal/collaborators"
	"drivethru-dialogue/internal/common/logger"
	"drivethru-dialogue/internal/models"
)

// Parser is the per-intent parsing strategy.
type Parser interface {
	Parse(ctx context.Context, utterance string, sessCtx models.SessionContext) ([]models.CommandDescriptor, error)
}

// Router dispatches to the strategy registered for the intent. The strategy
// map is fixed at construction and validated against the intent enum.
type Router struct {
	strategies map[models.IntentType]Parser
	fallback   Parser
	logger     logger.Logger
}

// NewRouter registers a strategy for every intent. Free-form intents
// (ADD_ITEM, REMOVE_ITEM) get the extraction-backed strategy; the rest are
// rule-based and never fail.
func NewRouter(extractor collaborators.ItemExtractor, log logger.Logger) *Router {
	unknown := &unknownStrategy{}
	return &Router{
		strategies: map[models.IntentType]Parser{
			models.IntentAddItem:      &itemExtractionStrategy{intent: models.IntentAddItem, extractor: extractor},
			models.IntentRemoveItem:   &itemExtractionStrategy{intent: models.IntentRemoveItem, extractor: extractor},
			models.IntentModifyItem:   &lineTargetStrategy{intent: models.IntentModifyItem},
			models.IntentSetQuantity:  &lineTargetStrategy{intent: models.IntentSetQuantity},
			models.IntentClearOrder:   &clearOrderStrategy{},
			models.IntentConfirmOrder: &confirmOrderStrategy{},
			models.IntentRepeat:       &repeatStrategy{},
			models.IntentQuestion:     &questionStrategy{},
			models.IntentSmallTalk:    &smallTalkStrategy{},
			models.IntentUnknown:      unknown,
		},
		fallback: unknown,
		logger:   log,
	}
}

// Route produces the descriptor batch for the turn. It never returns an
// empty list: a failing or empty strategy result is replaced by the UNKNOWN
// strategy's output.
func (r *Router) Route(ctx context.Context, intent models.IntentType, utterance string, sessCtx models.SessionContext) []models.CommandDescriptor {
	strategy, ok := r.strategies[intent]
	if !ok {
		strategy = r.fallback
	}

	descriptors, err := strategy.Parse(ctx, utterance, sessCtx)
	if err != nil {
		r.logger.Warn("parse strategy failed, falling back to unknown", map[string]interface{}{
			"intent":     intent.String(),
			"session_id": sessCtx.SessionID,
			"error":      err.Error(),
		})
		descriptors = nil
	}
	if len(descriptors) == 0 {
		descriptors, _ = r.fallback.Parse(ctx, utterance, sessCtx)
	}
	return descriptors
}

// Validate checks that every intent in the enum has a registered strategy.
func (r *Router) Validate() error {
	for _, intent := range models.AllIntentTypes() {
		if _, ok := r.strategies[intent]; !ok {
			return fmt.Errorf("parser: no strategy registered for intent %s", intent)
		}
	}
	return nil
}

package parser

import (
	"context"
	"fmt"

	"drivethru-dialogue/internal/collaborators"
	"drivethru-dialogue/internal/models"
)

// itemExtractionStrategy handles the free-form intents that need menu
// resolution: ADD_ITEM and REMOVE_ITEM. It delegates to the extraction
// collaborator and passes ambiguity markers through untouched, since an
// underspecified item is something to clarify, not an error.
type itemExtractionStrategy struct {
	intent    models.IntentType
	extractor collaborators.ItemExtractor
}

func (s *itemExtractionStrategy) Parse(ctx context.Context, utterance string, sessCtx models.SessionContext) ([]models.CommandDescriptor, error) {
	descriptors, err := s.extractor.ExtractItems(ctx, s.intent, utterance, sessCtx)
	if err != nil {
		return nil, fmt.Errorf("item extraction for %s: %w", s.intent, err)
	}
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("item extraction for %s returned no descriptors", s.intent)
	}

	for i := range descriptors {
		if descriptors[i].Intent == "" {
			descriptors[i].Intent = s.intent
		}
		if descriptors[i].Slots == nil {
			descriptors[i].Slots = map[string]interface{}{}
		}
		if descriptors[i].UserInput == "" {
			descriptors[i].UserInput = utterance
		}
		descriptors[i].Slots[models.SlotRawInput] = utterance
	}
	return descriptors, nil
}

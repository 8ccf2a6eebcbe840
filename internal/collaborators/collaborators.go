// Package collaborators defines the contracts between the dialogue core and
// its external services. The core receives these as explicit dependencies;
// there is no ambient registry. Implementations live in the subpackages
// (genai, voice, orderstore) and in test fakes.
package collaborators

import (
	"context"

	"drivethru-dialogue/internal/models"
)

// OrderService applies one command descriptor to persisted order state.
// It must never let a Go error escape: infrastructure failures come back
// as a SYSTEM-category CommandResult so the batch keeps running.
type OrderService interface {
	Execute(ctx context.Context, descriptor models.CommandDescriptor, sessCtx models.SessionContext) models.CommandResult
}

// IntentClassifier turns a raw utterance into an (intent, confidence) pair.
// Confidence is in [0,1].
type IntentClassifier interface {
	ClassifyIntent(ctx context.Context, utterance string, sessCtx models.SessionContext) (models.IntentType, float64, error)
}

// ItemExtractor resolves free-form item mentions into command descriptors.
// An underspecified mention comes back as a descriptor with ambiguity slots,
// not as an error.
type ItemExtractor interface {
	ExtractItems(ctx context.Context, intent models.IntentType, utterance string, sessCtx models.SessionContext) ([]models.CommandDescriptor, error)
}

// ClarificationGenerator produces the follow-up question text for a batch
// whose results need the customer to choose.
type ClarificationGenerator interface {
	GenerateClarification(ctx context.Context, batch *models.CommandBatchResult, sessCtx models.SessionContext) (string, error)
}

// VoiceRenderer converts final response text into an audio reference.
type VoiceRenderer interface {
	Render(ctx context.Context, text string) (string, error)
}

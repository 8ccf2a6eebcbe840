package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "drivethru-dialogue/internal/common/errors"
	"drivethru-dialogue/internal/models"
)

func success() models.CommandResult {
	return models.SuccessResult("added", nil)
}

func failure(code apperrors.ErrorCode) models.CommandResult {
	return models.ErrorResult(code, "failed", nil)
}

func systemFailure() models.CommandResult {
	return models.SystemErrorResult(apperrors.ErrCodeDatabaseError, "connection refused")
}

// ===== BATCH OUTCOME =====

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		results []models.CommandResult
		want    models.BatchOutcome
	}{
		{
			name:    "empty batch is a failure",
			results: nil,
			want:    models.OutcomeAllFail,
		},
		{
			name:    "single success",
			results: []models.CommandResult{success()},
			want:    models.OutcomeAllSuccess,
		},
		{
			name:    "all successes",
			results: []models.CommandResult{success(), success(), success()},
			want:    models.OutcomeAllSuccess,
		},
		{
			name:    "single business failure",
			results: []models.CommandResult{failure(apperrors.ErrCodeItemUnavailable)},
			want:    models.OutcomeAllFail,
		},
		{
			name:    "all failures",
			results: []models.CommandResult{failure(apperrors.ErrCodeItemUnavailable), failure(apperrors.ErrCodeInvalidQuantity)},
			want:    models.OutcomeAllFail,
		},
		{
			name:    "system error trumps successes",
			results: []models.CommandResult{success(), systemFailure(), success()},
			want:    models.OutcomeFatalSystem,
		},
		{
			name:    "system error trumps business errors",
			results: []models.CommandResult{failure(apperrors.ErrCodeItemUnavailable), systemFailure()},
			want:    models.OutcomeFatalSystem,
		},
		{
			name:    "partial with unavailable item asks the customer",
			results: []models.CommandResult{success(), failure(apperrors.ErrCodeItemUnavailable)},
			want:    models.OutcomePartialSuccessAsk,
		},
		{
			name:    "partial with size required asks the customer",
			results: []models.CommandResult{failure(apperrors.ErrCodeSizeRequired), success()},
			want:    models.OutcomePartialSuccessAsk,
		},
		{
			name:    "partial with modifier conflict asks the customer",
			results: []models.CommandResult{success(), failure(apperrors.ErrCodeModifierConflict)},
			want:    models.OutcomePartialSuccessAsk,
		},
		{
			name:    "partial with quantity limit continues",
			results: []models.CommandResult{success(), failure(apperrors.ErrCodeQuantityExceedsLimit)},
			want:    models.OutcomePartialSuccessContinue,
		},
		{
			name:    "partial with validation error continues",
			results: []models.CommandResult{success(), failure(apperrors.ErrCodeInvalidQuantity)},
			want:    models.OutcomePartialSuccessContinue,
		},
		{
			name:    "choice-requiring error anywhere in the batch asks the customer",
			results: []models.CommandResult{failure(apperrors.ErrCodeInvalidQuantity), success(), failure(apperrors.ErrCodeItemUnavailable)},
			want:    models.OutcomePartialSuccessAsk,
		},
		{
			name:    "multiple non-choice errors still continue",
			results: []models.CommandResult{failure(apperrors.ErrCodeInvalidQuantity), success(), failure(apperrors.ErrCodeQuantityExceedsLimit)},
			want:    models.OutcomePartialSuccessContinue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.results))
		})
	}
}

// ===== FIRST ERROR CODE =====

func TestFirstErrorCode(t *testing.T) {
	tests := []struct {
		name    string
		results []models.CommandResult
		want    apperrors.ErrorCode
	}{
		{
			name:    "no results",
			results: nil,
			want:    "",
		},
		{
			name:    "no failures",
			results: []models.CommandResult{success(), success()},
			want:    "",
		},
		{
			name:    "business error before system error in input order",
			results: []models.CommandResult{systemFailure(), failure(apperrors.ErrCodeItemUnavailable)},
			want:    apperrors.ErrCodeItemUnavailable,
		},
		{
			name:    "earliest business error wins",
			results: []models.CommandResult{failure(apperrors.ErrCodeSizeRequired), failure(apperrors.ErrCodeItemUnavailable)},
			want:    apperrors.ErrCodeSizeRequired,
		},
		{
			name:    "validation error counts as actionable",
			results: []models.CommandResult{systemFailure(), failure(apperrors.ErrCodeInvalidQuantity)},
			want:    apperrors.ErrCodeInvalidQuantity,
		},
		{
			name:    "system error only when nothing else failed",
			results: []models.CommandResult{success(), systemFailure()},
			want:    apperrors.ErrCodeDatabaseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstErrorCode(tt.results))
		})
	}
}

// Package classifier collapses a batch of command results into a single
// outcome that drives response routing. All functions here are pure.
package classifier

import (
	apperrors "drivethru-dialogue/internal/common/errors"
	"drivethru-dialogue/internal/models"
)

// requiresChoice lists the error codes for which a partial failure should
// stop and ask the customer a question instead of glossing over the miss.
// Every code here represents a failure the customer can resolve by choosing.
var requiresChoice = map[apperrors.ErrorCode]bool{
	apperrors.ErrCodeItemUnavailable:       true,
	apperrors.ErrCodeSizeNotAvailable:      true,
	apperrors.ErrCodeSizeRequired:          true,
	apperrors.ErrCodeModifierConflict:      true,
	apperrors.ErrCodeOptionRequiredMissing: true,
}

// Classify maps the result set to one of the five batch outcomes.
// Rules apply in order, first match wins:
//
//  1. no results               -> ALL_FAIL
//  2. any SYSTEM error         -> FATAL_SYSTEM
//  3. mixed success + failure  -> PARTIAL_SUCCESS_ASK when any business
//     or validation error needs a customer choice,
//     PARTIAL_SUCCESS_CONTINUE otherwise
//  4. only failures            -> ALL_FAIL
//  5. otherwise                -> ALL_SUCCESS
func Classify(results []models.CommandResult) models.BatchOutcome {
	if len(results) == 0 {
		return models.OutcomeAllFail
	}

	successes := 0
	needsChoice := false
	for _, r := range results {
		if r.IsSuccess() {
			successes++
			continue
		}
		if r.ErrorCategory == apperrors.CategorySystem {
			return models.OutcomeFatalSystem
		}
		if requiresChoice[r.ErrorCode] {
			needsChoice = true
		}
	}

	failures := len(results) - successes
	switch {
	case successes > 0 && failures > 0:
		if needsChoice {
			return models.OutcomePartialSuccessAsk
		}
		return models.OutcomePartialSuccessContinue
	case successes == 0:
		return models.OutcomeAllFail
	default:
		return models.OutcomeAllSuccess
	}
}

// FirstErrorCode picks the error code that best explains the batch to the
// customer. Business and validation errors win over system errors because
// they are actionable; within a category the earliest result wins.
// Returns the empty string when nothing failed.
func FirstErrorCode(results []models.CommandResult) apperrors.ErrorCode {
	for _, r := range results {
		if r.IsError() && r.ErrorCategory != apperrors.CategorySystem {
			return r.ErrorCode
		}
	}
	for _, r := range results {
		if r.IsError() {
			return r.ErrorCode
		}
	}
	return ""
}

package models

import (
	apperrors "drivethru-dialogue/internal/common/errors"
)

// ResultStatus is the status of one executed command.
type ResultStatus string

const (
	StatusSuccess ResultStatus = "success"
	StatusError   ResultStatus = "error"
)

// CommandResult is the outcome of executing one CommandDescriptor.
// Exactly one per descriptor, immutable once created.
type CommandResult struct {
	Status        ResultStatus            `json:"status"`
	ErrorCategory apperrors.ErrorCategory `json:"error_category,omitempty"`
	ErrorCode     apperrors.ErrorCode     `json:"error_code,omitempty"`
	Message       string                  `json:"message"`
	Data          map[string]interface{}  `json:"data,omitempty"`
}

// Data keys recognized by the response aggregator.
const (
	DataItemName          = "item_name"
	DataQty               = "qty"
	DataRequestedItem     = "requested_item"
	DataResponseType      = "response_type"
	DataClarificationType = "clarification_type"

	ResponseTypeItemUnavailable    = "item_unavailable"
	ResponseTypeClarificationNeed  = "clarification_needed"
	ResponseTypeOrderConfirmed     = "order_confirmed"
	ClarificationTypeAmbiguousItem = "ambiguous_item"
)

// SuccessResult creates a successful command result.
func SuccessResult(message string, data map[string]interface{}) CommandResult {
	return CommandResult{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	}
}

// ErrorResult creates a failed command result with the code's category.
func ErrorResult(code apperrors.ErrorCode, message string, data map[string]interface{}) CommandResult {
	return CommandResult{
		Status:        StatusError,
		ErrorCategory: apperrors.CategoryOf(code),
		ErrorCode:     code,
		Message:       message,
		Data:          data,
	}
}

// SystemErrorResult wraps an infrastructure failure. Its message is never
// surfaced verbatim to the user.
func SystemErrorResult(code apperrors.ErrorCode, message string) CommandResult {
	return CommandResult{
		Status:        StatusError,
		ErrorCategory: apperrors.CategorySystem,
		ErrorCode:     code,
		Message:       message,
	}
}

// IsSuccess reports whether the command succeeded.
func (r CommandResult) IsSuccess() bool { return r.Status == StatusSuccess }

// IsError reports whether the command failed.
func (r CommandResult) IsError() bool { return r.Status == StatusError }

// BatchOutcome is the aggregate classification of one turn's command results.
type BatchOutcome string

const (
	OutcomeAllSuccess             BatchOutcome = "ALL_SUCCESS"
	OutcomePartialSuccessAsk      BatchOutcome = "PARTIAL_SUCCESS_ASK"
	OutcomePartialSuccessContinue BatchOutcome = "PARTIAL_SUCCESS_CONTINUE"
	OutcomeAllFail                BatchOutcome = "ALL_FAIL"
	OutcomeFatalSystem            BatchOutcome = "FATAL_SYSTEM"
)

// AllBatchOutcomes lists every outcome the classifier can produce.
func AllBatchOutcomes() []BatchOutcome {
	return []BatchOutcome{
		OutcomeAllSuccess,
		OutcomePartialSuccessAsk,
		OutcomePartialSuccessContinue,
		OutcomeAllFail,
		OutcomeFatalSystem,
	}
}

func (o BatchOutcome) String() string { return string(o) }

// SummaryEvent is a structured description of what one command did,
// extracted from its result for telemetry and templating.
type SummaryEvent struct {
	Type      string              `json:"type"` // ADDED_ITEM, REMOVED_ITEM, UPDATED_ITEM, FAILED_ITEM
	ItemName  string              `json:"item_name,omitempty"`
	Qty       int                 `json:"qty,omitempty"`
	ErrorCode apperrors.ErrorCode `json:"error_code,omitempty"`
}

// ResponsePayload describes what happened this turn for downstream
// rendering. It does not suggest what to do next.
type ResponsePayload struct {
	TemplateKey string                 `json:"template_key"`
	Args        map[string]interface{} `json:"args"`
	Telemetry   map[string]interface{} `json:"telemetry"`
}

// CommandBatchResult aggregates one turn's CommandResults. Created once by
// the executor, enriched by the classifier, read-only afterward.
type CommandBatchResult struct {
	Results            []CommandResult     `json:"results"`
	TotalCommands      int                 `json:"total_commands"`
	SuccessfulCommands int                 `json:"successful_commands"`
	FailedCommands     int                 `json:"failed_commands"`
	CommandFamily      IntentType          `json:"command_family"`
	BatchOutcome       BatchOutcome        `json:"batch_outcome"`
	FirstErrorCode     apperrors.ErrorCode `json:"first_error_code,omitempty"`
	SummaryMessage     string              `json:"summary_message"`
	ResponsePayload    ResponsePayload     `json:"response_payload"`
}

// HasSuccesses reports whether at least one command succeeded.
func (b *CommandBatchResult) HasSuccesses() bool { return b.SuccessfulCommands > 0 }

// HasFailures reports whether at least one command failed.
func (b *CommandBatchResult) HasFailures() bool { return b.FailedCommands > 0 }

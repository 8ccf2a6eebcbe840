// Package pipeline orchestrates one conversation turn end to end:
// classify intent, validate the state transition, route and execute
// commands, aggregate the response, render it. Every path reaches exactly
// one rendered response; the only cross-turn memory is the persisted
// conversation state, read once at the start and written once at the end.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"drivethru-dialogue/internal/collaborators"
	"drivethru-dialogue/internal/common/logger"
	"drivethru-dialogue/internal/common/metrics"
	"drivethru-dialogue/internal/common/observability"
	"drivethru-dialogue/internal/dialogue/aggregator"
	"drivethru-dialogue/internal/dialogue/executor"
	"drivethru-dialogue/internal/dialogue/parser"
	"drivethru-dialogue/internal/dialogue/phrases"
	"drivethru-dialogue/internal/dialogue/routing"
	"drivethru-dialogue/internal/dialogue/statemachine"
	"drivethru-dialogue/internal/models"
	"drivethru-dialogue/internal/session"
)

// Pipeline stage names, reported in turn telemetry.
const (
	StageIntentClassified   = "intent_classified"
	StageStateValidated     = "state_validated"
	StageCommandsRouted     = "commands_routed"
	StageCommandsExecuted   = "commands_executed"
	StageResponseAggregated = "response_aggregated"
	StageRendered           = "rendered"
)

// TurnRequest is one utterance to process.
type TurnRequest struct {
	SessionID    string `json:"session_id"`
	RestaurantID string `json:"restaurant_id"`
	Utterance    string `json:"utterance"`
}

// TurnResponse is the rendered result of one turn.
type TurnResponse struct {
	TurnID           string                   `json:"turn_id"`
	SessionID        string                   `json:"session_id"`
	Intent           models.IntentType        `json:"intent"`
	Confidence       float64                  `json:"confidence"`
	State            models.ConversationState `json:"state"`
	BatchOutcome     models.BatchOutcome      `json:"batch_outcome,omitempty"`
	ResponseText     string                   `json:"response_text"`
	ResponseCategory string                   `json:"response_category"`
	AudioURL         string                   `json:"audio_url,omitempty"`
	Stages           []string                 `json:"stages"`
}

// Options are the tunables the pipeline needs from configuration.
type Options struct {
	ConfidenceThreshold float64
	TurnTimeout         time.Duration
	RestaurantName      string
}

// Pipeline wires the turn stages together. All collaborators are injected
// explicitly; the pipeline holds no mutable state and is safe for
// concurrent turns across different sessions. Two concurrent turns on the
// same session are the caller's problem to prevent.
type Pipeline struct {
	opts       Options
	sessions   session.Store
	classifier collaborators.IntentClassifier
	parser     *parser.Router
	machine    *statemachine.Machine
	executor   *executor.Executor
	router     *routing.Router
	aggregator *aggregator.Aggregator
	voice      collaborators.VoiceRenderer
	obs        *observability.Observability
	logger     logger.Logger
}

// Deps groups the injected collaborators and components.
type Deps struct {
	Sessions   session.Store
	Classifier collaborators.IntentClassifier
	Parser     *parser.Router
	Machine    *statemachine.Machine
	Executor   *executor.Executor
	Router     *routing.Router
	Aggregator *aggregator.Aggregator
	Voice      collaborators.VoiceRenderer // optional; nil skips audio rendering
	Obs        *observability.Observability
	Logger     logger.Logger
}

func New(opts Options, deps Deps) *Pipeline {
	return &Pipeline{
		opts:       opts,
		sessions:   deps.Sessions,
		classifier: deps.Classifier,
		parser:     deps.Parser,
		machine:    deps.Machine,
		executor:   deps.Executor,
		router:     deps.Router,
		aggregator: deps.Aggregator,
		voice:      deps.Voice,
		obs:        deps.Obs,
		logger:     deps.Logger,
	}
}

// turn carries the evolving context through the stages of one execution.
type turn struct {
	id         string
	request    TurnRequest
	sessCtx    models.SessionContext
	startState models.ConversationState
	response   *TurnResponse
	started    time.Time
}

// ProcessTurn runs one utterance through the whole pipeline. It always
// returns a response with non-empty text; infrastructure failures collapse
// to the generic apology rather than an error.
func (p *Pipeline) ProcessTurn(ctx context.Context, req TurnRequest) *TurnResponse {
	if p.opts.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.TurnTimeout)
		defer cancel()
	}

	t := &turn{
		id:      uuid.NewString(),
		request: req,
		started: time.Now(),
		sessCtx: models.SessionContext{
			SessionID:    req.SessionID,
			RestaurantID: req.RestaurantID,
			OrderID:      req.SessionID,
		},
		response: &TurnResponse{SessionID: req.SessionID},
	}
	t.response.TurnID = t.id

	state, err := p.sessions.GetState(ctx, req.SessionID)
	if err != nil {
		p.logger.Error("session state read failed", map[string]interface{}{
			"turn_id":    t.id,
			"session_id": req.SessionID,
			"error":      err.Error(),
		})
		return p.systemApology(ctx, t, models.StateIdle)
	}
	t.startState = state
	t.response.State = state

	p.logger.Info("turn started", map[string]interface{}{
		"turn_id":    t.id,
		"session_id": req.SessionID,
		"state":      state.String(),
	})

	response := p.run(ctx, t)

	metrics.TurnsProcessed.WithLabelValues(string(response.Intent), string(response.BatchOutcome)).Inc()
	if p.obs != nil {
		p.obs.RecordTurnProcessed(ctx, string(response.BatchOutcome))
		p.obs.RecordTurnDuration(ctx, time.Since(t.started), StageRendered)
	}
	p.logger.Info("turn finished", map[string]interface{}{
		"turn_id":     t.id,
		"session_id":  req.SessionID,
		"intent":      response.Intent.String(),
		"state":       response.State.String(),
		"outcome":     string(response.BatchOutcome),
		"duration_ms": time.Since(t.started).Milliseconds(),
	})
	return response
}

func (p *Pipeline) run(ctx context.Context, t *turn) *TurnResponse {
	// Stage: intent_classified.
	intent, confidence, err := p.stageClassify(ctx, t)
	if err != nil {
		return p.systemApology(ctx, t, t.startState)
	}
	t.response.Intent = intent
	t.response.Confidence = confidence

	if confidence < p.opts.ConfidenceThreshold {
		metrics.LowConfidenceTurns.Inc()
		p.logger.Info("confidence below threshold", map[string]interface{}{
			"turn_id":    t.id,
			"confidence": confidence,
			"threshold":  p.opts.ConfidenceThreshold,
		})
		return p.renderCanned(ctx, t, phrases.DidntUnderstand, t.startState)
	}

	// Stage: state_validated.
	transition := p.stageValidate(t, intent)
	if !transition.IsValid || !transition.RequiresCommand {
		return p.renderCanned(ctx, t, phrases.Key(transition.ResponseKey), transition.TargetState)
	}

	// Stage: commands_routed.
	descriptors := p.stageRoute(ctx, t, intent)

	// Stage: commands_executed.
	batch := p.stageExecute(ctx, t, descriptors)
	t.response.BatchOutcome = batch.BatchOutcome

	newState := transition.TargetState
	if batch.BatchOutcome == models.OutcomeFatalSystem {
		// A turn the system failed must not advance the dialogue.
		newState = t.startState
	}

	// Stage: response_aggregated.
	decision, err := p.router.Route(string(intent), batch.BatchOutcome.String())
	if err != nil {
		// The table is validated total at startup; reaching this is a bug.
		p.logger.Error("routing table miss", map[string]interface{}{
			"turn_id": t.id,
			"intent":  intent.String(),
			"outcome": batch.BatchOutcome.String(),
			"error":   err.Error(),
		})
		return p.systemApology(ctx, t, t.startState)
	}

	var text, category string
	if decision.NextStage == models.StageCannedResponse {
		text = phrases.Text(phrases.Key(decision.TemplateKey), p.opts.RestaurantName)
		category = aggregator.CategorySuccess
		if batch.HasFailures() {
			category = aggregator.CategoryError
		}
	} else {
		aggregated := p.aggregator.Aggregate(ctx, batch, t.sessCtx)
		text = aggregated.Text
		category = aggregated.Category
	}
	t.markStage(StageResponseAggregated)

	return p.render(ctx, t, text, category, newState)
}

func (p *Pipeline) stageClassify(ctx context.Context, t *turn) (models.IntentType, float64, error) {
	start := time.Now()
	intent, confidence, err := p.classifier.ClassifyIntent(ctx, t.request.Utterance, t.sessCtx)
	metrics.TurnDuration.WithLabelValues(StageIntentClassified).Observe(time.Since(start).Seconds())
	t.markStage(StageIntentClassified)
	if err != nil {
		p.logger.Error("intent classification failed", map[string]interface{}{
			"turn_id":    t.id,
			"session_id": t.request.SessionID,
			"error":      err.Error(),
		})
		return models.IntentUnknown, 0, err
	}
	return intent, confidence, nil
}

func (p *Pipeline) stageValidate(t *turn, intent models.IntentType) models.Transition {
	transition := p.machine.Transition(t.startState, intent)
	t.markStage(StageStateValidated)
	if !transition.IsValid {
		p.logger.Info("transition rejected", map[string]interface{}{
			"turn_id": t.id,
			"state":   t.startState.String(),
			"intent":  intent.String(),
		})
	}
	return transition
}

func (p *Pipeline) stageRoute(ctx context.Context, t *turn, intent models.IntentType) []models.CommandDescriptor {
	start := time.Now()
	descriptors := p.parser.Route(ctx, intent, t.request.Utterance, t.sessCtx)
	metrics.TurnDuration.WithLabelValues(StageCommandsRouted).Observe(time.Since(start).Seconds())
	t.markStage(StageCommandsRouted)
	return descriptors
}

func (p *Pipeline) stageExecute(ctx context.Context, t *turn, descriptors []models.CommandDescriptor) *models.CommandBatchResult {
	start := time.Now()
	batch := p.executor.Execute(ctx, descriptors, t.sessCtx)
	metrics.TurnDuration.WithLabelValues(StageCommandsExecuted).Observe(time.Since(start).Seconds())
	t.markStage(StageCommandsExecuted)
	return batch
}

// renderCanned finishes the turn with a canned phrase, skipping command
// routing entirely.
func (p *Pipeline) renderCanned(ctx context.Context, t *turn, key phrases.Key, newState models.ConversationState) *TurnResponse {
	text := phrases.Text(key, p.opts.RestaurantName)
	return p.render(ctx, t, text, aggregator.CategoryFallback, newState)
}

// systemApology finishes a turn the infrastructure failed. The dialogue
// state does not advance.
func (p *Pipeline) systemApology(ctx context.Context, t *turn, state models.ConversationState) *TurnResponse {
	t.response.BatchOutcome = models.OutcomeFatalSystem
	text := phrases.Text(phrases.SystemErrorRetry, p.opts.RestaurantName)
	return p.render(ctx, t, text, aggregator.CategoryError, state)
}

// render is the single terminal stage: persist the (possibly unchanged)
// state, optionally synthesize audio, stamp the response.
func (p *Pipeline) render(ctx context.Context, t *turn, text, category string, newState models.ConversationState) *TurnResponse {
	if err := p.sessions.SetState(ctx, t.request.SessionID, newState); err != nil {
		p.logger.Error("session state write failed", map[string]interface{}{
			"turn_id":    t.id,
			"session_id": t.request.SessionID,
			"state":      newState.String(),
			"error":      err.Error(),
		})
	}

	if p.voice != nil && text != "" {
		audioURL, err := p.voice.Render(ctx, text)
		if err != nil {
			p.logger.Warn("audio rendering failed, responding with text only", map[string]interface{}{
				"turn_id": t.id,
				"error":   err.Error(),
			})
		} else {
			t.response.AudioURL = audioURL
		}
	}

	t.markStage(StageRendered)
	t.response.ResponseText = text
	t.response.ResponseCategory = category
	t.response.State = newState
	return t.response
}

func (t *turn) markStage(stage string) {
	t.response.Stages = append(t.response.Stages, stage)
}

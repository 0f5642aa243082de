package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/qainatsaeed/BlackBox-LLM/internal/dto"
	"github.com/qainatsaeed/BlackBox-LLM/internal/pkg/logger"
	"github.com/qainatsaeed/BlackBox-LLM/internal/policy"
	"github.com/qainatsaeed/BlackBox-LLM/internal/registry"
	"github.com/qainatsaeed/BlackBox-LLM/internal/retrieval"
)

// State names the stages a request moves through, as observed from this
// function: classification and the scope re-filter happen inside retrieval,
// so they complete together with it. Progression is linear; failure is
// terminal from any stage.
type State string

const (
	StateReceived  State = "received"
	StateValidated State = "validated"
	StateRetrieved State = "retrieved"
	StatePrompted  State = "prompted"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Retriever is the orchestrator's surface as the pipeline sees it.
type Retriever interface {
	Retrieve(ctx context.Context, query string, scope policy.Scope, topK int) (*retrieval.GroundingContext, retrieval.Classification)
}

// Models is the registry surface the pipeline needs.
type Models interface {
	Resolve(name string) (*registry.Handle, error)
	Invoke(ctx context.Context, handle *registry.Handle, prompt string) (string, string, error)
}

// Pipeline turns one inbound envelope into exactly one response envelope.
// Stateless across requests, safe for concurrent use.
type Pipeline struct {
	retriever Retriever
	models    Models
	log       logger.ILogger
}

func New(retriever Retriever, models Models, log logger.ILogger) *Pipeline {
	return &Pipeline{
		retriever: retriever,
		models:    models,
		log:       log,
	}
}

// Process runs a request through the full stage sequence. It never panics
// outward and always returns a response carrying the originating request_id,
// whatever the request looked like.
func (p *Pipeline) Process(ctx context.Context, req *dto.AskRequest) *dto.AskResponse {
	start := time.Now()
	state := StateReceived

	fail := func(code, message string) *dto.AskResponse {
		p.log.Warn("pipeline", "request failed", map[string]interface{}{
			"request_id": req.RequestID,
			"stage":      string(state),
			"code":       code,
			"message":    message,
		})
		return &dto.AskResponse{
			RequestID: req.RequestID,
			Status:    dto.StatusError,
			Error:     &dto.ErrorDetail{Code: code, Message: message},
			ElapsedMs: time.Since(start).Milliseconds(),
		}
	}

	if err := req.Validate(); err != nil {
		return fail(CodeBadRequest, "invalid request envelope: "+err.Error())
	}

	role, err := policy.ParseRole(req.Role)
	if err != nil {
		return fail(CodeUnauthorized, "unknown role: "+req.Role)
	}
	state = StateValidated

	scope := policy.ScopeFor(policy.Requester{
		UserID:          req.UserID,
		Role:            role,
		AccountID:       req.AccountID,
		LocationIDs:     req.AccessibleLocationIDs,
		TeamEmployeeIDs: req.TeamEmployeeIDs,
	})

	// Resolved before retrieval so an unknown model fails fast, without
	// touching the data stores.
	handle, err := p.models.Resolve(req.Model)
	if err != nil {
		if errors.Is(err, registry.ErrUnknownModel) {
			return fail(CodeUnknownModel, err.Error())
		}
		return fail(CodeBadRequest, err.Error())
	}

	grounding, cls := p.retriever.Retrieve(ctx, req.Query, scope, req.TopK)
	state = StateRetrieved

	debug := p.debugMeta(role, cls, grounding)

	if grounding.TotalFailure() {
		// Every consulted source failed. The requester sees the no-data
		// answer; the failure stays in the logs and the debug metadata.
		p.log.Error("pipeline", "all retrieval sources failed", map[string]interface{}{
			"request_id": req.RequestID,
			"code":       CodeRetrievalTotalFailure,
			"reasons":    grounding.FailureReasons,
		})
		return &dto.AskResponse{
			RequestID: req.RequestID,
			Status:    dto.StatusOK,
			Answer:    NoDataAnswer,
			ElapsedMs: time.Since(start).Milliseconds(),
			Debug:     debug,
		}
	}

	if grounding.Empty() {
		// Nothing in scope to ground an answer on. Completing with the fixed
		// refusal keeps the model from answering out of its own knowledge.
		return &dto.AskResponse{
			RequestID: req.RequestID,
			Status:    dto.StatusOK,
			Answer:    NoDataAnswer,
			ElapsedMs: time.Since(start).Milliseconds(),
			Debug:     debug,
		}
	}

	prompt := BuildPrompt(handle.Config.PromptTemplate, role, grounding, req.Query)
	state = StatePrompted

	answer, modelUsed, err := p.models.Invoke(ctx, handle, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fail(CodeTimeout, "model invocation timed out")
		}
		return fail(CodeModelUnavailable, err.Error())
	}
	state = StateCompleted
	p.log.Info("pipeline", "request completed", map[string]interface{}{
		"request_id":     req.RequestID,
		"stage":          string(state),
		"model":          modelUsed,
		"classification": string(cls.Kind),
		"retrieved":      grounding.Retrieved,
		"kept":           grounding.Kept,
	})

	return &dto.AskResponse{
		RequestID: req.RequestID,
		Status:    dto.StatusOK,
		Answer:    answer,
		ModelUsed: modelUsed,
		ElapsedMs: time.Since(start).Milliseconds(),
		Debug:     debug,
	}
}

// debugMeta attaches retrieval diagnostics for supervisory roles. Employees
// get answers only.
func (p *Pipeline) debugMeta(role policy.Role, cls retrieval.Classification, grounding *retrieval.GroundingContext) *dto.ResponseMeta {
	if role == policy.RoleEmployee {
		return nil
	}
	return &dto.ResponseMeta{
		Classification:       string(cls.Kind),
		DocumentsRetrieved:   grounding.Retrieved,
		DocumentsAfterFilter: grounding.Kept,
		PartialFailure:       grounding.PartialFailure(),
	}
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qainatsaeed/BlackBox-LLM/internal/dto"
	"github.com/qainatsaeed/BlackBox-LLM/internal/pkg/logger"
	"github.com/qainatsaeed/BlackBox-LLM/internal/policy"
	"github.com/qainatsaeed/BlackBox-LLM/internal/registry"
	"github.com/qainatsaeed/BlackBox-LLM/internal/retrieval"
)

type stubRetriever struct {
	grounding *retrieval.GroundingContext
	cls       retrieval.Classification
	called    bool
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string, scope policy.Scope, topK int) (*retrieval.GroundingContext, retrieval.Classification) {
	s.called = true
	return s.grounding, s.cls
}

type stubModels struct {
	answer      string
	invokeErr   error
	unknownName bool
	invoked     bool
	lastPrompt  string
}

func (s *stubModels) Resolve(name string) (*registry.Handle, error) {
	if s.unknownName {
		return nil, fmt.Errorf("%w: %s", registry.ErrUnknownModel, name)
	}
	return &registry.Handle{Name: "test-model"}, nil
}

func (s *stubModels) Invoke(ctx context.Context, handle *registry.Handle, prompt string) (string, string, error) {
	s.invoked = true
	s.lastPrompt = prompt
	if s.invokeErr != nil {
		return "", "", s.invokeErr
	}
	return s.answer, handle.Name, nil
}

func validRequest() *dto.AskRequest {
	return &dto.AskRequest{
		RequestID: "req-1",
		Query:     "what were my hours on 2025-06-01",
		UserID:    "emp001",
		Role:      "employee",
		AccountID: "acct1",
	}
}

func groundingWith(fragments ...retrieval.Fragment) *retrieval.GroundingContext {
	return &retrieval.GroundingContext{
		Fragments: fragments,
		Retrieved: len(fragments),
		Kept:      len(fragments),
	}
}

func inScopeFragment() retrieval.Fragment {
	return retrieval.Fragment{
		Text:      "shift: employee_code: emp001, date: 2025-06-01",
		Score:     1.0,
		Source:    retrieval.SourceStructured,
		AccountID: "acct1",
	}
}

func TestProcessAnswersGroundedQuery(t *testing.T) {
	retriever := &stubRetriever{grounding: groundingWith(inScopeFragment())}
	models := &stubModels{answer: "You worked 9:00 to 17:00."}
	p := New(retriever, models, logger.NewNopLogger())

	resp := p.Process(context.Background(), validRequest())

	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, dto.StatusOK, resp.Status)
	assert.Equal(t, "You worked 9:00 to 17:00.", resp.Answer)
	assert.Equal(t, "test-model", resp.ModelUsed)
	assert.Nil(t, resp.Error)
	assert.True(t, models.invoked)
	assert.Contains(t, models.lastPrompt, "shift: employee_code: emp001")
	assert.Contains(t, models.lastPrompt, "what were my hours")
}

func TestProcessEmployeeGetsNoDebugMetadata(t *testing.T) {
	retriever := &stubRetriever{grounding: groundingWith(inScopeFragment())}
	p := New(retriever, &stubModels{answer: "ok"}, logger.NewNopLogger())

	resp := p.Process(context.Background(), validRequest())

	assert.Nil(t, resp.Debug)
}

func TestProcessManagerGetsDebugMetadata(t *testing.T) {
	grounding := groundingWith(inScopeFragment())
	grounding.Retrieved = 3
	grounding.Kept = 1
	retriever := &stubRetriever{
		grounding: grounding,
		cls:       retrieval.Classification{Kind: retrieval.KindStructured},
	}
	p := New(retriever, &stubModels{answer: "ok"}, logger.NewNopLogger())

	req := validRequest()
	req.Role = "manager"
	req.AccessibleLocationIDs = []string{"loc1"}
	resp := p.Process(context.Background(), req)

	require.NotNil(t, resp.Debug)
	assert.Equal(t, "structured", resp.Debug.Classification)
	assert.Equal(t, 3, resp.Debug.DocumentsRetrieved)
	assert.Equal(t, 1, resp.Debug.DocumentsAfterFilter)
}

func TestProcessEmptyContextShortCircuits(t *testing.T) {
	// Nothing in scope: the pipeline answers with the fixed refusal and the
	// model is never consulted.
	retriever := &stubRetriever{grounding: groundingWith()}
	models := &stubModels{answer: "must not appear"}
	p := New(retriever, models, logger.NewNopLogger())

	resp := p.Process(context.Background(), validRequest())

	assert.Equal(t, dto.StatusOK, resp.Status)
	assert.Equal(t, NoDataAnswer, resp.Answer)
	assert.Empty(t, resp.ModelUsed)
	assert.False(t, models.invoked)
}

func TestProcessMissingFieldsIsBadRequest(t *testing.T) {
	p := New(&stubRetriever{}, &stubModels{}, logger.NewNopLogger())

	req := validRequest()
	req.Query = ""
	resp := p.Process(context.Background(), req)

	assert.Equal(t, dto.StatusError, resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeBadRequest, resp.Error.Code)
	assert.Equal(t, "req-1", resp.RequestID)
}

func TestProcessUnknownRoleIsUnauthorized(t *testing.T) {
	retriever := &stubRetriever{}
	p := New(retriever, &stubModels{}, logger.NewNopLogger())

	req := validRequest()
	req.Role = "superuser"
	resp := p.Process(context.Background(), req)

	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeUnauthorized, resp.Error.Code)
	assert.False(t, retriever.called)
}

func TestProcessUnknownModelFailsBeforeRetrieval(t *testing.T) {
	retriever := &stubRetriever{}
	p := New(retriever, &stubModels{unknownName: true}, logger.NewNopLogger())

	req := validRequest()
	req.Model = "gpt-imaginary"
	resp := p.Process(context.Background(), req)

	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeUnknownModel, resp.Error.Code)
	assert.False(t, retriever.called)
}

func TestProcessTotalRetrievalFailure(t *testing.T) {
	grounding := &retrieval.GroundingContext{
		FailureReasons: []string{"structured: db down", "documents: index down"},
	}
	grounding.MarkConsulted(2)
	models := &stubModels{answer: "must not appear"}
	p := New(&stubRetriever{grounding: grounding}, models, logger.NewNopLogger())

	resp := p.Process(context.Background(), validRequest())

	// Both sources down reads as no data, not as a hard error.
	assert.Equal(t, dto.StatusOK, resp.Status)
	assert.Equal(t, NoDataAnswer, resp.Answer)
	assert.False(t, models.invoked)
	assert.Equal(t, "req-1", resp.RequestID)
}

func TestProcessPartialFailureIsMetadataNotError(t *testing.T) {
	grounding := groundingWith(inScopeFragment())
	grounding.FailureReasons = []string{"documents: index down"}
	grounding.MarkConsulted(2)
	p := New(&stubRetriever{grounding: grounding}, &stubModels{answer: "ok"}, logger.NewNopLogger())

	req := validRequest()
	req.Role = "supervisor"
	resp := p.Process(context.Background(), req)

	assert.Equal(t, dto.StatusOK, resp.Status)
	require.NotNil(t, resp.Debug)
	assert.Contains(t, resp.Debug.PartialFailure, "index down")
}

func TestProcessModelFailureAfterFallback(t *testing.T) {
	retriever := &stubRetriever{grounding: groundingWith(inScopeFragment())}
	models := &stubModels{invokeErr: errors.New("all backends down")}
	p := New(retriever, models, logger.NewNopLogger())

	resp := p.Process(context.Background(), validRequest())

	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeModelUnavailable, resp.Error.Code)
	assert.Equal(t, "req-1", resp.RequestID)
}

func TestProcessModelTimeout(t *testing.T) {
	retriever := &stubRetriever{grounding: groundingWith(inScopeFragment())}
	models := &stubModels{invokeErr: fmt.Errorf("generate: %w", context.DeadlineExceeded)}
	p := New(retriever, models, logger.NewNopLogger())

	resp := p.Process(context.Background(), validRequest())

	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeTimeout, resp.Error.Code)
}

func TestProcessAlwaysEchoesRequestID(t *testing.T) {
	requests := []*dto.AskRequest{
		{RequestID: "corr-1"},
		{RequestID: "corr-2", Query: "q", UserID: "u", Role: "ghost"},
		{RequestID: "corr-3", Query: "q", UserID: "u", Role: "employee"},
	}
	p := New(&stubRetriever{grounding: groundingWith()}, &stubModels{}, logger.NewNopLogger())

	for _, req := range requests {
		resp := p.Process(context.Background(), req)
		assert.Equal(t, req.RequestID, resp.RequestID)
	}
}

func TestBuildPromptSubstitutesContextAndQuery(t *testing.T) {
	grounding := groundingWith(inScopeFragment())
	template := "Evidence:\n{context}\n\nQ: {query}"

	prompt := BuildPrompt(template, policy.RoleManager, grounding, "who worked monday")

	assert.Contains(t, prompt, "--- Document 1 ---")
	assert.Contains(t, prompt, "Q: who worked monday")
	assert.Contains(t, prompt, "manager")
}

func TestBuildPromptEmptyContextMarker(t *testing.T) {
	prompt := BuildPrompt("", policy.RoleEmployee, groundingWith(), "anything")

	assert.Contains(t, prompt, "No relevant records were found.")
}

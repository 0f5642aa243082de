package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qainatsaeed/BlackBox-LLM/internal/pkg/logger"
	"github.com/qainatsaeed/BlackBox-LLM/internal/policy"
)

type fixedClassifier struct {
	result Classification
}

func (c fixedClassifier) Classify(string) Classification { return c.result }

type stubStructuredSource struct {
	fragments []Fragment
	err       error
}

func (s stubStructuredSource) Retrieve(context.Context, Classification, policy.Scope) ([]Fragment, error) {
	return s.fragments, s.err
}

type stubDocumentSource struct {
	fragments []Fragment
	err       error
}

func (s stubDocumentSource) Retrieve(context.Context, string, policy.Scope, int) ([]Fragment, error) {
	return s.fragments, s.err
}

func managerScope() policy.Scope {
	return policy.ScopeFor(policy.Requester{
		UserID:      "mgr1",
		Role:        policy.RoleManager,
		AccountID:   "acct1",
		LocationIDs: []string{"loc1"},
	})
}

func ambiguousClassification() Classification {
	return Classification{
		Kind:       KindAmbiguous,
		Structured: StructuredQuery{Intent: IntentShiftsOnDate},
	}
}

func newTestOrchestrator(cls Classification, structured StructuredSource, documents DocumentSource, budget int) *Orchestrator {
	return NewOrchestrator(
		fixedClassifier{result: cls},
		structured,
		documents,
		time.Second,
		budget,
		logger.NewNopLogger(),
	)
}

func TestRetrieveMergesBothSources(t *testing.T) {
	structured := stubStructuredSource{fragments: []Fragment{
		{Text: "shift row", Score: 1.0, Source: SourceStructured, AccountID: "acct1", LocationID: "loc1"},
	}}
	documents := stubDocumentSource{fragments: []Fragment{
		{Text: "doc passage", Score: 0.8, Source: SourceDocuments, AccountID: "acct1", LocationID: "loc1"},
	}}
	o := newTestOrchestrator(ambiguousClassification(), structured, documents, 6000)

	grounding, cls := o.Retrieve(context.Background(), "who is working", managerScope(), 0)

	require.Len(t, grounding.Fragments, 2)
	assert.Equal(t, "shift row", grounding.Fragments[0].Text)
	assert.Equal(t, "doc passage", grounding.Fragments[1].Text)
	assert.Equal(t, KindAmbiguous, cls.Kind)
	assert.Empty(t, grounding.FailureReasons)
	assert.False(t, grounding.TotalFailure())
}

func TestRetrieveStructuredWinsScoreTies(t *testing.T) {
	structured := stubStructuredSource{fragments: []Fragment{
		{Text: "row", Score: 0.9, Source: SourceStructured, AccountID: "acct1"},
	}}
	documents := stubDocumentSource{fragments: []Fragment{
		{Text: "passage", Score: 0.9, Source: SourceDocuments, AccountID: "acct1"},
	}}
	o := newTestOrchestrator(ambiguousClassification(), structured, documents, 6000)

	grounding, _ := o.Retrieve(context.Background(), "q", managerScope(), 0)

	require.Len(t, grounding.Fragments, 2)
	assert.Equal(t, SourceStructured, grounding.Fragments[0].Source)
}

func TestRetrieveOneSourceFailingIsPartial(t *testing.T) {
	structured := stubStructuredSource{fragments: []Fragment{
		{Text: "shift row", Score: 1.0, Source: SourceStructured, AccountID: "acct1", LocationID: "loc1"},
	}}
	documents := stubDocumentSource{err: errors.New("index unreachable")}
	o := newTestOrchestrator(ambiguousClassification(), structured, documents, 6000)

	grounding, _ := o.Retrieve(context.Background(), "q", managerScope(), 0)

	require.Len(t, grounding.Fragments, 1)
	assert.False(t, grounding.TotalFailure())
	assert.Contains(t, grounding.PartialFailure(), "index unreachable")
}

func TestRetrieveAllSourcesFailingIsTotal(t *testing.T) {
	structured := stubStructuredSource{err: errors.New("db down")}
	documents := stubDocumentSource{err: errors.New("index down")}
	o := newTestOrchestrator(ambiguousClassification(), structured, documents, 6000)

	grounding, _ := o.Retrieve(context.Background(), "q", managerScope(), 0)

	assert.True(t, grounding.Empty())
	assert.True(t, grounding.TotalFailure())
	assert.Len(t, grounding.FailureReasons, 2)
	assert.Empty(t, grounding.PartialFailure())
}

func TestRetrieveDropsOutOfScopeFragments(t *testing.T) {
	// A misbehaving source hands back rows from another account and from a
	// location the requester cannot see. None of them may survive.
	documents := stubDocumentSource{fragments: []Fragment{
		{Text: "in scope", Score: 0.9, Source: SourceDocuments, AccountID: "acct1", LocationID: "loc1"},
		{Text: "other account", Score: 0.95, Source: SourceDocuments, AccountID: "acct2", LocationID: "loc1"},
		{Text: "other location", Score: 0.93, Source: SourceDocuments, AccountID: "acct1", LocationID: "loc9", EmployeeCode: "empX"},
	}}
	o := newTestOrchestrator(
		Classification{Kind: KindUnstructured},
		stubStructuredSource{},
		documents,
		6000,
	)

	grounding, _ := o.Retrieve(context.Background(), "q", managerScope(), 0)

	require.Len(t, grounding.Fragments, 1)
	assert.Equal(t, "in scope", grounding.Fragments[0].Text)
	assert.Equal(t, 3, grounding.Retrieved)
	assert.Equal(t, 1, grounding.Kept)
}

func TestRetrieveKeepsLaborCostForSupervisor(t *testing.T) {
	scope := policy.ScopeFor(policy.Requester{
		UserID:          "sup1",
		Role:            policy.RoleSupervisor,
		AccountID:       "acct1",
		TeamEmployeeIDs: []string{"emp003", "emp004"},
	})

	// Fragments shaped the way the SQL source renders labor costs: account
	// stamped, no location or employee attribution.
	structured := stubStructuredSource{fragments: []Fragment{
		{Text: "labor_cost: date: 2025-06-01, cost: 412.00", Score: 1.0, Source: SourceStructured, AccountID: "acct1", DataType: "labor_cost"},
		{Text: "labor_cost_total: from: 2025-06-01, to: 2025-06-01, total: 412.00", Score: 1.0, Source: SourceStructured, AccountID: "acct1", DataType: "labor_cost"},
	}}
	cls := Classification{
		Kind:       KindStructured,
		Structured: StructuredQuery{Intent: IntentLaborCost},
	}
	o := newTestOrchestrator(cls, structured, stubDocumentSource{}, 6000)

	grounding, _ := o.Retrieve(context.Background(), "labor cost yesterday", scope, 0)

	assert.Equal(t, 2, grounding.Retrieved)
	assert.Equal(t, 2, grounding.Kept)
	require.Len(t, grounding.Fragments, 2)
	assert.False(t, grounding.Empty())
}

func TestRetrieveSkipsStructuredForUnstructuredQueries(t *testing.T) {
	structured := stubStructuredSource{err: errors.New("must not be consulted")}
	documents := stubDocumentSource{fragments: []Fragment{
		{Text: "passage", Score: 0.7, Source: SourceDocuments, AccountID: "acct1"},
	}}
	o := newTestOrchestrator(Classification{Kind: KindUnstructured}, structured, documents, 6000)

	grounding, _ := o.Retrieve(context.Background(), "q", managerScope(), 0)

	require.Len(t, grounding.Fragments, 1)
	assert.Empty(t, grounding.FailureReasons)
}

func TestRetrieveTruncatesToCharBudget(t *testing.T) {
	long := strings.Repeat("x", 120)
	documents := stubDocumentSource{fragments: []Fragment{
		{Text: long, Score: 0.9, Source: SourceDocuments, AccountID: "acct1"},
		{Text: long, Score: 0.8, Source: SourceDocuments, AccountID: "acct1"},
		{Text: long, Score: 0.7, Source: SourceDocuments, AccountID: "acct1"},
	}}
	o := newTestOrchestrator(Classification{Kind: KindUnstructured}, stubStructuredSource{}, documents, 250)

	grounding, _ := o.Retrieve(context.Background(), "q", managerScope(), 0)

	require.Len(t, grounding.Fragments, 2)
	assert.Equal(t, 0.9, grounding.Fragments[0].Score)
}

func TestRetrieveKeepsOneOversizedFragment(t *testing.T) {
	documents := stubDocumentSource{fragments: []Fragment{
		{Text: strings.Repeat("y", 500), Score: 0.9, Source: SourceDocuments, AccountID: "acct1"},
	}}
	o := newTestOrchestrator(Classification{Kind: KindUnstructured}, stubStructuredSource{}, documents, 100)

	grounding, _ := o.Retrieve(context.Background(), "q", managerScope(), 0)

	require.Len(t, grounding.Fragments, 1)
}

func TestRenderNumbersFragments(t *testing.T) {
	g := &GroundingContext{Fragments: []Fragment{
		{Text: "first"},
		{Text: "second"},
	}}

	rendered := g.Render()

	assert.Contains(t, rendered, "--- Document 1 ---\nfirst")
	assert.Contains(t, rendered, "--- Document 2 ---\nsecond")
}

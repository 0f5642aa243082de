package retrieval

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/qainatsaeed/BlackBox-LLM/internal/pkg/logger"
	"github.com/qainatsaeed/BlackBox-LLM/internal/policy"
)

// Orchestrator fans a classified query out to the retrieval sources, merges
// what comes back, and re-applies the scope predicate to every fragment.
// One failing source never takes the other down with it.
type Orchestrator struct {
	classifier Classifier
	structured StructuredSource
	documents  DocumentSource

	sourceTimeout time.Duration
	charBudget    int
	log           logger.ILogger
}

func NewOrchestrator(
	classifier Classifier,
	structured StructuredSource,
	documents DocumentSource,
	sourceTimeout time.Duration,
	charBudget int,
	log logger.ILogger,
) *Orchestrator {
	if sourceTimeout <= 0 {
		sourceTimeout = 5 * time.Second
	}
	if charBudget <= 0 {
		charBudget = 6000
	}
	return &Orchestrator{
		classifier:    classifier,
		structured:    structured,
		documents:     documents,
		sourceTimeout: sourceTimeout,
		charBudget:    charBudget,
		log:           log,
	}
}

// Retrieve classifies the query, consults the sources it maps to, and
// returns a grounding context. The returned context is never nil, failures
// are carried inside it. topK <= 0 means the document source's default.
func (o *Orchestrator) Retrieve(ctx context.Context, query string, scope policy.Scope, topK int) (*GroundingContext, Classification) {
	cls := o.classifier.Classify(query)

	useStructured := cls.Kind != KindUnstructured && cls.Structured.Intent != IntentNone
	useDocuments := cls.Kind != KindStructured || !useStructured

	results := make(chan SourceResult, 2)
	consulted := 0

	if useStructured {
		consulted++
		go func() {
			srcCtx, cancel := context.WithTimeout(ctx, o.sourceTimeout)
			defer cancel()
			fragments, err := o.structured.Retrieve(srcCtx, cls, scope)
			results <- SourceResult{Source: SourceStructured, Fragments: fragments, Err: err}
		}()
	}
	if useDocuments {
		consulted++
		go func() {
			srcCtx, cancel := context.WithTimeout(ctx, o.sourceTimeout)
			defer cancel()
			fragments, err := o.documents.Retrieve(srcCtx, query, scope, topK)
			results <- SourceResult{Source: SourceDocuments, Fragments: fragments, Err: err}
		}()
	}

	grounding := &GroundingContext{
		Classification: cls.Kind,
	}
	grounding.MarkConsulted(consulted)

	var gathered []Fragment
	for i := 0; i < consulted; i++ {
		res := <-results
		if res.Err != nil {
			o.log.Warn("retrieval", "source failed", map[string]interface{}{
				"source": res.Source,
				"error":  res.Err.Error(),
			})
			grounding.FailureReasons = append(grounding.FailureReasons,
				fmt.Sprintf("%s: %v", res.Source, res.Err))
			continue
		}
		gathered = append(gathered, res.Fragments...)
	}
	grounding.Retrieved = len(gathered)

	// Sources already constrain their queries to the scope, but they are
	// interchangeable components. Every fragment is re-checked here so a
	// misbehaving source cannot leak rows past the policy.
	kept := gathered[:0]
	for _, frag := range gathered {
		if scope.AllowsRecord(frag.AccountID, frag.LocationID, frag.EmployeeCode, frag.DataType) {
			kept = append(kept, frag)
		}
	}
	grounding.Kept = len(kept)
	if dropped := grounding.Retrieved - grounding.Kept; dropped > 0 {
		o.log.Warn("retrieval", "fragments dropped by scope re-check", map[string]interface{}{
			"dropped": dropped,
		})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		return kept[i].Source == SourceStructured && kept[j].Source != SourceStructured
	})

	grounding.Fragments = truncateToBudget(kept, o.charBudget)
	return grounding, cls
}

// truncateToBudget keeps whole fragments in ranked order until the character
// budget runs out. At least one fragment survives even when it alone exceeds
// the budget.
func truncateToBudget(fragments []Fragment, budget int) []Fragment {
	var used int
	for i, frag := range fragments {
		used += len(frag.Text)
		if used > budget && i > 0 {
			return fragments[:i]
		}
	}
	return fragments
}

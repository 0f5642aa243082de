package retrieval

import (
	"fmt"
	"strings"
)

// Provenance identifiers, carried on every fragment for error attribution.
const (
	SourceStructured = "structured"
	SourceDocuments  = "documents"
)

// Fragment is one piece of grounding evidence: a structured row rendered as
// text, or a ranked document passage. The visibility coordinates travel with
// it so the scope predicate can be re-applied after retrieval.
type Fragment struct {
	Text         string
	Score        float64
	Source       string
	SourceID     string
	AccountID    string
	LocationID   string
	EmployeeCode string
	DataType     string
}

// SourceResult is the outcome of one retrieval path.
type SourceResult struct {
	Source    string
	Fragments []Fragment
	Err       error
}

// GroundingContext is the merged, scope-filtered, budget-capped evidence set
// handed to prompt composition.
type GroundingContext struct {
	Fragments      []Fragment
	Classification Kind
	Retrieved      int // fragment count before the scope post-filter
	Kept           int
	// One reason per failed source. A single entry is a partial failure,
	// entries for every consulted source mean total failure.
	FailureReasons []string
	consulted      int
}

func (g *GroundingContext) Empty() bool {
	return len(g.Fragments) == 0
}

// MarkConsulted records how many sources were asked, the denominator for
// the total-failure check.
func (g *GroundingContext) MarkConsulted(n int) {
	g.consulted = n
}

// TotalFailure reports whether every consulted source failed.
func (g *GroundingContext) TotalFailure() bool {
	return g.consulted > 0 && len(g.FailureReasons) == g.consulted
}

// PartialFailure returns the attached failure reason when exactly one of
// several consulted sources failed.
func (g *GroundingContext) PartialFailure() string {
	if len(g.FailureReasons) > 0 && !g.TotalFailure() {
		return strings.Join(g.FailureReasons, "; ")
	}
	return ""
}

// Render flattens the context into the evidence block for the prompt.
func (g *GroundingContext) Render() string {
	var b strings.Builder
	for i, frag := range g.Fragments {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "--- Document %d ---\n%s", i+1, frag.Text)
	}
	return b.String()
}

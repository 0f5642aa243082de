package retrieval

import (
	"regexp"
	"strings"
	"time"
)

// Kind is the advisory routing decision for a query.
type Kind string

const (
	KindStructured   Kind = "structured"
	KindUnstructured Kind = "unstructured"
	KindAmbiguous    Kind = "ambiguous"
)

// Intent keys the structured gateway's query templates.
type Intent string

const (
	IntentNone             Intent = ""
	IntentShiftsOnDate     Intent = "employee_shifts"
	IntentEmployeeByCode   Intent = "employee_by_id"
	IntentShiftsByPosition Intent = "employees_by_position"
	IntentLaborCost        Intent = "labor_cost"
	IntentSalesTotal       Intent = "sales_total"
)

// StructuredQuery carries the parameters extracted for a structured intent.
type StructuredQuery struct {
	Intent       Intent
	Date         time.Time
	From         time.Time
	To           time.Time
	EmployeeCode string
	Position     string
	LocationID   string
}

type Classification struct {
	Kind       Kind
	Structured StructuredQuery
}

// Classifier is a pure, swappable strategy. Classification is advisory: the
// orchestrator may still consult both sources.
type Classifier interface {
	Classify(query string) Classification
}

// KeywordClassifier routes on lightweight lexical heuristics: intent phrases,
// date patterns and aggregate verbs point at the structured store,
// descriptive verbs at the document index.
type KeywordClassifier struct {
	// Now is injectable for deterministic tests; defaults to time.Now.
	Now func() time.Time
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{Now: time.Now}
}

var intentPhrases = []struct {
	phrase string
	intent Intent
}{
	{"who is working", IntentShiftsOnDate},
	{"who worked", IntentShiftsOnDate},
	{"employees working", IntentShiftsOnDate},
	{"my hours", IntentShiftsOnDate},
	{"scheduled hours", IntentShiftsOnDate},
	{"attended hours", IntentShiftsOnDate},
	{"labor cost", IntentLaborCost},
	{"labour cost", IntentLaborCost},
	{"employee id", IntentEmployeeByCode},
	{"position", IntentShiftsByPosition},
	{"total sales", IntentSalesTotal},
	{"sales total", IntentSalesTotal},
	{"revenue", IntentSalesTotal},
}

var aggregateVerbs = []string{"total", "sum", "average", "how many", "count"}

var descriptiveVerbs = []string{
	"describe", "explain", "summarize", "summarise", "why",
	"policy", "review", "feedback", "handbook", "guideline",
}

var (
	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	slashDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	monthDayRe  = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2}),?\s+(\d{4})\b`)
	monthYearRe = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{4})\b`)
	employeeRe  = regexp.MustCompile(`\bemployee\s+([a-z0-9_-]+)\b`)
	positionRe  = regexp.MustCompile(`\bposition\s+([a-z0-9_-]+)\b`)
	locationRe  = regexp.MustCompile(`\b(?:location|store)\s+([a-z0-9_-]+)\b`)
	locTokenRe  = regexp.MustCompile(`\b(loc[a-z0-9_-]*\d[a-z0-9_-]*)\b`)
)

var months = map[string]time.Month{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
}

func (c *KeywordClassifier) Classify(query string) Classification {
	q := strings.ToLower(query)

	sq := StructuredQuery{}
	for _, p := range intentPhrases {
		if strings.Contains(q, p.phrase) {
			sq.Intent = p.intent
			break
		}
	}

	date, from, to, hasDate := extractDates(q, c.now())
	sq.Date = date
	sq.From = from
	sq.To = to

	if m := employeeRe.FindStringSubmatch(q); m != nil {
		sq.EmployeeCode = m[1]
		if sq.Intent == IntentNone {
			sq.Intent = IntentEmployeeByCode
		}
	}
	if m := positionRe.FindStringSubmatch(q); m != nil {
		sq.Position = m[1]
	}
	if m := locationRe.FindStringSubmatch(q); m != nil {
		sq.LocationID = m[1]
	} else if m := locTokenRe.FindStringSubmatch(q); m != nil {
		sq.LocationID = m[1]
	}

	hasAggregate := containsAny(q, aggregateVerbs)
	hasDescriptive := containsAny(q, descriptiveVerbs)

	kind := KindUnstructured
	switch {
	case sq.Intent != IntentNone && !hasDescriptive:
		kind = KindStructured
	case sq.Intent != IntentNone && hasDescriptive:
		kind = KindAmbiguous
	case hasDescriptive:
		kind = KindUnstructured
	case hasAggregate || hasDate:
		// Structured signal without a known template.
		kind = KindAmbiguous
		if sq.Intent == IntentNone {
			sq.Intent = IntentShiftsOnDate
		}
	}

	return Classification{Kind: kind, Structured: sq}
}

func (c *KeywordClassifier) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func containsAny(q string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(q, n) {
			return true
		}
	}
	return false
}

// extractDates pulls a single day or a month range from the query. Falls back
// to today so date-less shift questions still hit the structured store.
func extractDates(q string, now time.Time) (date, from, to time.Time, found bool) {
	if m := isoDateRe.FindStringSubmatch(q); m != nil {
		if d, err := time.Parse("2006-01-02", m[0]); err == nil {
			return d, d, d, true
		}
	}
	if m := slashDateRe.FindStringSubmatch(q); m != nil {
		if d, err := time.Parse("1/2/2006", m[0]); err == nil {
			return d, d, d, true
		}
	}
	if m := monthDayRe.FindStringSubmatch(q); m != nil {
		d := time.Date(atoi(m[3]), months[m[1]], atoi(m[2]), 0, 0, 0, 0, time.UTC)
		return d, d, d, true
	}
	if m := monthYearRe.FindStringSubmatch(q); m != nil {
		start := time.Date(atoi(m[2]), months[m[1]], 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, -1)
		return start, start, end, true
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today, today, today, false
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

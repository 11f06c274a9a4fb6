package harness

import (
	"fmt"
	"strconv"
	"strings"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int64    `json:"seq"`
	Action  string   `json:"action"`
	Args    string   `json:"args,omitempty"`
	Outcome string   `json:"outcome"`
	Mode    string   `json:"mode"`
	Rows    []string `json:"rows"`
}

// Outcomes other than "error:<kind>".
const (
	OutcomeOK       = "ok"
	OutcomeDeclined = "declined"
)

// String renders the event as one golden-file line.
func (e TraceEvent) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s", e.Seq, e.Action)
	if e.Args != "" {
		b.WriteString(" " + e.Args)
	}
	fmt.Fprintf(&b, " => %s mode=%s rows=[%s]", e.Outcome, e.Mode, quoteAll(e.Rows))
	return b.String()
}

func quoteAll(ss []string) string {
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = strconv.Quote(s)
	}
	return strings.Join(q, ",")
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	Trace []TraceEvent `json:"trace"`

	Errors []string `json:"errors,omitempty"`

	// FinalRows are the names in the store after the flow, in insertion order.
	FinalRows []string `json:"final_rows"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Trace:     []TraceEvent{},
		Errors:    []string{},
		FinalRows: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// TraceText renders the trace in golden-file form.
func (r *Result) TraceText(scenarioName string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", scenarioName)
	for _, e := range r.Trace {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "final: [%s]\n", quoteAll(r.FinalRows))
	return []byte(b.String())
}

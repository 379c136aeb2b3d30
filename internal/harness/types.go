package harness

// TraceEvent records one executed step. Symbol names (s1, s2, ...) stand in
// for addresses so that traces are reproducible.
type TraceEvent struct {
	Seq      int64  `json:"seq"`
	Op       string `json:"op"`
	Subject  string `json:"subject"`
	Symbol   string `json:"symbol,omitempty"`
	Found    *bool  `json:"found,omitempty"`
	Sites    int    `json:"sites,omitempty"`
	Inserted int    `json:"inserted,omitempty"`
}

// Result contains the outcome of a scenario run.
type Result struct {
	Pass   bool
	Trace  []TraceEvent
	Texts  []string
	Errors []string
}

// NewResult creates a passing Result.
func NewResult() *Result {
	return &Result{Pass: true}
}

// AddError records a failure and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Pass = false
	r.Errors = append(r.Errors, msg)
}

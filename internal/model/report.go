package model

// CheckOutcome is the result of one check against one route.
type CheckOutcome struct {
	Route   string `json:"route"`
	Check   string `json:"check"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// RunReport is the summary of a complete crawl.
type RunReport struct {
	RunID    string         `json:"run_id"`
	Source   string         `json:"source"`
	Pages    int            `json:"pages"`
	Skipped  int            `json:"skipped"`
	Passed   int            `json:"passed"`
	Failed   int            `json:"failed"`
	NotFound []string       `json:"not_found"`
	Outcomes []CheckOutcome `json:"outcomes,omitempty"`
}

// OK reports whether the run had no failed checks and no not-found routes.
func (r RunReport) OK() bool {
	return r.Failed == 0 && len(r.NotFound) == 0
}

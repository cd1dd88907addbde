package seo

import (
	"slices"

	"github.com/Bahjat/seoverify/internal/model"
)

// Summary accumulates the results of one run. It has a single writer, the
// Reporter of that run, and is not safe for concurrent use. Counters only
// ever grow.
type Summary struct {
	passed   int
	failed   int
	pages    int
	skipped  int
	notFound []string
	seen     map[string]struct{}
	outcomes []model.CheckOutcome
}

// NewSummary returns an empty Summary.
func NewSummary() *Summary {
	return &Summary{seen: make(map[string]struct{})}
}

func (s *Summary) recordOutcome(route, check string, passed bool, message string) {
	if passed {
		s.passed++
	} else {
		s.failed++
	}
	s.outcomes = append(s.outcomes, model.CheckOutcome{
		Route:   route,
		Check:   check,
		Passed:  passed,
		Message: message,
	})
}

// recordNotFound adds url to the not-found list once. It returns false when
// url was already recorded.
func (s *Summary) recordNotFound(url string) bool {
	if _, dup := s.seen[url]; dup {
		return false
	}
	s.seen[url] = struct{}{}
	s.notFound = append(s.notFound, url)
	return true
}

func (s *Summary) Passed() int  { return s.passed }
func (s *Summary) Failed() int  { return s.failed }
func (s *Summary) Pages() int   { return s.pages }
func (s *Summary) Skipped() int { return s.skipped }

// NotFound returns the URLs that answered 404, in the order first seen.
func (s *Summary) NotFound() []string {
	return slices.Clone(s.notFound)
}

// Outcomes returns every recorded check outcome in run order.
func (s *Summary) Outcomes() []model.CheckOutcome {
	return slices.Clone(s.outcomes)
}

// ExitCode is 1 when any check failed or any route was not found, else 0.
func (s *Summary) ExitCode() int {
	if s.failed > 0 || len(s.notFound) > 0 {
		return 1
	}
	return 0
}

// Report snapshots the summary.
func (s *Summary) Report(runID, source string) model.RunReport {
	notFound := s.NotFound()
	if notFound == nil {
		notFound = []string{}
	}
	return model.RunReport{
		RunID:    runID,
		Source:   source,
		Pages:    s.pages,
		Skipped:  s.skipped,
		Passed:   s.passed,
		Failed:   s.failed,
		NotFound: notFound,
		Outcomes: s.Outcomes(),
	}
}

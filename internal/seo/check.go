package seo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Bahjat/seoverify/internal/platform/errs"
)

// Result is the outcome of one check against one page.
type Result struct {
	Passed  bool
	Message string
}

// Check is a single pass/fail predicate over a parsed page. Checks are
// stateless and independent, so any subset may run in any order.
type Check interface {
	Name() string
	Run(doc *Document) (Result, error)
}

var (
	errNilDocument  = errors.New("document is nil")
	errUnknownCheck = errors.New("unknown check")
)

// DefaultChecks returns every built-in check.
func DefaultChecks() []Check {
	return []Check{CanonicalCheck{}, SingleHeadingCheck{}}
}

// LookupChecks returns the checks with the given names in the given order.
// An empty list selects DefaultChecks.
func LookupChecks(names []string) ([]Check, error) {
	if len(names) == 0 {
		return DefaultChecks(), nil
	}

	byName := make(map[string]Check)
	var known []string
	for _, c := range DefaultChecks() {
		byName[c.Name()] = c
		known = append(known, c.Name())
	}

	checks := make([]Check, 0, len(names))
	seen := make(map[string]bool)
	for _, name := range names {
		c, ok := byName[name]
		if !ok {
			return nil, &errs.AppError{
				Kind:    errs.InvalidInput,
				Message: fmt.Sprintf("check %q is not one of %s", name, strings.Join(known, ", ")),
				Cause:   errUnknownCheck,
			}
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		checks = append(checks, c)
	}
	return checks, nil
}

// runCheck evaluates c and turns a nil document, a returned error or a panic
// into a CheckFailed error so a bad page never takes the crawl down.
func runCheck(c Check, doc *Document) (res Result, err error) {
	if doc == nil {
		return Result{}, checkError(c, errNilDocument)
	}

	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = checkError(c, fmt.Errorf("panic: %v", r))
		}
	}()

	res, err = c.Run(doc)
	if err != nil {
		if errs.Is(err, errs.CheckFailed) {
			return Result{}, err
		}
		return Result{}, checkError(c, err)
	}
	return res, nil
}

func checkError(c Check, cause error) error {
	return &errs.AppError{
		Kind:    errs.CheckFailed,
		Message: fmt.Sprintf("error occurred while running check %s", c.Name()),
		Cause:   cause,
	}
}

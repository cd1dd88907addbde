package seo

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Reporter prints human-readable progress for a run and records every
// result into its Summary. It is meant for strictly sequential use.
type Reporter struct {
	w       io.Writer
	summary *Summary
	green   *color.Color
	red     *color.Color
}

// NewReporter returns a Reporter writing to w. Color is used only when w is
// a terminal, NO_COLOR is unset and noColor is false.
func NewReporter(w io.Writer, summary *Summary, noColor bool) *Reporter {
	if w == nil {
		w = io.Discard
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	if !noColor && isTerminal(w) {
		green.EnableColor()
		red.EnableColor()
	} else {
		green.DisableColor()
		red.DisableColor()
	}

	return &Reporter{w: w, summary: summary, green: green, red: red}
}

// isTerminal reports whether w is stdout or stderr attached to a TTY.
// color.NoColor already accounts for NO_COLOR and non-TTY stdout.
func isTerminal(w io.Writer) bool {
	return (w == os.Stdout || w == os.Stderr) && !color.NoColor
}

// Summary returns the accumulator this Reporter writes to.
func (r *Reporter) Summary() *Summary {
	return r.summary
}

// Banner prints the start-of-run lines.
func (r *Reporter) Banner(dir string) {
	fmt.Fprintln(r.w, "\n⏳ Testing the built files for SEO issues...")
	fmt.Fprintf(r.w, "\n📁 %s\n", dir)
}

// Page prints the header for a route about to be checked.
func (r *Reporter) Page(route string) {
	r.summary.pages++
	fmt.Fprintf(r.w, "\n\t📄 %s\n", route)
}

// Skip counts a blacklisted page. Nothing is printed for it.
func (r *Reporter) Skip() {
	r.summary.skipped++
}

// Success records and prints a passed check.
func (r *Reporter) Success(route, check, msg string) {
	r.summary.recordOutcome(route, check, true, msg)
	r.green.Fprintf(r.w, "\t\t✓ %s\n", msg)
}

// Failure records and prints a failed check.
func (r *Reporter) Failure(route, check, msg string) {
	r.summary.recordOutcome(route, check, false, msg)
	r.red.Fprintf(r.w, "\t\t✗ %s\n", msg)
}

// NotFound records and prints a route whose server answered 404.
func (r *Reporter) NotFound(url string) {
	if r.summary.recordNotFound(url) {
		r.red.Fprintf(r.w, "\t\t✗ not found: %s\n", url)
	}
}

// Summarize prints the totals and the not-found list.
func (r *Reporter) Summarize() {
	s := r.summary

	fmt.Fprintln(r.w)
	r.green.Fprintf(r.w, "Total %d test(s) passed.\n", s.passed)

	if s.failed > 0 {
		r.red.Fprintf(r.w, "Total %d test(s) failed.\n", s.failed)
	} else {
		fmt.Fprintf(r.w, "Total %d test(s) failed.\n", s.failed)
	}

	if len(s.notFound) > 0 {
		r.red.Fprintf(r.w, "Total %d route(s) not found:\n", len(s.notFound))
		for _, url := range s.notFound {
			fmt.Fprintf(r.w, "\t%s\n", url)
		}
	}
}

// Done prints the closing line.
func (r *Reporter) Done() {
	fmt.Fprintln(r.w, "\n👋 All tests completed.")
	fmt.Fprintln(r.w)
}

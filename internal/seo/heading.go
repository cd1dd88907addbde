package seo

// HeadingState classifies the number of top-level headings on a page.
type HeadingState int

const (
	HeadingMissing HeadingState = iota
	HeadingSingle
	HeadingDuplicate
)

// ClassifyHeadings maps an <h1> count to its HeadingState.
func ClassifyHeadings(count int) HeadingState {
	switch {
	case count == 1:
		return HeadingSingle
	case count > 1:
		return HeadingDuplicate
	default:
		return HeadingMissing
	}
}

// SingleHeadingCheck passes when the page has exactly one <h1>.
type SingleHeadingCheck struct{}

func (SingleHeadingCheck) Name() string { return "single-h1" }

func (SingleHeadingCheck) Run(doc *Document) (Result, error) {
	switch ClassifyHeadings(doc.Count("h1")) {
	case HeadingSingle:
		return Result{Passed: true, Message: "Exactly 1 h1 tag present."}, nil
	case HeadingDuplicate:
		return Result{Passed: false, Message: "More than 1 h1 tags present."}, nil
	default:
		return Result{Passed: false, Message: "No h1 tag present."}, nil
	}
}

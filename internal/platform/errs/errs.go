package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes crawl errors so callers can decide whether a page failure
// is soft, counted, or fatal for the run.
type Kind int

const (
	// Unknown represents an unclassified error.
	Unknown Kind = iota
	// InvalidInput indicates bad configuration or a page the source cannot serve.
	InvalidInput
	// FetchFailed indicates the page content could not be obtained.
	FetchFailed
	// NotFound indicates the server answered 404. It is tallied, never fatal.
	NotFound
	// ParsingFailed indicates the content could not be parsed as HTML.
	ParsingFailed
	// CheckFailed indicates a check could not evaluate its document.
	CheckFailed
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case FetchFailed:
		return "fetch_failed"
	case NotFound:
		return "not_found"
	case ParsingFailed:
		return "parsing_failed"
	case CheckFailed:
		return "check_failed"
	default:
		return "unknown"
	}
}

// AppError carries a category, user message, and original cause.
type AppError struct {
	Kind    Kind
	Status  int    // HTTP status code returned by the target server, if any
	URL     string // page URL or file the error refers to
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether err is an *AppError of the given kind.
func Is(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

// As unwraps err to an *AppError.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

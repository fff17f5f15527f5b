package loading

import (
	"fmt"

	"github.com/duyamin/aria-ng/internal/validation"
)

// DocumentNotFoundError means the loader could not locate the document in
// any of its sources.
type DocumentNotFoundError struct {
	Location string
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document not found: %s", e.Location)
}

func (e *DocumentNotFoundError) Issue() validation.Issue {
	return validation.Issue{
		Level:    validation.Platform,
		Message:  e.Error(),
		Location: e.Location,
	}
}

// LoaderError wraps an I/O failure while opening or reading a document.
type LoaderError struct {
	Location string
	Err      error
}

func (e *LoaderError) Error() string {
	return fmt.Sprintf("loader: %s: %v", e.Location, e.Err)
}

func (e *LoaderError) Unwrap() error { return e.Err }

func (e *LoaderError) Issue() validation.Issue {
	return validation.Issue{
		Level:    validation.Platform,
		Message:  e.Error(),
		Location: e.Location,
		Cause:    e.Err,
	}
}

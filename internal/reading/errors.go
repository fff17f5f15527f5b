package reading

import (
	"fmt"

	"github.com/duyamin/aria-ng/internal/validation"
)

// SyntaxError reports a malformed document at a precise position.
type SyntaxError struct {
	Message  string
	Location string
	Line     int
	Column   int
	Snippet  string
	Cause    error
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s:%d:%d", e.Message, e.Location, e.Line, e.Column)
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Location)
}

func (e *SyntaxError) Unwrap() error { return e.Cause }

func (e *SyntaxError) Issue() validation.Issue {
	return validation.Issue{
		Level:    validation.Syntax,
		Message:  e.Message,
		Location: e.Location,
		Line:     e.Line,
		Column:   e.Column,
		Snippet:  e.Snippet,
		Cause:    e.Cause,
	}
}

package validation

import "fmt"

// InvalidValueError reports a value that cannot be coerced to its declared
// type or fails a constraint.
type InvalidValueError struct {
	Name     string
	Value    any
	Reason   string
	Location string
	Line     int
	Column   int
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for %q: %v (%s)", e.Name, e.Value, e.Reason)
}

func (e *InvalidValueError) Issue() Issue {
	return Issue{
		Level:    Field,
		Message:  e.Error(),
		Location: e.Location,
		Line:     e.Line,
		Column:   e.Column,
	}
}

// UnimplementedError reports an abstract contract that was invoked without
// an implementation.
type UnimplementedError struct {
	What string
}

func (e *UnimplementedError) Error() string {
	return fmt.Sprintf("unimplemented: %s", e.What)
}

func (e *UnimplementedError) Issue() Issue {
	return Issue{Level: Platform, Message: e.Error()}
}

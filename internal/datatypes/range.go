package datatypes

import (
	"fmt"

	"github.com/duyamin/aria-ng/internal/reading"
)

// UnboundedMarker is the literal accepted as a range's open upper bound.
const UnboundedMarker = "UNBOUNDED"

// Range is a TOSCA integer range [lower, upper]. Unbounded upper bounds
// set Unbounded.
type Range struct {
	Lower     int
	Upper     int
	Unbounded bool
}

// ParseRange parses a two-element sequence as a range. The lower bound
// must be below the upper bound unless the upper bound is UNBOUNDED.
func ParseRange(value any) (*Range, error) {
	l := reading.AsList(value)
	if len(l) != 2 {
		return nil, fmt.Errorf("range must have exactly two elements: %v", value)
	}
	r := &Range{}
	lower, err := Coerce(TypeInteger, l[0])
	if err != nil {
		return nil, fmt.Errorf("range lower bound: %w", err)
	}
	r.Lower = lower.(int)
	if s, ok := l[1].(string); ok && s == UnboundedMarker {
		r.Unbounded = true
		return r, nil
	}
	upper, err := Coerce(TypeInteger, l[1])
	if err != nil {
		return nil, fmt.Errorf("range upper bound: %w", err)
	}
	r.Upper = upper.(int)
	if r.Lower >= r.Upper {
		return nil, fmt.Errorf("range lower bound %d must be below upper bound %d", r.Lower, r.Upper)
	}
	return r, nil
}

// Contains reports whether n falls inside the range.
func (r *Range) Contains(n int) bool {
	if n < r.Lower {
		return false
	}
	return r.Unbounded || n <= r.Upper
}

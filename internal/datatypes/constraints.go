package datatypes

import (
	"fmt"
	"regexp"

	"github.com/duyamin/aria-ng/internal/reading"
)

// ConstraintOperator names a constraint clause.
type ConstraintOperator string

const (
	ConstraintEqual          ConstraintOperator = "equal"
	ConstraintGreaterThan    ConstraintOperator = "greater_than"
	ConstraintGreaterOrEqual ConstraintOperator = "greater_or_equal"
	ConstraintLessThan       ConstraintOperator = "less_than"
	ConstraintLessOrEqual    ConstraintOperator = "less_or_equal"
	ConstraintInRange        ConstraintOperator = "in_range"
	ConstraintValidValues    ConstraintOperator = "valid_values"
	ConstraintLength         ConstraintOperator = "length"
	ConstraintMinLength      ConstraintOperator = "min_length"
	ConstraintMaxLength      ConstraintOperator = "max_length"
	ConstraintPattern        ConstraintOperator = "pattern"
)

// KnownConstraint reports whether op names a supported clause.
func KnownConstraint(op string) bool {
	switch ConstraintOperator(op) {
	case ConstraintEqual, ConstraintGreaterThan, ConstraintGreaterOrEqual,
		ConstraintLessThan, ConstraintLessOrEqual, ConstraintInRange,
		ConstraintValidValues, ConstraintLength, ConstraintMinLength,
		ConstraintMaxLength, ConstraintPattern:
		return true
	}
	return false
}

// Constraint is one clause bound to the container's type. Arguments are
// coerced to that type before comparison.
type Constraint struct {
	Operator ConstraintOperator
	Argument any
	// TypeName is the primitive type of the constrained property.
	TypeName string
}

// Check validates that the argument shape of the constraint is legal:
// in_range needs exactly two ordered elements (upper may be UNBOUNDED),
// pattern must compile as a regular expression.
func (c *Constraint) Check() error {
	switch c.Operator {
	case ConstraintInRange:
		if _, err := ParseRange(c.Argument); err != nil {
			return err
		}
	case ConstraintPattern:
		s, ok := c.Argument.(string)
		if !ok {
			return fmt.Errorf("pattern constraint argument must be a string")
		}
		if _, err := regexp.Compile(s); err != nil {
			return fmt.Errorf("pattern constraint does not compile: %w", err)
		}
	case ConstraintValidValues:
		if reading.AsList(c.Argument) == nil {
			return fmt.Errorf("valid_values constraint argument must be a sequence")
		}
	case ConstraintLength, ConstraintMinLength, ConstraintMaxLength:
		if _, err := Coerce(TypeInteger, c.Argument); err != nil {
			return fmt.Errorf("%s constraint argument must be an integer", c.Operator)
		}
	}
	return nil
}

// Apply evaluates the constraint against a coerced value.
func (c *Constraint) Apply(value any) error {
	switch c.Operator {
	case ConstraintEqual:
		arg, err := c.coerceArg(c.Argument)
		if err != nil {
			return err
		}
		if !Equal(value, arg) {
			return fmt.Errorf("value %v is not equal to %v", value, arg)
		}
	case ConstraintGreaterThan:
		return c.compare(value, func(n int) bool { return n > 0 }, "greater than")
	case ConstraintGreaterOrEqual:
		return c.compare(value, func(n int) bool { return n >= 0 }, "greater than or equal to")
	case ConstraintLessThan:
		return c.compare(value, func(n int) bool { return n < 0 }, "less than")
	case ConstraintLessOrEqual:
		return c.compare(value, func(n int) bool { return n <= 0 }, "less than or equal to")
	case ConstraintInRange:
		r, err := ParseRange(c.Argument)
		if err != nil {
			return err
		}
		n, err := Coerce(TypeInteger, value)
		if err != nil {
			return err
		}
		if !r.Contains(n.(int)) {
			return fmt.Errorf("value %v is out of range [%d, %v]", value, r.Lower, upperLabel(r))
		}
	case ConstraintValidValues:
		for _, candidate := range reading.AsList(c.Argument) {
			arg, err := c.coerceArg(candidate)
			if err != nil {
				continue
			}
			if Equal(value, arg) {
				return nil
			}
		}
		return fmt.Errorf("value %v is not one of the valid values", value)
	case ConstraintLength:
		return c.lengthCheck(value, func(l, n int) bool { return l == n }, "exactly")
	case ConstraintMinLength:
		return c.lengthCheck(value, func(l, n int) bool { return l >= n }, "at least")
	case ConstraintMaxLength:
		return c.lengthCheck(value, func(l, n int) bool { return l <= n }, "at most")
	case ConstraintPattern:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("pattern constraint applies to strings, got %v", value)
		}
		re, err := regexp.Compile(c.Argument.(string))
		if err != nil {
			return err
		}
		if !re.MatchString(s) {
			return fmt.Errorf("value %q does not match pattern %q", s, c.Argument)
		}
	default:
		return fmt.Errorf("unknown constraint %q", c.Operator)
	}
	return nil
}

// coerceArg coerces a constraint argument to the container's type.
func (c *Constraint) coerceArg(arg any) (any, error) {
	if c.TypeName == "" || !IsPrimitive(c.TypeName) {
		return arg, nil
	}
	return Coerce(c.TypeName, arg)
}

func (c *Constraint) compare(value any, accept func(int) bool, label string) error {
	arg, err := c.coerceArg(c.Argument)
	if err != nil {
		return err
	}
	n, err := Compare(value, arg)
	if err != nil {
		return err
	}
	if !accept(n) {
		return fmt.Errorf("value %v is not %s %v", value, label, arg)
	}
	return nil
}

func (c *Constraint) lengthCheck(value any, accept func(l, n int) bool, label string) error {
	l, err := Length(value)
	if err != nil {
		return err
	}
	arg, err := Coerce(TypeInteger, c.Argument)
	if err != nil {
		return err
	}
	if !accept(l, arg.(int)) {
		return fmt.Errorf("length %d is not %s %d", l, label, arg)
	}
	return nil
}

func upperLabel(r *Range) any {
	if r.Unbounded {
		return UnboundedMarker
	}
	return r.Upper
}

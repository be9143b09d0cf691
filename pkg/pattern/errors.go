package pattern

import (
	"fmt"
	"strings"

	"github.com/vango-dev/fragment/internal/errors"
)

// PatternError reports a route pattern that does not compile.
type PatternError struct {
	// Pattern is the route pattern as registered.
	Pattern string

	// Expr is the expression the pattern was rewritten into.
	Expr string

	// Err is an E100 *errors.FragmentError wrapping the expression error.
	Err error
}

func newPatternError(raw, expr string, cause error) *PatternError {
	fe := errors.New("E100").Wrap(cause)
	if off := unbalancedOffset(raw); off >= 0 {
		fe = fe.WithLocation(raw, off).
			WithSuggestion("Check that every '(' in the pattern has a matching ')'")
	}
	return &PatternError{Pattern: raw, Expr: expr, Err: fe}
}

func newReservedGroupError(raw, expr, name string) *PatternError {
	fe := errors.New("E100").
		Wrap(fmt.Errorf("group name %q is reserved", name)).
		WithSuggestion("Rename the group or use an unnamed group")
	if off := strings.Index(raw, "(?P<"+name+">"); off >= 0 {
		fe = fe.WithLocation(raw, off)
	}
	return &PatternError{Pattern: raw, Expr: expr, Err: fe}
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid route pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// unbalancedOffset returns the offset of the first stray ")" or the last
// unclosed "(" in raw, or -1 if parentheses balance.
func unbalancedOffset(raw string) int {
	var open []int
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			i++
		case '(':
			open = append(open, i)
		case ')':
			if len(open) == 0 {
				return i
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) > 0 {
		return open[len(open)-1]
	}
	return -1
}

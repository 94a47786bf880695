package rules

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRule marks a rule that cannot be loaded.
	ErrInvalidRule = errors.New("invalid rule definition")
	// ErrMissingPredicate marks a rule without any condition to test.
	ErrMissingPredicate = fmt.Errorf("%w: missing predicate", ErrInvalidRule)
	// ErrDuplicateRule marks two payee rules with identical conditions.
	ErrDuplicateRule = fmt.Errorf("%w: duplicate rule", ErrInvalidRule)
	// ErrRegexCompile marks a Pattern or OrigPayee that is not a valid regular expression.
	ErrRegexCompile = errors.New("invalid regular expression")
)

// RuleError locates a load failure within the rules document.
type RuleError struct {
	Section Section
	Target  string
	Index   int // position within the target's rule list, 0-based; -1 for the target itself
	Line    int // line in the rules file, 0 when unknown
	Err     error
}

func (e *RuleError) Error() string {
	where := fmt.Sprintf("%s %q", e.Section.singular(), e.Target)
	if e.Index >= 0 {
		where += fmt.Sprintf(" rule %d", e.Index+1)
	}
	if e.Line > 0 {
		where += fmt.Sprintf(" (line %d)", e.Line)
	}
	return where + ": " + e.Err.Error()
}

func (e *RuleError) Unwrap() error { return e.Err }

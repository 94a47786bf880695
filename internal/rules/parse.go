package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Keys accepted in a structured rule.
const (
	keyPattern        = "Pattern"
	keyOrigPayee      = "OrigPayee"
	keyPayee          = "Payee"
	keyCategory       = "Category"
	keyAmount         = "Amount"
	keyMinAmount      = "MinAmount"
	keyMaxAmount      = "MaxAmount"
	keyIncomeOK       = "IncomeOK"
	keyMinDateInMonth = "MinDateInMonth"
	keyMaxDateInMonth = "MaxDateInMonth"
	keyMinDateInYear  = "MinDateInYear"
	keyMaxDateInYear  = "MaxDateInYear"
)

var commonKeys = []string{
	keyAmount, keyMinAmount, keyMaxAmount,
	keyMinDateInMonth, keyMaxDateInMonth, keyMinDateInYear, keyMaxDateInYear,
}

var allowedKeys = map[Section]map[string]bool{
	SectionPayees:     keySet(append([]string{keyPattern}, commonKeys...)...),
	SectionCategories: keySet(append([]string{keyOrigPayee, keyPayee, keyCategory, keyIncomeOK}, commonKeys...)...),
	SectionMemos:      keySet(append([]string{keyOrigPayee, keyPayee, keyCategory, keyIncomeOK}, commonKeys...)...),
}

func keySet(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// ruleSpec is a rule as written in the rules file: either a bare string or
// a mapping of conditions. normalize validates it into a Rule.
type ruleSpec interface {
	normalize(section Section) (Rule, error)
	line() int
}

// shorthandRule is the bare-string form, `Apple: APPLE`.
type shorthandRule struct {
	pattern string
	at      int
}

func (s shorthandRule) line() int { return s.at }

func (s shorthandRule) normalize(section Section) (Rule, error) {
	if section != SectionPayees {
		return Rule{}, fmt.Errorf("%w: bare string %q is only allowed under payees, write a mapping such as {Payee: %q}",
			ErrMissingPredicate, s.pattern, s.pattern)
	}
	re, err := compile(s.pattern)
	if err != nil {
		return Rule{}, err
	}
	return Rule{PayeePattern: re, IncomeOK: true}, nil
}

// structuredRule is the mapping form, `{Pattern: HARDWARE, MaxAmount: 20.00}`.
type structuredRule struct {
	node *yaml.Node
}

func (s structuredRule) line() int { return s.node.Line }

func (s structuredRule) normalize(section Section) (Rule, error) {
	r := Rule{IncomeOK: true}
	seen := make(map[string]bool)

	for i := 0; i+1 < len(s.node.Content); i += 2 {
		key, val := s.node.Content[i].Value, resolve(s.node.Content[i+1])
		if seen[key] {
			return Rule{}, fmt.Errorf("%w: %s given more than once", ErrInvalidRule, key)
		}
		seen[key] = true
		if !allowedKeys[section][key] {
			return Rule{}, fmt.Errorf("%w: %s is not allowed under %s", ErrInvalidRule, key, section)
		}

		var err error
		switch key {
		case keyPattern:
			r.PayeePattern, err = regexValue(val)
		case keyOrigPayee:
			r.OrigPayeePattern, err = regexValue(val)
		case keyPayee:
			r.Payee, err = stringValue(val)
		case keyCategory:
			r.Category, err = stringValue(val)
		case keyAmount:
			r.Amount, err = amountValue(val)
		case keyMinAmount:
			r.MinAmount, err = amountValue(val)
		case keyMaxAmount:
			r.MaxAmount, err = amountValue(val)
		case keyIncomeOK:
			r.IncomeOK, err = boolValue(val)
		case keyMinDateInMonth:
			r.MinDayInMonth, err = dayValue(val)
		case keyMaxDateInMonth:
			r.MaxDayInMonth, err = dayValue(val)
		case keyMinDateInYear:
			r.MinDayInYear, err = yearDayValue(val)
		case keyMaxDateInYear:
			r.MaxDayInYear, err = yearDayValue(val)
		}
		if err != nil {
			return Rule{}, fmt.Errorf("%s: %w", key, err)
		}
	}

	if section == SectionPayees && r.PayeePattern == nil {
		return Rule{}, fmt.Errorf("%w: payee rules need a Pattern", ErrMissingPredicate)
	}
	if !r.hasPredicate() {
		return Rule{}, fmt.Errorf("%w: %s rules need at least one condition", ErrMissingPredicate, section.singular())
	}
	if r.MinAmount.Valid && r.MaxAmount.Valid && r.MinAmount.Decimal.GreaterThan(r.MaxAmount.Decimal) {
		return Rule{}, fmt.Errorf("%w: MinAmount %s is greater than MaxAmount %s",
			ErrInvalidRule, r.MinAmount.Decimal, r.MaxAmount.Decimal)
	}
	return r, nil
}

// parseSection turns one top-level section into a RuleSet, keeping the
// declaration order of targets and of rules under each target.
func parseSection(section Section, node *yaml.Node) (RuleSet, error) {
	rs := RuleSet{section: section}
	if node == nil || node.Kind == 0 {
		return rs, nil
	}
	node = resolve(node)
	if isNull(node) {
		return rs, nil
	}
	if node.Kind != yaml.MappingNode {
		return rs, fmt.Errorf("%s (line %d): %w: expected a mapping of %s to rules",
			section, node.Line, ErrInvalidRule, section.singular())
	}

	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		target := keyNode.Value
		if seen[target] {
			return rs, &RuleError{Section: section, Target: target, Index: -1, Line: keyNode.Line,
				Err: fmt.Errorf("%w: declared more than once", ErrInvalidRule)}
		}
		seen[target] = true

		specs, err := ruleSpecs(valNode)
		if err != nil {
			return rs, &RuleError{Section: section, Target: target, Index: -1, Line: keyNode.Line, Err: err}
		}

		e := entry{target: target, rules: make([]Rule, 0, len(specs))}
		for j, spec := range specs {
			r, err := spec.normalize(section)
			if err != nil {
				return rs, &RuleError{Section: section, Target: target, Index: j, Line: spec.line(), Err: err}
			}
			e.rules = append(e.rules, r)
		}
		rs.entries = append(rs.entries, e)
	}
	return rs, nil
}

// ruleSpecs accepts a single rule or a sequence of rules.
func ruleSpecs(node *yaml.Node) ([]ruleSpec, error) {
	node = resolve(node)
	if node.Kind != yaml.SequenceNode {
		spec, err := single(node)
		if err != nil {
			return nil, err
		}
		return []ruleSpec{spec}, nil
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("%w: empty rule list", ErrMissingPredicate)
	}
	specs := make([]ruleSpec, 0, len(node.Content))
	for _, item := range node.Content {
		spec, err := single(resolve(item))
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func single(node *yaml.Node) (ruleSpec, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if isNull(node) {
			return nil, fmt.Errorf("%w: no rule given", ErrMissingPredicate)
		}
		return shorthandRule{pattern: node.Value, at: node.Line}, nil
	case yaml.MappingNode:
		return structuredRule{node: node}, nil
	}
	return nil, fmt.Errorf("%w: line %d: a rule must be a string or a mapping", ErrInvalidRule, node.Line)
}

// resolve follows YAML aliases to the anchored node.
func resolve(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}

func compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrRegexCompile, pattern, err)
	}
	return re, nil
}

func scalar(node *yaml.Node) (string, error) {
	if node.Kind != yaml.ScalarNode || isNull(node) {
		return "", fmt.Errorf("%w: expected a value on line %d", ErrInvalidRule, node.Line)
	}
	return node.Value, nil
}

func stringValue(node *yaml.Node) (*string, error) {
	s, err := scalar(node)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, fmt.Errorf("%w: empty value on line %d never matches", ErrInvalidRule, node.Line)
	}
	return &s, nil
}

func regexValue(node *yaml.Node) (*regexp.Regexp, error) {
	s, err := scalar(node)
	if err != nil {
		return nil, err
	}
	return compile(s)
}

func amountValue(node *yaml.Node) (decimal.NullDecimal, error) {
	s, err := scalar(node)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %q is not a number", ErrInvalidRule, s)
	}
	if !d.IsPositive() {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %s must be positive", ErrInvalidRule, s)
	}
	return decimal.NewNullDecimal(d), nil
}

func boolValue(node *yaml.Node) (bool, error) {
	var b bool
	if node.Kind != yaml.ScalarNode || node.ShortTag() != "!!bool" {
		return false, fmt.Errorf("%w: expected true or false on line %d", ErrInvalidRule, node.Line)
	}
	if err := node.Decode(&b); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	return b, nil
}

func intValue(node *yaml.Node) (int, error) {
	s, err := scalar(node)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidRule, s)
	}
	return n, nil
}

func dayValue(node *yaml.Node) (int, error) {
	n, err := intValue(node)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > 31 {
		return 0, fmt.Errorf("%w: day %d is not in [1, 31]", ErrInvalidRule, n)
	}
	return n, nil
}

func yearDayValue(node *yaml.Node) (*YearDay, error) {
	if node.Kind != yaml.SequenceNode || len(node.Content) != 2 {
		return nil, fmt.Errorf("%w: expected [month, day] on line %d", ErrInvalidRule, node.Line)
	}
	month, err := intValue(resolve(node.Content[0]))
	if err != nil {
		return nil, err
	}
	day, err := intValue(resolve(node.Content[1]))
	if err != nil {
		return nil, err
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month %d is not in [1, 12]", ErrInvalidRule, month)
	}
	if day < 1 || day > 31 {
		return nil, fmt.Errorf("%w: day %d is not in [1, 31]", ErrInvalidRule, day)
	}
	return &YearDay{Month: time.Month(month), Day: day}, nil
}

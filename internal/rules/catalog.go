package rules

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/tidymoney/internal/config"
	"github.com/cleared-dev/tidymoney/internal/model"
)

// Section names one of the three rule sets.
type Section string

const (
	SectionPayees     Section = "payees"
	SectionCategories Section = "categories"
	SectionMemos      Section = "memos"
)

func (s Section) singular() string {
	switch s {
	case SectionPayees:
		return "payee"
	case SectionCategories:
		return "category"
	case SectionMemos:
		return "memo"
	}
	return string(s)
}

type entry struct {
	target string
	rules  []Rule
}

// RuleSet is an ordered mapping from target value to its ordered rules.
type RuleSet struct {
	section Section
	entries []entry
}

// Section returns which rule set this is.
func (rs *RuleSet) Section() Section { return rs.section }

// Len returns the number of target values.
func (rs *RuleSet) Len() int { return len(rs.entries) }

// Targets returns the target values in declaration order.
func (rs *RuleSet) Targets() []string {
	out := make([]string, len(rs.entries))
	for i, e := range rs.entries {
		out[i] = e.target
	}
	return out
}

// Match returns the target of the first rule, in declaration order, that
// txn satisfies. Later rules are not consulted.
func (rs *RuleSet) Match(txn *model.Transaction) (string, bool) {
	for i := range rs.entries {
		e := &rs.entries[i]
		for j := range e.rules {
			if e.rules[j].Matches(txn) {
				return e.target, true
			}
		}
	}
	return "", false
}

// Catalog holds the validated payee, category and memo rule sets. It is
// never modified after New returns and may be shared between goroutines.
type Catalog struct {
	payees     RuleSet
	categories RuleSet
	memos      RuleSet
}

// FromConfig builds a Catalog from the rule sections of a rules document.
func FromConfig(cfg *config.Config) (*Catalog, error) {
	return New(&cfg.Payees, &cfg.Categories, &cfg.Memos)
}

// New parses and validates the three rule sections. A nil or zero section is empty.
// The first invalid rule aborts loading.
func New(payees, categories, memos *yaml.Node) (*Catalog, error) {
	c := &Catalog{}
	var err error
	if c.payees, err = parseSection(SectionPayees, payees); err != nil {
		return nil, err
	}
	if err := checkDuplicates(&c.payees); err != nil {
		return nil, err
	}
	if c.categories, err = parseSection(SectionCategories, categories); err != nil {
		return nil, err
	}
	if c.memos, err = parseSection(SectionMemos, memos); err != nil {
		return nil, err
	}
	return c, nil
}

// Payees returns the payee rule set.
func (c *Catalog) Payees() *RuleSet { return &c.payees }

// Categories returns the category rule set.
func (c *Catalog) Categories() *RuleSet { return &c.categories }

// Memos returns the memo rule set.
func (c *Catalog) Memos() *RuleSet { return &c.memos }

// checkDuplicates rejects payee rules that are declared more than once,
// since only the first could ever match.
func checkDuplicates(rs *RuleSet) error {
	owner := make(map[string]string)
	for _, e := range rs.entries {
		for i := range e.rules {
			k := e.rules[i].key()
			if other, ok := owner[k]; ok {
				return &RuleError{
					Section: rs.section,
					Target:  e.target,
					Index:   i,
					Err:     fmt.Errorf("%w: same conditions as %s %q", ErrDuplicateRule, rs.section.singular(), other),
				}
			}
			owner[k] = e.target
		}
	}
	return nil
}

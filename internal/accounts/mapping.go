package accounts

import (
	"fmt"
	"slices"

	"github.com/ncruces/go-strftime"

	"github.com/cleared-dev/tidymoney/internal/config"
	"github.com/cleared-dev/tidymoney/internal/model"
)

// DefaultDateFormat is used when a mapping has no date_fmt.
const DefaultDateFormat = "%Y-%m-%d"

// Mapping binds one bank's export layout to the canonical columns.
type Mapping struct {
	Label           string
	Identify        []string
	Columns         map[string]string // canonical name -> raw name
	DateFormat      string            // strftime
	DebitIsPositive bool

	index map[string]int // raw name -> position in Identify
}

// NewMapping validates a configured mapping.
func NewMapping(c config.CSVMapping) (*Mapping, error) {
	if c.Label == "" {
		return nil, fmt.Errorf("%w: empty label", ErrInvalidMapping)
	}
	if len(c.Identify) == 0 {
		return nil, fmt.Errorf("%w: %s: identify is empty", ErrInvalidMapping, c.Label)
	}

	m := &Mapping{
		Label:           c.Label,
		Identify:        slices.Clone(c.Identify),
		Columns:         make(map[string]string, len(c.Translate)),
		DateFormat:      c.DateFormat,
		DebitIsPositive: c.DebitIsPositive,
		index:           make(map[string]int, len(c.Identify)),
	}
	if m.DateFormat == "" {
		m.DateFormat = DefaultDateFormat
	}
	if _, err := strftime.Layout(m.DateFormat); err != nil {
		return nil, fmt.Errorf("%w: %s: date_fmt %q: %v", ErrInvalidMapping, c.Label, m.DateFormat, err)
	}

	for i, name := range m.Identify {
		if _, ok := m.index[name]; !ok {
			m.index[name] = i
		}
	}
	for canonical, raw := range c.Translate {
		if !slices.Contains(model.CanonicalColumns, canonical) {
			return nil, fmt.Errorf("%w: %s: translate key %q is not one of %v",
				ErrInvalidMapping, c.Label, canonical, model.CanonicalColumns)
		}
		if _, ok := m.index[raw]; !ok {
			return nil, fmt.Errorf("%w: %s: translate %s = %q is not listed in identify",
				ErrInvalidMapping, c.Label, canonical, raw)
		}
		m.Columns[canonical] = raw
	}
	return m, nil
}

// Matches reports whether header equals Identify exactly: same names, same
// order, same count.
func (m *Mapping) Matches(header []string) bool {
	return slices.Equal(m.Identify, header)
}

// Column returns the raw column name holding a canonical column.
func (m *Mapping) Column(canonical string) string {
	if raw, ok := m.Columns[canonical]; ok {
		return raw
	}
	return canonical
}

// field returns the cell of row holding the canonical column.
func (m *Mapping) field(row []string, canonical string) (string, bool) {
	i, ok := m.index[m.Column(canonical)]
	if !ok {
		return "", false
	}
	return row[i], true
}

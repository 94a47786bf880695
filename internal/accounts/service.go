package accounts

import (
	"fmt"
	"strings"

	"github.com/cleared-dev/tidymoney/internal/config"
)

// Service provides lookup over the configured account mappings.
type Service struct {
	mappings []*Mapping
	byLabel  map[string]*Mapping
}

// NewService validates mappings and returns a Service over them.
func NewService(cfgs []config.CSVMapping) (*Service, error) {
	s := &Service{byLabel: make(map[string]*Mapping, len(cfgs))}
	for i, c := range cfgs {
		m, err := NewMapping(c)
		if err != nil {
			return nil, fmt.Errorf("mapping %d: %w", i+1, err)
		}
		if _, dup := s.byLabel[m.Label]; dup {
			return nil, fmt.Errorf("mapping %d: %w: label %q used more than once", i+1, ErrInvalidMapping, m.Label)
		}
		s.mappings = append(s.mappings, m)
		s.byLabel[m.Label] = m
	}
	return s, nil
}

// FromConfig builds a Service from the mappings.csv section.
func FromConfig(cfg *config.Config) (*Service, error) {
	return NewService(cfg.Mappings.CSV)
}

// Identify returns the unique mapping whose identify list equals header.
func (s *Service) Identify(header []string) (*Mapping, error) {
	var found []*Mapping
	for _, m := range s.mappings {
		if m.Matches(header) {
			found = append(found, m)
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrNoMatchingAccount, header)
	case 1:
		return found[0], nil
	}
	labels := make([]string, len(found))
	for i, m := range found {
		labels[i] = m.Label
	}
	return nil, fmt.Errorf("%w: %s", ErrAmbiguousAccount, strings.Join(labels, ", "))
}

// All returns every mapping in configuration order.
func (s *Service) All() []*Mapping {
	return s.mappings
}

// Get returns a mapping by label.
func (s *Service) Get(label string) (*Mapping, bool) {
	m, ok := s.byLabel[label]
	return m, ok
}

// Package stamps records, per account label, the date of the last run that
// processed that account. The next run keeps only transactions from that
// date on.
package stamps

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/tidymoney/internal/model"
)

// FileName is the stamp file inside the storage directory.
const FileName = "stamps.yaml"

// DefaultStart is used for accounts that have never been run.
var DefaultStart = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

type record struct {
	Account string `yaml:"account"`
	Date    string `yaml:"date"`
}

// Store holds last-run dates keyed by account label.
type Store struct {
	path  string
	dates map[string]time.Time
}

// Path returns the stamp file for a storage directory.
func Path(storage string) string {
	return filepath.Join(storage, FileName)
}

// Load reads the stamp file. A missing file is an empty store.
func Load(path string) (*Store, error) {
	s := &Store{path: path, dates: make(map[string]time.Time)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading stamps: %w", err)
	}

	var recs []record
	if err := yaml.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parsing stamps: %w", err)
	}
	for i, r := range recs {
		d, err := time.Parse(model.DateFormat, r.Date)
		if err != nil {
			return nil, fmt.Errorf("stamp %d (%s): parsing date %q: %w", i+1, r.Account, r.Date, err)
		}
		s.Update(r.Account, d)
	}
	return s, nil
}

// Start returns the last run date for label, or DefaultStart.
func (s *Store) Start(label string) time.Time {
	if d, ok := s.dates[label]; ok {
		return d
	}
	return DefaultStart
}

// Update records date for label unless a later date is already stored.
func (s *Store) Update(label string, date time.Time) {
	date = model.Day(date)
	if cur, ok := s.dates[label]; ok && !date.After(cur) {
		return
	}
	s.dates[label] = date
}

// Labels returns the known account labels, sorted.
func (s *Store) Labels() []string {
	labels := make([]string, 0, len(s.dates))
	for l := range s.dates {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	return labels
}

// Save writes the store back to its file, sorted by label.
func (s *Store) Save() error {
	recs := make([]record, 0, len(s.dates))
	for _, l := range s.Labels() {
		recs = append(recs, record{Account: l, Date: s.dates[l].Format(model.DateFormat)})
	}

	data, err := yaml.Marshal(recs)
	if err != nil {
		return fmt.Errorf("marshaling stamps: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating stamps dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing stamps: %w", err)
	}
	return nil
}

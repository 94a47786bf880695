package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted when flags are not given.
const (
	EnvRules    = "TIDYMONEY_RULES"
	EnvLogLevel = "TIDYMONEY_LOG_LEVEL"
	EnvWorkers  = "TIDYMONEY_WORKERS"
)

// Config represents the rules.yaml document.
//
// The rule sections are kept as raw nodes: their entries may be a bare
// string, a mapping, or a sequence of either, and declaration order matters.
// The rules package turns them into a catalog. An absent section has Kind 0.
type Config struct {
	Payees     yaml.Node      `yaml:"payees,omitempty"`
	Categories yaml.Node      `yaml:"categories,omitempty"`
	Memos      yaml.Node      `yaml:"memos,omitempty"`
	Mappings   MappingsConfig `yaml:"mappings"`
	Paths      PathsConfig    `yaml:"paths"`
	Git        GitConfig      `yaml:"git"`
}

// MappingsConfig groups account mappings by input format.
type MappingsConfig struct {
	CSV []CSVMapping `yaml:"csv"`
}

// CSVMapping describes how to recognise and translate one bank's export.
type CSVMapping struct {
	Label           string            `yaml:"label"`
	Identify        []string          `yaml:"identify"`
	Translate       map[string]string `yaml:"translate,omitempty"`
	DateFormat      string            `yaml:"date_fmt,omitempty"` // strftime, default "%Y-%m-%d"
	DebitIsPositive bool              `yaml:"debit_is_positive,omitempty"`
}

// PathsConfig holds locations used by a run.
type PathsConfig struct {
	Storage string `yaml:"storage"`
}

// GitConfig controls committing the storage directory after a run.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name,omitempty"`
	AuthorEmail string `yaml:"author_email,omitempty"`
}

// Load reads a rules.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a rules document. Unknown top-level keys are rejected.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("parsing config: empty document")
		}
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if len(cfg.Mappings.CSV) == 0 {
		return nil, errors.New("parsing config: at least one mappings.csv entry is required")
	}
	if cfg.Paths.Storage == "" {
		return nil, errors.New("parsing config: paths.storage is required")
	}
	storage, err := ExpandHome(cfg.Paths.Storage)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Paths.Storage = storage
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// starter is the rules file written by `tidymoney init`.
const starter = `payees:
  Apple: APPLE
  Ace:
    - ACE HARDWARE
    - {Pattern: HARDWARE, MaxAmount: 20.00}
categories:
  Maintenance:
    - {Payee: Ace}
memos: {}
mappings:
  csv:
    - label: checking
      identify: [Date, Description, Amount]
      translate: {Payee: Description}
      date_fmt: "%m/%d/%Y"
`

// Default returns a starter Config whose storage lives at storage.
func Default(storage string) *Config {
	var cfg Config
	if err := yaml.Unmarshal([]byte(starter), &cfg); err != nil {
		panic("invalid starter rules: " + err.Error())
	}
	cfg.Paths.Storage = storage
	cfg.Git = GitConfig{
		AutoCommit:  false,
		AuthorName:  "tidymoney",
		AuthorEmail: "tidymoney@localhost",
	}
	return &cfg
}

// ResolvePath picks the rules file: the flag value, then $TIDYMONEY_RULES,
// then <user config dir>/tidymoney/rules.yaml.
func ResolvePath(flag string) (string, error) {
	if flag != "" {
		return ExpandHome(flag)
	}
	if env := os.Getenv(EnvRules); env != "" {
		return ExpandHome(env)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, "tidymoney", "rules.yaml"), nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding %q: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

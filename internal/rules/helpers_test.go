package rules

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/tidymoney/internal/model"
)

// txn builds a snapshotted transaction from a date like "2024-04-03".
func txn(t *testing.T, payee, date, amount string) *model.Transaction {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	tx := &model.Transaction{
		Payee:  payee,
		Date:   d,
		Amount: decimal.RequireFromString(amount),
	}
	tx.Snapshot()
	return tx
}

func loadCatalog(doc string) (*Catalog, error) {
	var raw struct {
		Payees     yaml.Node `yaml:"payees"`
		Categories yaml.Node `yaml:"categories"`
		Memos      yaml.Node `yaml:"memos"`
	}
	if err := yaml.Unmarshal([]byte(doc), &raw); err != nil {
		return nil, err
	}
	return New(&raw.Payees, &raw.Categories, &raw.Memos)
}

func mustCatalog(t *testing.T, doc string) *Catalog {
	t.Helper()
	c, err := loadCatalog(doc)
	require.NoError(t, err)
	return c
}

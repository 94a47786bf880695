package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/tidymoney/internal/accounts"
	"github.com/cleared-dev/tidymoney/internal/export"
	"github.com/cleared-dev/tidymoney/internal/importer"
	"github.com/cleared-dev/tidymoney/internal/logger"
	"github.com/cleared-dev/tidymoney/internal/model"
	"github.com/cleared-dev/tidymoney/internal/rules"
)

// DefaultWorkers bounds per-file parallelism when none is configured.
const DefaultWorkers = 4

// Source reads a raw export into header and rows.
type Source interface {
	ReadFile(path string) (*importer.Table, error)
}

// FileResult is the outcome for one input file. On error no transactions
// are returned for the file.
type FileResult struct {
	Path         string
	Label        string
	Rows         int
	Kept         int // set by Merge
	Transactions []model.Transaction
	Err          error
}

// Processor identifies, translates and transforms input files.
type Processor struct {
	catalog  *rules.Catalog
	accounts *accounts.Service
	source   Source
	workers  int
}

// NewProcessor creates a Processor. workers < 1 uses DefaultWorkers.
func NewProcessor(cat *rules.Catalog, svc *accounts.Service, src Source, workers int) *Processor {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Processor{catalog: cat, accounts: svc, source: src, workers: workers}
}

// Process handles every path, at most p.workers at a time. Results are in
// the order of paths regardless of completion order. A failing file does
// not stop the others; a cancelled context marks the files not yet started.
func (p *Processor) Process(ctx context.Context, paths []string) []FileResult {
	results := make([]FileResult, len(paths))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = FileResult{Path: path, Err: err}
				return nil
			}
			results[i] = p.processFile(ctx, path)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (p *Processor) processFile(ctx context.Context, path string) FileResult {
	log := logger.FromContext(ctx).With().Str("file", filepath.Base(path)).Logger()
	res := FileResult{Path: path}

	tbl, err := p.source.ReadFile(path)
	if err != nil {
		res.Err = err
		log.Warn().Err(err).Msg("read failed")
		return res
	}
	res.Rows = len(tbl.Rows)

	m, err := p.accounts.Identify(tbl.Header)
	if err != nil {
		res.Err = err
		log.Warn().Err(err).Msg("identify failed")
		return res
	}
	res.Label = m.Label
	log = log.With().Str("account", m.Label).Logger()

	txns := make([]model.Transaction, 0, len(tbl.Rows))
	for i, row := range tbl.Rows {
		txn, err := m.Translate(row)
		if err != nil {
			// Row 1 is the header.
			res.Err = fmt.Errorf("row %d: %w", i+2, err)
			log.Warn().Err(res.Err).Msg("translate failed")
			return res
		}
		Transform(p.catalog, &txn)
		txns = append(txns, txn)
	}
	res.Transactions = txns

	log.Debug().Int("rows", res.Rows).Msg("file processed")
	return res
}

// Merge groups successful results by account label. Batches appear in the
// order each label is first seen in results, and transactions keep file
// then row order. window supplies the date range for each label. Each
// result's Kept is set to the number of its transactions that passed.
func Merge(results []FileResult, window func(label string) Window) []export.Batch {
	var batches []export.Batch
	index := make(map[string]int)
	for j := range results {
		r := &results[j]
		if r.Err != nil {
			continue
		}
		i, ok := index[r.Label]
		if !ok {
			i = len(batches)
			index[r.Label] = i
			batches = append(batches, export.Batch{Label: r.Label, Transactions: []model.Transaction{}})
		}
		kept := Filter(r.Transactions, window(r.Label))
		r.Kept = len(kept)
		batches[i].Transactions = append(batches[i].Transactions, kept...)
	}
	return batches
}

// Failed returns the results that carry an error.
func Failed(results []FileResult) []FileResult {
	var out []FileResult
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

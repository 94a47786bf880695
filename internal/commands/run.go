package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tidymoney/internal/config"
	"github.com/cleared-dev/tidymoney/internal/export"
	"github.com/cleared-dev/tidymoney/internal/gitops"
	"github.com/cleared-dev/tidymoney/internal/importer"
	"github.com/cleared-dev/tidymoney/internal/logger"
	"github.com/cleared-dev/tidymoney/internal/model"
	"github.com/cleared-dev/tidymoney/internal/pipeline"
	"github.com/cleared-dev/tidymoney/internal/runlog"
	"github.com/cleared-dev/tidymoney/internal/stamps"
)

type runOptions struct {
	date    string
	dryRun  bool
	workers int
}

func newRunCommand(opts *globalOptions) *cobra.Command {
	ro := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <file-or-dir>...",
		Short: "Normalize bank exports into <storage>/new/<date>/",
		Long: `Normalize bank exports.

Each file is matched to an account mapping by its header, translated,
rewritten by the payee, category and memo rules, and filtered to the dates
since the account's last run. Directories are scanned for supported files.
Processed files are moved to <storage>/old/<date>/.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, opts, ro, args)
		},
	}

	cmd.Flags().StringVar(&ro.date, "date", "", "treat this YYYY-MM-DD as today")
	cmd.Flags().BoolVar(&ro.dryRun, "dry-run", false, "print normalized CSV to stdout without touching storage")
	cmd.Flags().IntVar(&ro.workers, "workers", 0,
		"files processed in parallel (default $"+config.EnvWorkers+" or "+strconv.Itoa(pipeline.DefaultWorkers)+")")

	return cmd
}

func runRun(cmd *cobra.Command, opts *globalOptions, ro *runOptions, args []string) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)

	l, err := opts.load()
	if err != nil {
		return err
	}
	storage := l.cfg.Paths.Storage

	now, err := today(ro.date)
	if err != nil {
		return err
	}
	date := now.Format(model.DateFormat)

	workers, err := workerCount(ro.workers)
	if err != nil {
		return err
	}

	reg := importer.DefaultRegistry()
	paths, err := expandInputs(reg, args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no %v files found", reg.Formats())
	}

	st, err := stamps.Load(stamps.Path(storage))
	if err != nil {
		return err
	}

	runID := runlog.NewRunID()
	log = log.With().Str("run", runID).Logger()
	ctx = logger.WithContext(ctx, log)
	log.Info().Int("files", len(paths)).Str("date", date).Msg("run started")

	results := pipeline.NewProcessor(l.catalog, l.accounts, reg, workers).Process(ctx, paths)
	batches := pipeline.Merge(results, func(label string) pipeline.Window {
		return pipeline.Window{Start: st.Start(label), End: now}
	})
	failed := pipeline.Failed(results)

	total := 0
	for _, b := range batches {
		total += len(b.Transactions)
	}

	if ro.dryRun {
		if err := printBatches(cmd.OutOrStdout(), batches); err != nil {
			return err
		}
		return failure(cmd.ErrOrStderr(), failed, len(paths))
	}

	written, err := export.Write(storage, date, batches)
	if err != nil {
		return err
	}

	var done []string
	for _, r := range results {
		if r.Err == nil {
			done = append(done, r.Path)
		}
	}
	if _, err := importer.Archive(storage, date, done); err != nil {
		return err
	}

	for _, b := range batches {
		st.Update(b.Label, now)
	}
	if err := st.Save(); err != nil {
		return err
	}

	if err := runlog.Append(storage, logEntries(runID, results)); err != nil {
		return err
	}

	if l.cfg.Git.AutoCommit {
		repo := gitops.Open(storage, l.cfg.Git.AuthorName, l.cfg.Git.AuthorEmail)
		if err := repo.Init(ctx); err != nil {
			return err
		}
		hash, err := repo.CommitAll(ctx, fmt.Sprintf("run: %s (%d transactions)", date, total))
		if err != nil {
			return err
		}
		log.Debug().Str("commit", hash).Msg("storage committed")
	}

	out := cmd.OutOrStdout()
	for i, b := range batches {
		fmt.Fprintf(out, "%s: %d transactions -> %s\n", b.Label, len(b.Transactions), written[i])
	}
	log.Info().Int("transactions", total).Int("failed", len(failed)).Msg("run finished")

	return failure(cmd.ErrOrStderr(), failed, len(paths))
}

func today(flag string) (time.Time, error) {
	if flag == "" {
		return model.Day(time.Now().Local()), nil
	}
	d, err := time.Parse(model.DateFormat, flag)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing --date %q: want YYYY-MM-DD", flag)
	}
	return d, nil
}

func workerCount(flag int) (int, error) {
	if flag > 0 {
		return flag, nil
	}
	env := os.Getenv(config.EnvWorkers)
	if env == "" {
		return pipeline.DefaultWorkers, nil
	}
	n, err := strconv.Atoi(env)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s=%q: want a positive integer", config.EnvWorkers, env)
	}
	return n, nil
}

// expandInputs replaces directory arguments with the supported files inside
// them. A file named more than once, directly or through its directory, is
// kept once at its first position.
func expandInputs(reg *importer.Registry, args []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(path string) {
		key, err := filepath.Abs(path)
		if err != nil {
			key = filepath.Clean(path)
		}
		if seen[key] {
			return
		}
		seen[key] = true
		paths = append(paths, path)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			// Missing files are reported per file by the processor.
			add(arg)
			continue
		}
		files, err := reg.Scan(arg)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f.Path)
		}
	}
	return paths, nil
}

func printBatches(w io.Writer, batches []export.Batch) error {
	for _, b := range batches {
		if _, err := fmt.Fprintf(w, "# %s\n", b.Label); err != nil {
			return err
		}
		if err := export.WriteTransactions(w, b.Transactions); err != nil {
			return fmt.Errorf("writing %s: %w", b.Label, err)
		}
	}
	return nil
}

func logEntries(runID string, results []pipeline.FileResult) []runlog.Entry {
	ts := time.Now().UTC().Truncate(time.Second)
	entries := make([]runlog.Entry, 0, len(results))
	for _, r := range results {
		e := runlog.Entry{
			Timestamp: ts,
			RunID:     runID,
			File:      filepath.Base(r.Path),
			Account:   r.Label,
			Rows:      r.Rows,
			Kept:      r.Kept,
			Status:    runlog.StatusOK,
		}
		if r.Err != nil {
			e.Status = runlog.StatusFailed
			e.Error = r.Err.Error()
		}
		entries = append(entries, e)
	}
	return entries
}

func failure(w io.Writer, failed []pipeline.FileResult, total int) error {
	if len(failed) == 0 {
		return nil
	}
	for _, r := range failed {
		fmt.Fprintf(w, "%s: %v\n", r.Path, r.Err)
	}
	return fmt.Errorf("%d of %d files failed", len(failed), total)
}

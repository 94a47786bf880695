package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tidymoney/internal/config"
	"github.com/cleared-dev/tidymoney/internal/gitops"
)

func newInitCommand(opts *globalOptions) *cobra.Command {
	var storage string
	var autoCommit bool
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter rules file and create the storage directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ResolvePath(opts.rulesPath)
			if err != nil {
				return err
			}
			dir, err := config.ExpandHome(storage)
			if err != nil {
				return err
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(cmd, path, absDir, autoCommit, force)
		},
	}

	cmd.Flags().StringVar(&storage, "storage", "~/tidymoney", "directory for normalized output, archives and logs")
	cmd.Flags().BoolVar(&autoCommit, "git", false, "version the storage directory with git")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing rules file")

	return cmd
}

func runInit(cmd *cobra.Command, rulesPath, storage string, autoCommit, force bool) error {
	if _, err := os.Stat(rulesPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", rulesPath)
	}

	cfg := config.Default(storage)
	cfg.Git.AutoCommit = autoCommit
	if err := config.Save(rulesPath, cfg); err != nil {
		return err
	}

	for _, d := range []string{"new", "old", "logs"} {
		if err := os.MkdirAll(filepath.Join(storage, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if cfg.Git.AutoCommit {
		repo := gitops.Open(storage, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
		if err := repo.Init(cmd.Context()); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(storage, "old", ".gitkeep"), nil, 0o644); err != nil {
			return fmt.Errorf("writing .gitkeep: %w", err)
		}
		if _, err := repo.CommitAll(cmd.Context(), "init: tidymoney storage"); err != nil {
			return fmt.Errorf("initial commit: %w", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote rules to %s\nStorage at %s\n", rulesPath, storage)
	return nil
}

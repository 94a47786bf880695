package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tidymoney/internal/accounts"
	"github.com/cleared-dev/tidymoney/internal/buildinfo"
	"github.com/cleared-dev/tidymoney/internal/config"
	"github.com/cleared-dev/tidymoney/internal/logger"
	"github.com/cleared-dev/tidymoney/internal/rules"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	rulesPath string
	logLevel  string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "tidymoney",
		Short:   "Normalize bank exports with ordered payee, category and memo rules",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is fine.
			_ = godotenv.Load()

			level := opts.logLevel
			if level == "" {
				level = os.Getenv(config.EnvLogLevel)
			}
			lvl, err := logger.ParseLevel(level)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(logger.WithContext(ctx, logger.New(lvl)))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.rulesPath, "rules", "",
		"rules file (default $"+config.EnvRules+" or <user config dir>/tidymoney/rules.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"trace, debug, info, warn or error (default $"+config.EnvLogLevel+" or info)")

	rootCmd.AddCommand(newInitCommand(opts))
	rootCmd.AddCommand(newCheckCommand(opts))
	rootCmd.AddCommand(newRunCommand(opts))

	return rootCmd
}

// loaded is a validated rules file.
type loaded struct {
	path     string
	cfg      *config.Config
	catalog  *rules.Catalog
	accounts *accounts.Service
}

// load reads and validates the rules file. Any error here is fatal before
// input files are touched.
func (o *globalOptions) load() (*loaded, error) {
	path, err := config.ResolvePath(o.rulesPath)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cat, err := rules.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	svc, err := accounts.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &loaded{path: path, cfg: cfg, catalog: cat, accounts: svc}, nil
}

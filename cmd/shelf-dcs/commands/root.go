package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"shelf-dcs/internal/config"
	"shelf-dcs/internal/ledger"
	"shelf-dcs/internal/logging"
	"shelf-dcs/internal/mcp"
	"shelf-dcs/internal/planner"
	"shelf-dcs/internal/store"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	ruleset string
	actor   string

	cfg *config.AppConfig
	db  *store.SQLStore
	svc *planner.Service
)

var rootCmd = &cobra.Command{
	Use:   "shelf-dcs",
	Short: "Shelf planning and DCS recommendations for retail planograms",
	Long: `shelf-dcs keeps a store's planogram (gondolas, shelf levels, facings) and runs the
DCS recommendation engine over it. Without a sub-command it serves the planner as an
MCP server on stdio; the sub-commands cover the same workflow from a terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(verbose); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if ruleset != "" {
			cfg.Ruleset = ruleset
		}
		if actor != "" {
			cfg.Actor = actor
		}

		db, err = store.Open(cfg.DBFile)
		if err != nil {
			return err
		}
		svc = planner.New(cfg.PlannerOptions(), db, ledger.NewFileStore(cfg.DataPath))
		if err := svc.Load(cmd.Context()); err != nil {
			if !errors.Is(err, store.ErrNoCatalog) {
				return fmt.Errorf("failed to load catalog: %w", err)
			}
			log.Warn().Str("db", cfg.DBFile).Msg("No catalog imported yet")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("command", cmd.Name()).
			Msg("shelf-dcs starting")
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return db.Close()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		server := mcp.NewServer(svc, mcp.Options{
			Version:             Version,
			CandidatesFile:      cfg.CandidatesFile,
			EnableMermaidCharts: cfg.EnableMermaidCharts,
		})
		return server.Serve(cmd.Context())
	},
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&ruleset, "ruleset", "", "DCS ruleset: threshold or balanced (overrides DCS_RULESET)")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", "", "name recorded on edits and decisions (overrides DCS_ACTOR)")
}

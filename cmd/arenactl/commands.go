package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/ericogr/chimera-arena/internal/bots"
	"github.com/ericogr/chimera-arena/internal/config"
	"github.com/ericogr/chimera-arena/internal/engine"
	"github.com/ericogr/chimera-arena/internal/game"
	"github.com/ericogr/chimera-arena/internal/logging"
	"github.com/ericogr/chimera-arena/internal/matchmaking"
	"github.com/ericogr/chimera-arena/internal/service"
	"github.com/ericogr/chimera-arena/internal/storage"
	"github.com/ericogr/chimera-arena/internal/team"
	"github.com/ericogr/chimera-arena/internal/units"
	"github.com/ericogr/chimera-arena/internal/version"

	"github.com/spf13/cobra"
)

var errInvalidTeam = errors.New("team is invalid")

type rootOptions struct {
	configPath string
	dbPath     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "arenactl",
		Short:        "Inspect teams, bot coverage and opponent resolution",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				logging.SetLevel(logging.LevelDebug)
			} else {
				logging.SetLevel(logging.LevelError)
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to arena_config.json (default catalog when empty)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "./data/arena.db", "SQLite database path")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		newValidateCmd(opts),
		newLabelCmd(),
		newBotsCmd(opts),
		newResolveCmd(opts),
		newVersionCmd(),
	)
	return root
}

func (o *rootOptions) loadConfig() (*config.LoadedConfig, error) {
	if o.configPath == "" {
		return &config.LoadedConfig{}, nil
	}
	return config.LoadConfig(o.configPath)
}

func (o *rootOptions) catalog() (*units.Catalog, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Catalog(), nil
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <team.json>",
		Short: "Validate a team setup file ({\"units\": [...], \"positions\": [...]})",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := opts.catalog()
			if err != nil {
				return err
			}
			b, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read team file: %w", err)
			}
			var setup game.TeamSetup
			if err := json.Unmarshal(b, &setup); err != nil {
				return fmt.Errorf("parse team file: %w", err)
			}

			out := cmd.OutOrStdout()
			violations := team.Validate(setup, catalog.Cost)
			total := team.SetupCost(setup, catalog.Cost)
			fmt.Fprintf(out, "units: %d  cost: %d/%d\n", len(setup.Units), total, team.MaxBudget)
			if len(violations) == 0 {
				fmt.Fprintln(out, "valid")
				return nil
			}
			for _, v := range violations {
				fmt.Fprintf(out, "- %s: %s\n", v.Rule, v.Message)
			}
			return errInvalidTeam
		},
	}
}

func newLabelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "label <difficulty>",
		Short: "Print the label for a bot difficulty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("difficulty must be an integer: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), bots.Label(d))
			return nil
		},
	}
}

func newBotsCmd(opts *rootOptions) *cobra.Command {
	var stage, wins int
	cmd := &cobra.Command{
		Use:   "bots",
		Short: "Show configured bot teams for a stage and which suit a win count",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			catalog := cfg.Catalog()

			var atStage []game.BotTeam
			for _, b := range cfg.BotTeams {
				if b.Stage == stage {
					atStage = append(atStage, b)
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "stage %d, %d wins, target difficulty %d\n", stage, wins, bots.TargetDifficulty(wins))
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDIFFICULTY\tLABEL\tCOST\tAPPROPRIATE")
			for _, b := range atStage {
				s := bots.Describe(b, catalog.Cost)
				fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%t\n", s.Name, s.Difficulty, s.Label, s.Cost, bots.IsAppropriate(b, stage, wins))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if pick, ok := matchmaking.SelectBot(atStage, stage, wins); ok {
				fmt.Fprintf(out, "fallback pick: %s\n", pick.Name)
			} else {
				fmt.Fprintln(out, "fallback pick: none (no in-band bot for this stage)")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&stage, "stage", bots.MinStage, "Run stage (1-9)")
	cmd.Flags().IntVar(&wins, "wins", 0, "Run win count")
	return cmd
}

func newResolveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <runID>",
		Short: "Preview the opponent a run would be matched against",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil || id == 0 {
				return fmt.Errorf("invalid run id %q", args[0])
			}
			catalog, err := opts.catalog()
			if err != nil {
				return err
			}
			db, err := storage.OpenDB(opts.dbPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			repo := storage.NewSQLiteRepository(db)
			battles := service.NewBattleService(repo, engine.NewSimulator(catalog))
			ref, err := battles.PreviewOpponent(context.Background(), uint(id))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch ref.Kind {
			case game.OpponentSnapshot:
				fmt.Fprintf(out, "snapshot %d\n", ref.SnapshotID)
			case game.OpponentBot:
				fmt.Fprintf(out, "bot team %d\n", ref.BotTeamID)
			}
			for i, u := range ref.Team.Units {
				fmt.Fprintf(out, "  %d. %s tier %d at (%d,%d)\n", i+1, u.UnitID, u.Tier, u.Position.X, u.Position.Y)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
		},
	}
}

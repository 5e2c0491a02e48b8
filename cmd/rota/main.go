package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rota-engine/internal/calendar"
	"rota-engine/internal/config"
	"rota-engine/internal/continuity"
	"rota-engine/internal/models"
	"rota-engine/internal/output"
	"rota-engine/internal/rules"
	"rota-engine/internal/schedule"
	"rota-engine/internal/solver"
)

var (
	// Global flags
	configPath    string
	rulesPath     string
	overridesPath string
	outputDir     string
	budget        time.Duration
	force         bool
	verbose       bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rota",
	Short: "rota - four-week duty rota generator",
	Long: `rota builds a four-week shift schedule from a rules document and an
overrides document, carrying working-streak and weekend state over from
the previously published period so back-to-back periods stay legal.

The schedule is solved as a constraint model: hard rules (coverage,
rest limits, weekend alternation) are never violated, and shift
preferences are maximized on top.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		applyFlagOverrides(cmd)

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else if lvl, perr := zapcore.ParseLevel(cfg.Logging.Level); perr == nil {
			zcfg.Level = zap.NewAtomicLevelAt(lvl)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// generateCmd solves a period and publishes the CSV artifact.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Solve the next period and publish its CSV artifact",
	Long: `Reads the rules and overrides documents, loads carryover state from
the most recent artifact in the output directory, solves the four-week
model, and writes "Rota - <start-date>.csv". Refuses to overwrite an
existing artifact unless --force is given.`,
	RunE: runGenerate,
}

// previewCmd renders a published artifact as HTML.
var previewCmd = &cobra.Command{
	Use:   "preview [start-date]",
	Short: "Render a published artifact as HTML on stdout",
	Long: `Renders an artifact from the output directory as an HTML page on
stdout. With no argument the most recent period is used; otherwise the
period starting on the given date (YYYY-MM-DD) is rendered.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func applyFlagOverrides(cmd *cobra.Command) {
	if cmd.Flags().Changed("rules") {
		cfg.RulesPath = rulesPath
	}
	if cmd.Flags().Changed("overrides") {
		cfg.OverridesPath = overridesPath
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputDir = outputDir
	}
	if cmd.Flags().Changed("budget") {
		cfg.SolveBudget = budget.String()
	}
}

func solvePeriod(cmd *cobra.Command) (*schedule.Table, error) {
	roster, start, err := rulesLoad()
	if err != nil {
		return nil, err
	}
	cal, err := calendar.Build(start)
	if err != nil {
		return nil, err
	}

	loader := continuity.NewLoader(continuity.DirSource{Dir: cfg.OutputDir}, logger)
	engine := schedule.NewEngine(solver.New(), loader, logger)
	engine.Weights = cfg.GetWeights()
	engine.Budget = cfg.GetSolveBudget()

	assignment, err := engine.Generate(cmd.Context(), roster, cal)
	if err != nil {
		return nil, err
	}
	return schedule.Format(assignment, roster, cal), nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	table, err := solvePeriod(cmd)
	if err != nil {
		return describe(err)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path, err := output.Write(cfg.OutputDir, table, force)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "published", path)
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	src := continuity.DirSource{Dir: cfg.OutputDir}
	periods, err := src.Periods()
	if err != nil {
		return err
	}
	if len(periods) == 0 {
		return fmt.Errorf("no artifacts in %s; run generate first", cfg.OutputDir)
	}

	period := periods[len(periods)-1]
	if len(args) == 1 {
		start, perr := time.Parse("2006-01-02", args[0])
		if perr != nil {
			return fmt.Errorf("invalid start date %q: expected YYYY-MM-DD", args[0])
		}
		found := false
		for _, p := range periods {
			if p.Start.Equal(start) {
				period, found = p, true
				break
			}
		}
		if !found {
			return fmt.Errorf("no artifact for period starting %s in %s", args[0], cfg.OutputDir)
		}
	}

	f, err := src.Open(period)
	if err != nil {
		return err
	}
	defer f.Close()

	table, err := output.ReadTable(f, period.Start)
	if err != nil {
		return fmt.Errorf("reading %s: %w", period.Path, err)
	}
	return output.RenderHTML(cmd.OutOrStdout(), table)
}

func rulesLoad() (*models.Roster, time.Time, error) {
	return rules.Load(cfg.RulesPath, cfg.OverridesPath)
}

// describe turns the engine's terminal errors into actionable messages.
func describe(err error) error {
	switch e := err.(type) {
	case *models.ValidationError:
		return fmt.Errorf("configuration conflicts:\n  %s", strings.Join(e.Conflicts, "\n  "))
	case *models.InfeasibleModelError:
		return fmt.Errorf("no schedule satisfies the hard rules (active rule families: %s); relax quotas, availability, or forced shifts",
			strings.Join(e.Families, ", "))
	case *models.SolverTimeoutError:
		return fmt.Errorf("solve budget of %s exhausted before a schedule was found; raise solve_budget or simplify the rules", e.Budget)
	default:
		return err
	}
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "rota.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "path to the rules document (overrides config)")
	rootCmd.PersistentFlags().StringVar(&overridesPath, "overrides", "", "path to the overrides document (overrides config)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output", "", "artifact directory (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&budget, "budget", 0, "solve budget (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	generateCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing artifact for the same period")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(previewCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

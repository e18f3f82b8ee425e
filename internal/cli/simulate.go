package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/tenpin/internal/engine"
	"github.com/roach88/tenpin/internal/harness"
	"github.com/roach88/tenpin/internal/store"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Database string
	UUID     bool
}

// SimulateResult is the JSON payload of the simulate command.
type SimulateResult struct {
	Scenario string `json:"scenario"`
	*harness.Result
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Run a lane scenario through the engine",
		Long: `Run one scenario tick by tick and print the final scoreboard.

With --db every game, roll and event is journaled to a SQLite file that
replay and trace can read back. Game ids are sequential (game-1, game-2)
unless --uuid is set; use --uuid when journaling several runs into one
database. --config replaces the scenario's own tuning file.

Exit codes:
  0 - Scenario ran and its assertions held
  1 - One or more assertions failed
  2 - Command error (unreadable scenario, bad tuning, etc.)

Examples:
  tenpin simulate ./scenarios/perfect_game.yaml
  tenpin simulate ./scenarios/perfect_game.yaml --db ./lane.db --uuid
  tenpin simulate ./scenarios/perfect_game.yaml -v --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "journal to this SQLite database")
	cmd.Flags().BoolVar(&opts.UUID, "uuid", false, "use UUIDv7 game ids")

	return cmd
}

func runSimulate(opts *SimulateOptions, cmd *cobra.Command, path string) error {
	out := newFormatter(cmd, opts.RootOptions)
	logger := opts.Logger()

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return commandError(out, CodeScenario, "failed to load scenario", err)
	}
	if opts.Config != "" {
		scenario.Tuning = opts.Config
	}

	runOpts := []harness.Option{harness.WithLogger(logger)}
	if opts.UUID {
		runOpts = append(runOpts, harness.WithIDs(engine.UUIDv7Generator{}))
	}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return commandError(out, CodeJournal, "failed to open database", err)
		}
		defer st.Close()
		runOpts = append(runOpts, harness.WithStore(st))
		out.VerboseLog("journaling to %s", opts.Database)
	}

	result, err := harness.Run(scenario, runOpts...)
	if err != nil {
		return commandError(out, CodeScenario, "failed to run scenario", err)
	}

	data := SimulateResult{Scenario: scenario.Name, Result: result}
	render := func(w io.Writer) { renderSimulation(w, data, opts.Verbose) }
	if !result.Pass {
		return out.Failure(CodeScenario, fmt.Sprintf("scenario %s failed", scenario.Name), data, render)
	}
	return out.Success(data, render)
}

func renderSimulation(w io.Writer, r SimulateResult, verbose bool) {
	status := "✓"
	if !r.Pass {
		status = "✗"
	}
	fmt.Fprintf(w, "%s %s (%s)\n", status, r.Scenario, r.Mode)
	fmt.Fprintln(w, r.Board.String())
	fmt.Fprintf(w, "Total: %d\n", r.Board.Total)

	if verbose {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Trace ===")
		for _, e := range r.Trace {
			fmt.Fprintf(w, "  %s\n", formatTraceEntry(e))
		}
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

func formatTraceEntry(e harness.TraceEntry) string {
	s := fmt.Sprintf("[%d] %-7s %s", e.Seq, e.Type, e.Kind)
	if e.Kind == "roll_recorded" || e.Kind == "roll_discarded" {
		s += fmt.Sprintf(" frame=%d roll=%d", e.Frame+1, e.Roll+1)
	}
	if e.Detail != "" {
		s += " " + e.Detail
	}
	return s
}

package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tenpin/internal/config"
)

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config [file]",
		Short: "Print the effective lane tuning",
		Long: `Validate a tuning file and print the values the engine would use.

The file may be YAML or CUE; without one the global --config file is
used, and without either the built-in defaults. TENPIN_* environment
variables (TENPIN_SETTLE_SECONDS, TENPIN_TICK_HZ, ...) override the file
and are validated against the same schema.

Exit codes:
  0 - Tuning is valid
  2 - Tuning file is unreadable or out of range

Examples:
  tenpin config
  tenpin config ./lane.yaml
  TENPIN_TICK_HZ=120 tenpin config ./lane.cue --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Config
			if len(args) == 1 {
				path = args[0]
			}
			return runConfig(rootOpts, cmd, path)
		},
	}
	return cmd
}

func runConfig(opts *RootOptions, cmd *cobra.Command, path string) error {
	out := newFormatter(cmd, opts)

	tuning, err := config.Load(path)
	if err != nil {
		var cfgErr *config.Error
		if errors.As(err, &cfgErr) {
			if perr := out.Error(CodeTuning, cfgErr.Error(), map[string]string{"field": cfgErr.Field}); perr != nil {
				return perr
			}
			return WrapExitError(ExitCommandError, "invalid tuning", err)
		}
		return commandError(out, CodeTuning, "failed to load tuning", err)
	}
	if path != "" {
		out.VerboseLog("loaded tuning from %s", path)
	}

	return out.Success(tuning, func(w io.Writer) {
		step := time.Second / time.Duration(tuning.TickHz)
		fmt.Fprintf(w, "tilt_degrees:   %g\n", tuning.TiltDegrees)
		fmt.Fprintf(w, "settle_seconds: %g (%s)\n", tuning.SettleSeconds, tuning.SettleDelay())
		fmt.Fprintf(w, "rerack_seconds: %g (%s)\n", tuning.RerackSeconds, tuning.RerackDelay())
		fmt.Fprintf(w, "lane_boundary:  %g\n", tuning.LaneBoundary)
		fmt.Fprintf(w, "rest_speed:     %g\n", tuning.RestSpeed)
		fmt.Fprintf(w, "tick_hz:        %d (%s per tick)\n", tuning.TickHz, step)
	})
}

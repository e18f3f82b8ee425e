package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/tenpin/internal/scoring"
)

// NewScoreCommand creates the score command.
func NewScoreCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <rolls...>",
		Short: "Score a sequence of rolls",
		Long: `Score a sequence of rolls written in score-sheet notation.

Rolls are X (strike), / (spare), - (gutter) or a pin count from 0 to 10.
Marks may be packed into one argument. A partial game prints the frames
scored so far.

Exit codes:
  0 - Rolls scored
  2 - Rolls are not a legal sequence

Examples:
  tenpin score X X X X X X X X X X X X
  tenpin score X7/9-X-88/-6XXX81
  tenpin score 10 7 3 9 0 --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(rootOpts, cmd, args)
		},
	}
	return cmd
}

func runScore(opts *RootOptions, cmd *cobra.Command, args []string) error {
	out := newFormatter(cmd, opts)

	pins, err := scoring.ParseRolls(args...)
	if err != nil {
		return commandError(out, CodeBadInput, "invalid rolls", err)
	}
	session, err := scoring.Replay("score", pins)
	if err != nil {
		return commandError(out, CodeBadInput, "invalid rolls", err)
	}
	board := session.Board()
	opts.Logger().Debug("scored rolls", "rolls", len(pins), "total", board.Total, "game_over", board.GameOver)

	return out.Success(board, func(w io.Writer) {
		fmt.Fprintln(w, board.String())
		status := "in progress"
		if board.GameOver {
			status = "final"
		}
		fmt.Fprintf(w, "Total: %d (%s)\n", board.Total, status)
	})
}

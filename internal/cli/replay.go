package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tenpin/internal/canonical"
	"github.com/roach88/tenpin/internal/scoring"
	"github.com/roach88/tenpin/internal/store"
)

// Replay statuses.
const (
	ReplayVerified   = "verified"
	ReplayInProgress = "in_progress"
	ReplayMismatch   = "mismatch"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	GameID   string // optional - specific game only
}

// ReplayGameResult holds the replay result for a single game.
type ReplayGameResult struct {
	GameID   string   `json:"game_id"`
	Player   string   `json:"player,omitempty"`
	Rolls    int      `json:"rolls"`
	Total    int      `json:"total"`
	Status   string   `json:"status"`
	Problems []string `json:"problems,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Games       []ReplayGameResult `json:"games"`
	TotalGames  int                `json:"total_games"`
	AllVerified bool               `json:"all_verified"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-score journaled games and verify their results",
		Long: `Re-score every journaled game from its rolls and check the journal.

Each roll's mark must match the re-scored symbol. A finished game's
total, scoreboard digest and roll digest must match its stored result.
Games without a result are reported as in progress.

Exit codes:
  0 - Every game verified or still in progress
  1 - A journaled game does not re-score to its stored result
  2 - Command error (database not found, etc.)

Examples:
  tenpin replay --db ./lane.db
  tenpin replay --db ./lane.db --game game-1
  tenpin replay --db ./lane.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.GameID, "game", "", "replay one game only")

	return cmd
}

// openJournal opens an existing journal. Unlike store.Open it refuses to
// create a new database file.
func openJournal(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return store.Open(path)
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := newFormatter(cmd, opts.RootOptions)

	st, err := openJournal(opts.Database)
	if err != nil {
		return commandError(out, CodeJournal, "failed to open database", err)
	}
	defer st.Close()

	var games []store.Game
	if opts.GameID != "" {
		g, err := st.ReadGame(ctx, opts.GameID)
		if err != nil {
			return commandError(out, CodeJournal, "failed to read game", err)
		}
		games = []store.Game{g}
	} else if games, err = st.ListGames(ctx); err != nil {
		return commandError(out, CodeJournal, "failed to list games", err)
	}

	result := ReplayResult{
		Games:       make([]ReplayGameResult, 0, len(games)),
		TotalGames:  len(games),
		AllVerified: true,
	}
	for _, g := range games {
		gr, err := replayGame(ctx, st, g)
		if err != nil {
			return commandError(out, CodeJournal, fmt.Sprintf("failed to replay game %s", g.ID), err)
		}
		opts.Logger().Debug("game replayed", "game", g.ID, "status", gr.Status, "total", gr.Total)
		if gr.Status == ReplayMismatch {
			result.AllVerified = false
		}
		result.Games = append(result.Games, gr)
	}

	render := func(w io.Writer) { renderReplay(w, result, opts.Verbose) }
	if !result.AllVerified {
		return out.Failure(CodeReplayFailed, "journal verification failed", result, render)
	}
	return out.Success(result, render)
}

// replayGame re-scores one game and compares it with the journal.
func replayGame(ctx context.Context, st *store.Store, g store.Game) (ReplayGameResult, error) {
	rolls, err := st.ReadRolls(ctx, g.ID)
	if err != nil {
		return ReplayGameResult{}, err
	}
	gr := ReplayGameResult{GameID: g.ID, Player: g.Player, Rolls: len(rolls)}

	pins := make([]int, len(rolls))
	for i, r := range rolls {
		pins[i] = r.Pins
	}
	session, err := scoring.Replay(g.ID, pins)
	if err != nil {
		gr.Status = ReplayMismatch
		gr.Problems = append(gr.Problems, fmt.Sprintf("journaled rolls are not a legal game: %v", err))
		return gr, nil
	}
	gr.Total = session.Total()

	for _, r := range rolls {
		f := session.Frame(r.Frame)
		if r.Roll >= len(f.Rolls) {
			gr.Problems = append(gr.Problems, fmt.Sprintf("frame %d roll %d was journaled out of place", r.Frame+1, r.Roll+1))
			continue
		}
		if got := f.Rolls[r.Roll].Symbol(); got != r.Mark {
			gr.Problems = append(gr.Problems, fmt.Sprintf("frame %d roll %d: journaled %q, re-scored %q", r.Frame+1, r.Roll+1, r.Mark, got))
		}
	}

	stored, err := st.ReadResult(ctx, g.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if session.GameOver() {
			gr.Problems = append(gr.Problems, "game is complete but has no stored result")
		}
	case err != nil:
		return ReplayGameResult{}, err
	default:
		gr.Problems = append(gr.Problems, compareResult(g.ID, session, pins, stored)...)
	}

	switch {
	case len(gr.Problems) > 0:
		gr.Status = ReplayMismatch
	case errors.Is(err, store.ErrNotFound):
		gr.Status = ReplayInProgress
	default:
		gr.Status = ReplayVerified
	}
	return gr, nil
}

func compareResult(gameID string, session *scoring.Session, pins []int, stored store.Result) []string {
	var problems []string
	if !session.GameOver() {
		problems = append(problems, "stored result for an unfinished game")
	}
	if session.Total() != stored.Total {
		problems = append(problems, fmt.Sprintf("total: stored %d, re-scored %d", stored.Total, session.Total()))
	}
	if _, digest, err := canonical.Board(session.Board()); err != nil {
		problems = append(problems, err.Error())
	} else if digest != stored.Digest {
		problems = append(problems, "scoreboard digest differs from stored result")
	}
	if digest, err := canonical.Rolls(gameID, pins); err != nil {
		problems = append(problems, err.Error())
	} else if digest != stored.RollsDigest {
		problems = append(problems, "roll digest differs from stored result")
	}
	return problems
}

func renderReplay(w io.Writer, result ReplayResult, verbose bool) {
	if result.TotalGames == 0 {
		fmt.Fprintln(w, "No games found in database.")
		return
	}

	fmt.Fprintf(w, "Replay Summary: %d game(s)\n", result.TotalGames)
	fmt.Fprintln(w)

	for _, g := range result.Games {
		mark := "✓"
		switch g.Status {
		case ReplayMismatch:
			mark = "✗"
		case ReplayInProgress:
			mark = "…"
		}
		fmt.Fprintf(w, "%s Game: %s (%s)\n", mark, g.GameID, g.Status)
		fmt.Fprintf(w, "  Rolls: %d, Total: %d\n", g.Rolls, g.Total)
		if verbose && g.Player != "" {
			fmt.Fprintf(w, "  Player: %s\n", g.Player)
		}
		for _, p := range g.Problems {
			fmt.Fprintf(w, "  %s\n", p)
		}
		fmt.Fprintln(w)
	}

	if result.AllVerified {
		fmt.Fprintln(w, "✓ All games verified")
		return
	}
	fmt.Fprintln(w, "✗ Journal verification failed")
}

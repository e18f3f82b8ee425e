package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/tenpin/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	GameID   string
	Kind     string // optional - filter to one entry kind
}

// TimelineEntry is one journaled occurrence of a game.
type TimelineEntry struct {
	Seq    int64  `json:"seq"`
	Kind   string `json:"kind"`
	Frame  int    `json:"frame"`
	Roll   int    `json:"roll"`
	Pins   int    `json:"pins,omitempty"`
	Mark   string `json:"mark,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	GameID   string          `json:"game_id"`
	Player   string          `json:"player,omitempty"`
	Timeline []TimelineEntry `json:"timeline"`
	Stats    TraceStats      `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Rolls     int    `json:"rolls"`
	Discarded int    `json:"discarded"`
	Events    int    `json:"events"`
	Finished  bool   `json:"finished"`
	Total     int    `json:"total,omitempty"`
	Digest    string `json:"digest,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the journaled timeline of a game",
		Long: `Show everything journaled for one game in tick order.

The timeline merges the game start, every recorded roll and every other
event (discarded throws, reracks, game over). Stats summarize the game
and, once it is finished, its stored total and scoreboard digest.

Examples:
  tenpin trace --db ./lane.db --game game-1
  tenpin trace --db ./lane.db --game game-1 --kind roll_discarded
  tenpin trace --db ./lane.db --game game-1 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.GameID, "game", "", "game id to trace (required)")
	_ = cmd.MarkFlagRequired("game")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only show entries of this kind")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
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

	result, err := buildTrace(ctx, st, opts.GameID)
	if err != nil {
		return commandError(out, CodeJournal, "failed to read game", err)
	}
	if opts.Kind != "" {
		result.Timeline = filterTimeline(result.Timeline, opts.Kind)
	}

	return out.Success(result, func(w io.Writer) { renderTrace(w, result, opts.Verbose) })
}

// buildTrace reads a game's journal into a single seq-ordered timeline.
func buildTrace(ctx context.Context, st *store.Store, gameID string) (TraceResult, error) {
	game, err := st.ReadGame(ctx, gameID)
	if err != nil {
		return TraceResult{}, err
	}
	rolls, err := st.ReadRolls(ctx, gameID)
	if err != nil {
		return TraceResult{}, err
	}
	events, err := st.ReadEvents(ctx, gameID)
	if err != nil {
		return TraceResult{}, err
	}

	result := TraceResult{
		GameID:   game.ID,
		Player:   game.Player,
		Timeline: make([]TimelineEntry, 0, 1+len(rolls)+len(events)),
	}
	result.Timeline = append(result.Timeline, TimelineEntry{Seq: game.StartedSeq, Kind: "game_started", Detail: game.Player})
	for _, r := range rolls {
		result.Timeline = append(result.Timeline, TimelineEntry{
			Seq:   r.Seq,
			Kind:  "roll_recorded",
			Frame: r.Frame,
			Roll:  r.Roll,
			Pins:  r.Pins,
			Mark:  r.Mark,
		})
	}
	for _, e := range events {
		if e.Kind == "roll_discarded" {
			result.Stats.Discarded++
		}
		result.Timeline = append(result.Timeline, TimelineEntry{
			Seq:    e.Seq,
			Kind:   e.Kind,
			Frame:  e.Frame,
			Roll:   e.Roll,
			Detail: e.Detail,
		})
	}
	// Within a tick the start comes first, then the roll, then what it caused.
	sort.SliceStable(result.Timeline, func(i, j int) bool {
		return result.Timeline[i].Seq < result.Timeline[j].Seq
	})

	result.Stats.Rolls = len(rolls)
	result.Stats.Events = len(events)

	res, err := st.ReadResult(ctx, gameID)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return TraceResult{}, err
	default:
		result.Stats.Finished = true
		result.Stats.Total = res.Total
		result.Stats.Digest = res.Digest
	}
	return result, nil
}

func filterTimeline(timeline []TimelineEntry, kind string) []TimelineEntry {
	out := []TimelineEntry{}
	for _, e := range timeline {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func renderTrace(w io.Writer, result TraceResult, verbose bool) {
	fmt.Fprintf(w, "Trace for Game: %s\n", result.GameID)
	if result.Player != "" {
		fmt.Fprintf(w, "Player: %s\n", result.Player)
	}
	status := "In progress"
	if result.Stats.Finished {
		status = fmt.Sprintf("Finished (%d)", result.Stats.Total)
	}
	fmt.Fprintf(w, "Status: %s\n", status)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no entries)")
	}
	for _, e := range result.Timeline {
		fmt.Fprintf(w, "  %s\n", formatTimelineEntry(e))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Rolls:     %d\n", result.Stats.Rolls)
	fmt.Fprintf(w, "  Discarded: %d\n", result.Stats.Discarded)
	fmt.Fprintf(w, "  Events:    %d\n", result.Stats.Events)
	if verbose && result.Stats.Digest != "" {
		fmt.Fprintf(w, "  Digest:    %s\n", truncateID(result.Stats.Digest))
	}
}

func formatTimelineEntry(e TimelineEntry) string {
	switch e.Kind {
	case "roll_recorded":
		return fmt.Sprintf("[%d] frame %d roll %d: %s (%d)", e.Seq, e.Frame+1, e.Roll+1, e.Mark, e.Pins)
	case "roll_discarded":
		return fmt.Sprintf("[%d] frame %d roll %d: discarded", e.Seq, e.Frame+1, e.Roll+1)
	}
	if e.Detail != "" {
		return fmt.Sprintf("[%d] %s %s", e.Seq, e.Kind, e.Detail)
	}
	return fmt.Sprintf("[%d] %s", e.Seq, e.Kind)
}

// truncateID shortens a long id or digest for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}

package store

import (
	"context"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Game is a started session.
type Game struct {
	ID         string
	Player     string
	StartedSeq int64
}

// Roll is one recorded roll.
type Roll struct {
	GameID string
	Frame  int
	Roll   int
	Pins   int
	// Mark is the scoreboard symbol: "X", "/" or a digit.
	Mark string
	Seq  int64
}

// Event is any other journaled occurrence. GameID is empty for freeplay.
type Event struct {
	ID     int64
	GameID string
	Seq    int64
	Kind   string
	Frame  int
	Roll   int
	Detail string
}

// Result is a finished game's canonical scoreboard.
type Result struct {
	GameID      string
	Seq         int64
	Total       int
	Board       []byte
	Digest      string
	RollsDigest string
}

// WriteGame inserts a game. Player names are stored NFC-normalized so the
// same name typed on different keyboards compares equal.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) WriteGame(ctx context.Context, g Game) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO games (id, player, started_seq)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, g.ID, norm.NFC.String(g.Player), g.StartedSeq)
	if err != nil {
		return fmt.Errorf("write game %s: %w", g.ID, err)
	}
	return nil
}

// WriteRoll inserts a roll. The game must exist.
// A second write for the same (game, frame, roll) is silently ignored.
func (s *Store) WriteRoll(ctx context.Context, r Roll) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rolls (game_id, frame, roll, pins, mark, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, r.GameID, r.Frame, r.Roll, r.Pins, r.Mark, r.Seq)
	if err != nil {
		return fmt.Errorf("write roll %s/%d/%d: %w", r.GameID, r.Frame, r.Roll, err)
	}
	return nil
}

// WriteEvent appends an event.
func (s *Store) WriteEvent(ctx context.Context, e Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (game_id, seq, kind, frame, roll, detail)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.GameID, e.Seq, e.Kind, e.Frame, e.Roll, e.Detail)
	if err != nil {
		return fmt.Errorf("write event %s: %w", e.Kind, err)
	}
	return nil
}

// WriteResult stores a finished game's scoreboard. The first result wins.
func (s *Store) WriteResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results (game_id, seq, total, board, digest, rolls_digest)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id) DO NOTHING
	`, r.GameID, r.Seq, r.Total, string(r.Board), r.Digest, r.RollsDigest)
	if err != nil {
		return fmt.Errorf("write result %s: %w", r.GameID, err)
	}
	return nil
}

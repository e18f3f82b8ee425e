package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ListGames returns every game ordered by start tick, then id.
// Returns an empty slice (not nil) for an empty journal.
func (s *Store) ListGames(ctx context.Context) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, player, started_seq
		FROM games
		ORDER BY started_seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	games := []Game{}
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.Player, &g.StartedSeq); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return games, nil
}

// ReadGame returns one game, or ErrNotFound.
func (s *Store) ReadGame(ctx context.Context, id string) (Game, error) {
	var g Game
	err := s.db.QueryRowContext(ctx, `
		SELECT id, player, started_seq FROM games WHERE id = ?
	`, id).Scan(&g.ID, &g.Player, &g.StartedSeq)
	if errors.Is(err, sql.ErrNoRows) {
		return Game{}, fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Game{}, fmt.Errorf("read game %s: %w", id, err)
	}
	return g, nil
}

// ReadRolls returns a game's rolls in play order.
func (s *Store) ReadRolls(ctx context.Context, gameID string) ([]Roll, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_id, frame, roll, pins, mark, seq
		FROM rolls
		WHERE game_id = ?
		ORDER BY frame ASC, roll ASC
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query rolls: %w", err)
	}
	defer rows.Close()

	rolls := []Roll{}
	for rows.Next() {
		var r Roll
		if err := rows.Scan(&r.GameID, &r.Frame, &r.Roll, &r.Pins, &r.Mark, &r.Seq); err != nil {
			return nil, fmt.Errorf("scan roll: %w", err)
		}
		rolls = append(rolls, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rolls: %w", err)
	}
	return rolls, nil
}

// ReadEvents returns a game's events ordered by seq, then insertion order.
func (s *Store) ReadEvents(ctx context.Context, gameID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, game_id, seq, kind, frame, roll, detail
		FROM events
		WHERE game_id = ?
		ORDER BY seq ASC, id ASC
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.GameID, &e.Seq, &e.Kind, &e.Frame, &e.Roll, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// ReadResult returns a finished game's result, or ErrNotFound while the game
// is unfinished.
func (s *Store) ReadResult(ctx context.Context, gameID string) (Result, error) {
	var (
		r     Result
		board string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT game_id, seq, total, board, digest, rolls_digest
		FROM results
		WHERE game_id = ?
	`, gameID).Scan(&r.GameID, &r.Seq, &r.Total, &board, &r.Digest, &r.RollsDigest)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, fmt.Errorf("result %s: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return Result{}, fmt.Errorf("read result %s: %w", gameID, err)
	}
	r.Board = []byte(board)
	return r, nil
}

// Query runs a read-only query against the journal. The harness uses it to
// check journaled tables directly.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

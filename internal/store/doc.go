// Package store provides the SQLite-backed game journal.
//
// The journal sits outside the scoring core: the engine forwards what
// happened and the CLI reads it back for replay and tracing. It records:
//   - Games: one row per started session
//   - Rolls: every recorded roll, keyed by (game, frame, roll)
//   - Events: discards, mode changes, re-racks and game-over markers
//   - Results: the final canonical scoreboard and its digest
//
// # Ordering
//
// Every row carries the engine's logical tick number (seq), never a wall-clock
// timestamp. Queries order by seq first, then by a stable tiebreaker, so a
// journal reads back identically on every run.
//
// # Idempotency
//
// Roll and result writes use ON CONFLICT DO NOTHING, so replaying the same
// game into an existing journal is harmless.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

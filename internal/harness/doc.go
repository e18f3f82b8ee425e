// Package harness runs lane scenarios through the engine and checks the
// outcome.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: spare_then_strike
//	description: "A spare is scored once the next ball lands"
//	mode: scoring            # optional, scoring or freeplay
//	tuning: lane.yaml        # optional, relative to the scenario file
//	flow:
//	  - rolls: [7, 3]        # one scripted throw per count
//	  - notation: "X"        # the same, as score-sheet marks
//	  - invalid: 1           # throws that never touch the lane
//	  - idle: 10             # ticks with the ball at rest
//	  - actions: [release]   # one explicit tick
//	    knock: [0, 1]
//	    ball: { contacts: [lane, pin], speed: 6, distance: 18.4 }
//	    repeat: 3
//	assertions:
//	  - type: frames
//	    frames:
//	      - { rolls: ["7", "/"], total: 20 }
//	  - type: board
//	    expect: { total: 20, frame: 2, roll: 0 }
//	  - type: trace_count
//	    kind: roll_recorded
//	    count: 3
//	  - type: final_state
//	    table: rolls
//	    where: { frame: 1, roll: 0 }
//	    expect: { mark: "X" }
//
// A scripted throw releases the ball onto the lane, knocks down the first
// pins still standing at the deck, drops into the gutter and rests for the
// configured settle delay, so it resolves on its last tick.
//
// # Assertion Types
//
//   - trace_contains: an event, command or error of a kind (optionally at a
//     frame, roll or with a detail) was reported
//   - trace_order: kinds appear in order
//   - trace_count: a kind appears exactly N times
//   - board: final scoreboard fields (game_id, frame, roll, game_over,
//     total) and the final mode
//   - frames: per-frame roll symbols and cumulative totals
//   - final_state: a journaled row in games, rolls, events or results
//
// # Deterministic Testing
//
// Every run uses sequential game ids ("game-1", "game-2", ...), the
// engine's logical clock and tick-driven timers, and journals into a fresh
// in-memory SQLite store. Identical scenarios therefore produce identical
// traces, which RunWithGolden compares as canonical JSON.
package harness

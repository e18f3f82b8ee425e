// Package engine runs the bowling turn controller on a fixed-step tick.
//
// ARCHITECTURE:
//
// Single-Writer Tick Loop:
// Every tick is processed to completion on one goroutine. This ensures:
// - Each throw resolves on a predictable tick
// - Replaying the same input stream reproduces the same journal
// - Timers never race the wall clock
//
// Tick Processing Flow:
// 1. Clock.Next() stamps the tick
// 2. Actions queued since the last tick are prepended to the tick's own
// 3. turn.Controller.Tick() applies actions, pin samples and the ball sample
// 4. Anomalies are classified into RuntimeErrors
// 5. Events are forwarded to the Recorder, if one is configured
//
// The engine owns no game rules. Scoring lives in internal/scoring, throw
// resolution in internal/roll, pin state in internal/pins and the reset
// decisions in internal/turn.
//
// Logical Clock:
// Journal rows are stamped with the tick seq from Clock.Next().
// Wall-clock timestamps are never used for ordering.
package engine

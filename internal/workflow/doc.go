// Package workflow drives a presentation through the conversion pipeline:
// parsing, script generation, voice synthesis, and rendering.
//
// The orchestrator owns a single evaluation goroutine that wakes on every
// state-store commit, decides which stage (if any) is due, and runs it to
// completion before re-evaluating. Stage scheduling is guarded three ways:
// the store must be at the stage's trigger point, the stage's inputs must be
// present, and the stage must not have already been attempted at the current
// retry generation. The retry fence means a failed stage stays parked until
// Retry bumps the generation, and a cancelled conversion can never be
// resurrected by a stale in-flight response.
//
// Completed stage outcomes are recorded in the store's result ledger and
// mirrored to the checkpoint database. On restart the orchestrator reseeds
// the store from the newest checkpoint and backfills artifact payloads from
// the backend, so finished stages are skipped rather than re-run.
package workflow

// Package project defines the conversion data model and the in-memory state
// store that drives the pipeline.
//
// A conversion moves through the stages upload → parsing → scripting →
// voice-synthesis → rendering → completed. The Store is the single mutable
// shared resource: every mutation goes through a setter that commits one
// atomic state update and notifies subscribers. Coarse display progress is
// derived from the stage alone; per-stage outcomes are memoized in
// StageResults so a resumed conversion never re-invokes a completed stage.
//
// Treat this package as the source of truth for stage semantics; the
// workflow orchestrator, checkpoint store, and proxy layer all consume the
// enums and records defined here.
package project

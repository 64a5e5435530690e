// Package main hosts the vlooo CLI entrypoint and command graph.
//
// The Cobra-based command tree drives conversions end to end: convert runs
// the stage orchestrator against the backend, status and cancel operate on
// existing projects, voices lists the synthesis catalog, and config
// scaffolds and inspects configuration. Configuration resolution and logging
// setup are centralized in the command context so subcommands stay small.
package main

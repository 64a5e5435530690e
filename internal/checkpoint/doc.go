// Package checkpoint persists the durable subset of conversion state in
// SQLite so an interrupted session can resume.
//
// Only whitelisted scalar fields survive a restart: the project identifier,
// stage, display progress, error, loading flag, uploaded-file descriptor,
// and the per-stage result ledger (status, error, completion time). Bulky
// artifacts — slides, scripts, audio URLs — are deliberately excluded to
// bound storage size; they are always reconstituted from the backend
// checkpoint through hydration, never assumed present locally.
package checkpoint

package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"vlooo/internal/config"
	"vlooo/internal/project"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkpoints (
    project_id    TEXT PRIMARY KEY,
    stage         TEXT NOT NULL,
    progress      INTEGER NOT NULL DEFAULT 0,
    error_message TEXT,
    loading       INTEGER NOT NULL DEFAULT 0,
    file_name     TEXT,
    file_size     INTEGER NOT NULL DEFAULT 0,
    voice_id      TEXT,
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS stage_results (
    project_id    TEXT NOT NULL,
    stage         TEXT NOT NULL,
    status        TEXT NOT NULL,
    error_message TEXT,
    completed_at  TEXT,
    PRIMARY KEY (project_id, stage)
);
`

// Store manages checkpoint persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the checkpoint database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "vlooo.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Save upserts the checkpoint row for a project.
func (s *Store) Save(ctx context.Context, cp Checkpoint) error {
	if cp.ProjectID == "" {
		return errors.New("checkpoint requires a project id")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO checkpoints (
            project_id, stage, progress, error_message, loading,
            file_name, file_size, voice_id, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(project_id) DO UPDATE SET
            stage = excluded.stage,
            progress = excluded.progress,
            error_message = excluded.error_message,
            loading = excluded.loading,
            file_name = excluded.file_name,
            file_size = excluded.file_size,
            voice_id = excluded.voice_id,
            updated_at = excluded.updated_at`,
		cp.ProjectID,
		string(cp.Stage),
		cp.Progress,
		nullableString(cp.Error),
		boolToInt(cp.Loading),
		nullableString(cp.FileName),
		cp.FileSize,
		nullableString(cp.VoiceID),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// SaveStageResult records a stage outcome in the ledger. Artifact payloads
// are never persisted; only the status columns survive a restart.
func (s *Store) SaveStageResult(ctx context.Context, projectID string, stage project.Stage, result project.StageResult) error {
	if projectID == "" {
		return errors.New("stage result requires a project id")
	}
	var completedAt any
	if !result.CompletedAt.IsZero() {
		completedAt = result.CompletedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO stage_results (project_id, stage, status, error_message, completed_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(project_id, stage) DO UPDATE SET
            status = excluded.status,
            error_message = excluded.error_message,
            completed_at = excluded.completed_at`,
		projectID,
		string(stage),
		string(result.Status),
		nullableString(result.Error),
		completedAt,
	)
	if err != nil {
		return fmt.Errorf("save stage result: %w", err)
	}
	return nil
}

// Load fetches the checkpoint for a project, or nil when absent.
func (s *Store) Load(ctx context.Context, projectID string) (*Checkpoint, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+checkpointColumns+` FROM checkpoints WHERE project_id = ?`,
		projectID,
	)
	cp, err := scanCheckpoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	return cp, nil
}

// LoadLatest returns the most recently updated checkpoint, or nil when the
// store is empty. Used on startup to offer resume.
func (s *Store) LoadLatest(ctx context.Context) (*Checkpoint, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+checkpointColumns+` FROM checkpoints ORDER BY updated_at DESC LIMIT 1`,
	)
	cp, err := scanCheckpoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest checkpoint: %w", err)
	}
	return cp, nil
}

// StageResults returns the persisted ledger for a project keyed by stage.
func (s *Store) StageResults(ctx context.Context, projectID string) (map[project.Stage]project.StageResult, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT stage, status, error_message, completed_at FROM stage_results WHERE project_id = ?`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("query stage results: %w", err)
	}
	defer rows.Close()

	results := make(map[project.Stage]project.StageResult)
	for rows.Next() {
		var (
			stageStr     string
			statusStr    string
			errorMessage sql.NullString
			completedRaw sql.NullString
		)
		if err := rows.Scan(&stageStr, &statusStr, &errorMessage, &completedRaw); err != nil {
			return nil, err
		}
		stage, ok := project.ParseStage(stageStr)
		if !ok {
			continue
		}
		result := project.StageResult{
			Status: project.ResultStatus(statusStr),
			Error:  errorMessage.String,
		}
		if completedRaw.Valid {
			if ts, err := time.Parse(time.RFC3339Nano, completedRaw.String); err == nil {
				result.CompletedAt = ts
			}
		}
		results[stage] = result
	}
	return results, rows.Err()
}

// Delete removes the checkpoint and ledger rows for a project.
func (s *Store) Delete(ctx context.Context, projectID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM stage_results WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("delete stage results: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

// Clear removes all checkpoints.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM stage_results`); err != nil {
		return fmt.Errorf("clear stage results: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints`); err != nil {
		return fmt.Errorf("clear checkpoints: %w", err)
	}
	return nil
}

const checkpointColumns = "project_id, stage, progress, error_message, loading, file_name, file_size, voice_id, created_at, updated_at"

func scanCheckpoint(scanner interface{ Scan(dest ...any) error }) (*Checkpoint, error) {
	var (
		projectID    string
		stageStr     string
		progress     int
		errorMessage sql.NullString
		loading      int
		fileName     sql.NullString
		fileSize     sql.NullInt64
		voiceID      sql.NullString
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(
		&projectID,
		&stageStr,
		&progress,
		&errorMessage,
		&loading,
		&fileName,
		&fileSize,
		&voiceID,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	cp := &Checkpoint{
		ProjectID: projectID,
		Stage:     project.Stage(stageStr),
		Progress:  progress,
		Error:     errorMessage.String,
		Loading:   loading != 0,
		FileName:  fileName.String,
		FileSize:  fileSize.Int64,
		VoiceID:   voiceID.String,
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		cp.CreatedAt = created
	}
	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		cp.UpdatedAt = updated
	}
	return cp, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

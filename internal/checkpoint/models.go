package checkpoint

import (
	"time"

	"vlooo/internal/project"
)

// Checkpoint is the durable whitelist of conversion state for one project.
type Checkpoint struct {
	ProjectID string
	Stage     project.Stage
	Progress  int
	Error     string
	Loading   bool
	FileName  string
	FileSize  int64
	VoiceID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FromSnapshot extracts the persisted subset from a state snapshot.
func FromSnapshot(snap project.Snapshot) Checkpoint {
	cp := Checkpoint{
		ProjectID: snap.ProjectID,
		Stage:     snap.Stage,
		Progress:  snap.Progress,
		Error:     snap.Error,
		Loading:   snap.Loading,
		VoiceID:   snap.VoiceID,
	}
	if snap.UploadedFile != nil {
		cp.FileName = snap.UploadedFile.Name
		cp.FileSize = snap.UploadedFile.Size
	}
	return cp
}

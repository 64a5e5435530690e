package workflow

import (
	"context"
	"time"

	"vlooo/internal/gateway"
	"vlooo/internal/logging"
	"vlooo/internal/project"
)

// maybeHydrate backfills missing artifacts from the backend checkpoint. It
// runs once per project, with one exception: a project observed at rendering
// is re-checked so a video finished while we were away flips the conversion
// to completed. Hydration failures are logged and retried on a later pass.
func (o *Orchestrator) maybeHydrate(ctx context.Context) {
	snap := o.store.Snapshot()
	if snap.ProjectID == "" {
		return
	}
	needsSlides := len(snap.Slides) == 0
	needsScripts := len(snap.Scripts) == 0
	needsAudio := len(snap.Audio) == 0
	if !needsSlides && !needsScripts && !needsAudio {
		return
	}

	o.mu.Lock()
	if o.hydrating || (o.hydrated == snap.ProjectID && snap.Stage != project.StageRendering) {
		o.mu.Unlock()
		return
	}
	o.hydrating = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.hydrating = false
		o.mu.Unlock()
	}()

	status, err := o.gateway.ProjectStatus(ctx, snap.ProjectID)
	if err != nil {
		o.logger.Debug("hydration fetch failed",
			logging.Error(err),
			logging.String(logging.FieldProjectID, snap.ProjectID),
		)
		return
	}

	if needsSlides {
		if result, ok := statusResult(status, project.StageParsing); ok && len(result.Data.Slides) > 0 {
			o.store.SetSlides(result.Data.Slides)
			o.store.SetStageResult(project.StageParsing, result)
		}
	}
	if needsScripts {
		if result, ok := statusResult(status, project.StageScripting); ok && len(result.Data.Scripts) > 0 {
			o.store.SetScripts(result.Data.Scripts)
			o.store.SetStageResult(project.StageScripting, result)
		}
	}
	if needsAudio {
		if result, ok := statusResult(status, project.StageVoiceSynthesis); ok && len(result.Data.Audio) > 0 {
			o.store.SetAudio(result.Data.Audio)
			o.store.SetStageResult(project.StageVoiceSynthesis, result)
		}
	}
	if result, ok := statusResult(status, project.StageRendering); ok && result.Data.VideoURL != "" {
		o.store.SetVideoURL(result.Data.VideoURL)
		o.store.SetStageResult(project.StageRendering, result)
		o.store.SetStage(project.StageCompleted)
	}

	o.mu.Lock()
	o.hydrated = snap.ProjectID
	o.mu.Unlock()

	o.logger.Info("hydrated conversion state from backend",
		logging.String(logging.FieldProjectID, snap.ProjectID),
		logging.String(logging.FieldEventType, "hydrate"),
	)
}

// statusResult extracts a per-stage checkpoint entry carrying data. A result
// with a missing status string is treated as completed, matching the backend
// contract for legacy checkpoints.
func statusResult(status *gateway.Status, stage project.Stage) (project.StageResult, bool) {
	entry, ok := status.Results[string(stage)]
	if !ok || entry.Data == nil {
		return project.StageResult{}, false
	}
	resultStatus := project.ResultStatus(entry.Status)
	if resultStatus == "" {
		resultStatus = project.ResultCompleted
	}
	result := project.StageResult{
		Status: resultStatus,
		Data:   entry.Data,
		Error:  entry.Error,
	}
	if entry.CompletedAt != "" {
		if ts, err := time.Parse(time.RFC3339, entry.CompletedAt); err == nil {
			result.CompletedAt = ts
		}
	}
	return result, true
}

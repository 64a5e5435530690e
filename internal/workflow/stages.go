package workflow

import (
	"context"

	"vlooo/internal/gateway"
	"vlooo/internal/project"
)

// pipelineStage binds one work stage to its scheduling trigger, input guard,
// backend call, and artifact application. The table in pipelineStages is the
// single place the stage order and wiring live.
type pipelineStage struct {
	stage   project.Stage
	trigger project.Stage
	next    project.Stage
	ready   func(*Orchestrator, project.Snapshot) bool
	call    func(context.Context, *Orchestrator, project.Snapshot) (*project.StageData, error)
	apply   func(*project.Store, *project.StageData)
	// rollback, when set, moves the store back after a failed attempt so the
	// trigger condition holds for the next retry.
	rollback project.Stage
}

func pipelineStages() []pipelineStage {
	return []pipelineStage{
		{
			stage:   project.StageParsing,
			trigger: project.StageUpload,
			next:    project.StageScripting,
			ready: func(o *Orchestrator, _ project.Snapshot) bool {
				return o.source() != nil
			},
			call:     runParsing,
			apply:    applyParsing,
			rollback: project.StageUpload,
		},
		{
			stage:   project.StageScripting,
			trigger: project.StageScripting,
			next:    project.StageVoiceSynthesis,
			ready: func(_ *Orchestrator, snap project.Snapshot) bool {
				return snap.ProjectID != "" && len(snap.Slides) > 0
			},
			call:  runScripting,
			apply: applyScripting,
		},
		{
			stage:   project.StageVoiceSynthesis,
			trigger: project.StageVoiceSynthesis,
			next:    project.StageRendering,
			ready: func(_ *Orchestrator, snap project.Snapshot) bool {
				return snap.ProjectID != "" && len(snap.Scripts) > 0
			},
			call:  runSynthesis,
			apply: applySynthesis,
		},
		{
			stage:   project.StageRendering,
			trigger: project.StageRendering,
			next:    project.StageCompleted,
			ready: func(_ *Orchestrator, snap project.Snapshot) bool {
				return snap.ProjectID != "" && len(snap.Slides) > 0 && len(snap.Audio) > 0
			},
			call:  runRendering,
			apply: applyRendering,
		},
	}
}

func runParsing(ctx context.Context, o *Orchestrator, _ project.Snapshot) (*project.StageData, error) {
	src := o.source()
	reader, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	resp, err := o.gateway.ParsePPT(ctx, gateway.UploadSource{
		Name:     src.Name,
		Size:     src.Size,
		MIMEType: src.MIMEType,
		Reader:   reader,
	}, func(p gateway.UploadProgress) {
		o.store.SetProgress(project.ParsingProgress(p.Percentage))
	})
	if err != nil {
		return nil, err
	}
	return &project.StageData{ProjectID: resp.ProjectID, Slides: resp.Slides}, nil
}

func applyParsing(store *project.Store, data *project.StageData) {
	if data.ProjectID != "" {
		store.SetProjectID(data.ProjectID)
	}
	store.SetSlides(data.Slides)
}

func runScripting(ctx context.Context, o *Orchestrator, snap project.Snapshot) (*project.StageData, error) {
	resp, err := o.gateway.GenerateScript(ctx, snap.ProjectID, snap.Slides, gateway.ScriptOptions{
		ToneOfVoice: o.cfg.Conversion.ToneOfVoice,
		Language:    o.cfg.Conversion.Language,
	})
	if err != nil {
		return nil, err
	}
	return &project.StageData{ProjectID: snap.ProjectID, Scripts: resp.Scripts}, nil
}

func applyScripting(store *project.Store, data *project.StageData) {
	store.SetScripts(data.Scripts)
}

func runSynthesis(ctx context.Context, o *Orchestrator, snap project.Snapshot) (*project.StageData, error) {
	voiceID := snap.VoiceID
	if voiceID == "" {
		voiceID = o.cfg.Conversion.VoiceID
	}
	resp, err := o.gateway.GenerateTTS(ctx, snap.ProjectID, snap.Scripts, gateway.TTSOptions{
		VoiceID: voiceID,
		Speed:   o.cfg.Conversion.Speed,
	})
	if err != nil {
		return nil, err
	}
	return &project.StageData{ProjectID: snap.ProjectID, Audio: resp.Audio}, nil
}

func applySynthesis(store *project.Store, data *project.StageData) {
	store.SetAudio(data.Audio)
}

func runRendering(ctx context.Context, o *Orchestrator, snap project.Snapshot) (*project.StageData, error) {
	resp, err := o.gateway.RenderVideo(ctx, snap.ProjectID, snap.Slides, snap.Audio, gateway.RenderOptions{
		Resolution:   o.cfg.Conversion.Resolution,
		FPS:          o.cfg.Conversion.FPS,
		OutputFormat: o.cfg.Conversion.OutputFormat,
	})
	if err != nil {
		return nil, err
	}
	return &project.StageData{ProjectID: snap.ProjectID, VideoURL: resp.VideoURL}, nil
}

func applyRendering(store *project.Store, data *project.StageData) {
	store.SetVideoURL(data.VideoURL)
}

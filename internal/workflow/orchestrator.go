package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"vlooo/internal/checkpoint"
	"vlooo/internal/config"
	"vlooo/internal/logging"
	"vlooo/internal/project"
)

const (
	defaultCancelTimeout = 2 * time.Second
	defaultPollInterval  = 3 * time.Second
)

// Orchestrator schedules pipeline stages against the state store. All stage
// execution happens on one evaluation goroutine; Retry and Cancel may be
// called concurrently from any goroutine.
type Orchestrator struct {
	cfg         *config.Config
	store       *project.Store
	gateway     Gateway
	checkpoints *checkpoint.Store
	logger      *slog.Logger
	stages      []pipelineStage

	cancelTimeout time.Duration

	mu          sync.Mutex
	running     bool
	stop        context.CancelFunc
	wg          sync.WaitGroup
	src         *Source
	retryCount  int
	lastAttempt map[project.Stage]int
	generation  uint64
	hydrating   bool
	hydrated    string
}

// Option configures optional orchestrator behavior.
type Option func(*Orchestrator)

// WithCheckpoints enables durable conversion checkpoints.
func WithCheckpoints(store *checkpoint.Store) Option {
	return func(o *Orchestrator) {
		o.checkpoints = store
	}
}

// NewOrchestrator constructs an orchestrator bound to the given store and
// backend gateway.
func NewOrchestrator(cfg *config.Config, store *project.Store, gw Gateway, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	cancelTimeout := defaultCancelTimeout
	if cfg != nil && cfg.Workflow.CancelTimeoutSeconds > 0 {
		cancelTimeout = time.Duration(cfg.Workflow.CancelTimeoutSeconds) * time.Second
	}
	o := &Orchestrator{
		cfg:           cfg,
		store:         store,
		gateway:       gw,
		logger:        logger.With(logging.String(logging.FieldComponent, "workflow")),
		stages:        pipelineStages(),
		cancelTimeout: cancelTimeout,
		lastAttempt:   make(map[project.Stage]int),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start launches the evaluation loop and the status poller.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return errors.New("orchestrator already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	o.stop = cancel
	o.running = true
	o.wg.Add(2)
	o.mu.Unlock()

	go o.runLoop(runCtx)

	poll := defaultPollInterval
	if o.cfg != nil && o.cfg.Workflow.StatusPollInterval > 0 {
		poll = time.Duration(o.cfg.Workflow.StatusPollInterval) * time.Second
	}
	p := &poller{
		store:    o.store,
		gateway:  o.gateway,
		interval: poll,
		logger:   o.logger.With(logging.String(logging.FieldComponent, "poller")),
	}
	go func() {
		defer o.wg.Done()
		p.run(runCtx)
	}()

	return nil
}

// Stop terminates background processing and waits for in-flight work.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	stop := o.stop
	o.running = false
	o.stop = nil
	o.mu.Unlock()

	stop()
	o.wg.Wait()
}

// Begin registers the presentation to convert. The parsing stage starts on
// the next evaluation pass. Selecting a file while a conversion is active
// supersedes it: local state resets and any in-flight stage response is
// discarded by the generation bump.
func (o *Orchestrator) Begin(src Source) {
	snap := o.store.Snapshot()

	o.mu.Lock()
	supersede := o.src != nil || snap.ProjectID != ""
	if supersede {
		o.generation++
		o.retryCount = 0
		o.lastAttempt = make(map[project.Stage]int)
		o.hydrated = ""
	}
	o.src = &src
	o.mu.Unlock()

	if supersede {
		o.store.Reset()
		o.logger.Info("superseding active conversion",
			logging.String(logging.FieldProjectID, snap.ProjectID),
			logging.String(logging.FieldEventType, "supersede"),
		)
	}
	o.store.SetUploadedFile(project.UploadedFile{Name: src.Name, Size: src.Size})
}

// Retry bumps the retry generation and clears the parked error, re-arming
// the failed stage's scheduling fence.
func (o *Orchestrator) Retry() {
	o.mu.Lock()
	o.retryCount++
	count := o.retryCount
	o.mu.Unlock()
	o.logger.Info("retry requested",
		logging.Int("retry_count", count),
		logging.String(logging.FieldEventType, "retry"),
	)
	o.store.ClearError()
}

// Cancel abandons the conversion: the backend checkpoint delete is attempted
// within a bounded budget, then local state is reset unconditionally. Any
// in-flight stage response is discarded by the generation bump.
func (o *Orchestrator) Cancel(ctx context.Context) {
	snap := o.store.Snapshot()

	o.mu.Lock()
	o.generation++
	o.src = nil
	o.retryCount = 0
	o.lastAttempt = make(map[project.Stage]int)
	o.hydrated = ""
	o.mu.Unlock()

	if snap.ProjectID != "" {
		deleteCtx, cancel := context.WithTimeout(ctx, o.cancelTimeout)
		defer cancel()
		if err := o.gateway.DeleteProject(deleteCtx, snap.ProjectID); err != nil {
			o.logger.Warn("backend cancel failed; resetting locally anyway",
				logging.Error(err),
				logging.String(logging.FieldProjectID, snap.ProjectID),
				logging.String(logging.FieldEventType, "cancel_delete_failed"),
			)
		}
	}

	o.store.Reset()

	if o.checkpoints != nil && snap.ProjectID != "" {
		if err := o.checkpoints.Delete(context.WithoutCancel(ctx), snap.ProjectID); err != nil {
			o.logger.Warn("checkpoint delete failed", logging.Error(err))
		}
	}
	o.logger.Info("conversion cancelled",
		logging.String(logging.FieldProjectID, snap.ProjectID),
		logging.String(logging.FieldEventType, "cancel"),
	)
}

// Resume seeds the store from the newest durable checkpoint. Artifact
// payloads are not persisted locally; the hydrator backfills them from the
// backend once the loop starts. Call before Start. Returns false when there
// is nothing to resume.
func (o *Orchestrator) Resume(ctx context.Context) (bool, error) {
	if o.checkpoints == nil {
		return false, nil
	}
	cp, err := o.checkpoints.LoadLatest(ctx)
	if err != nil {
		return false, err
	}
	if cp == nil || cp.Stage == project.StageCompleted {
		return false, nil
	}

	o.store.SetProjectID(cp.ProjectID)
	if cp.VoiceID != "" {
		o.store.SetVoiceID(cp.VoiceID)
	}
	if cp.FileName != "" {
		o.store.SetUploadedFile(project.UploadedFile{Name: cp.FileName, Size: cp.FileSize})
	}
	results, err := o.checkpoints.StageResults(ctx, cp.ProjectID)
	if err != nil {
		o.logger.Warn("loading stage results failed", logging.Error(err))
	}
	for stage, result := range results {
		o.store.SetStageResult(stage, result)
	}
	if cp.Error != "" {
		// A checkpointed failure restarts as a fresh attempt: the fence is
		// re-armed and the stale error stays out of the store, where it
		// would read as the active stage having failed.
		o.mu.Lock()
		o.retryCount++
		o.mu.Unlock()
		o.logger.Info("resuming past a failed stage",
			logging.String(logging.FieldProjectID, cp.ProjectID),
			logging.String("previous_error", cp.Error),
			logging.String(logging.FieldEventType, "resume_retry"),
		)
	}
	// A crash mid-parsing leaves no way to restart without the source file,
	// so parsing rolls back to upload. Other stages resume in place.
	stage := cp.Stage
	if stage == project.StageParsing {
		stage = project.StageUpload
	}
	o.store.SetStage(stage)

	o.logger.Info("resuming conversion from checkpoint",
		logging.String(logging.FieldProjectID, cp.ProjectID),
		logging.String(logging.FieldStage, string(stage)),
		logging.String(logging.FieldEventType, "resume"),
	)
	return true, nil
}

func (o *Orchestrator) runLoop(ctx context.Context) {
	defer o.wg.Done()
	changes, unsubscribe := o.store.Subscribe()
	defer unsubscribe()

	o.evaluate(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			o.evaluate(ctx)
		}
	}
}

// evaluate runs at most one stage to completion. Store commits made by the
// stage re-arm the subscription, so a completed stage immediately schedules
// its successor on the next pass.
func (o *Orchestrator) evaluate(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	o.maybeHydrate(ctx)

	snap := o.store.Snapshot()
	stage, ok := o.stageForTrigger(snap.Stage)
	if !ok {
		return
	}
	if snap.Loading || !stage.ready(o, snap) {
		return
	}
	if !o.claimAttempt(stage.stage) {
		return
	}
	// The new attempt owns the error slot from here on.
	if snap.Error != "" {
		o.store.ClearError()
	}

	logger := o.logger.With(
		logging.String(logging.FieldStage, string(stage.stage)),
		logging.String(logging.FieldProjectID, snap.ProjectID),
	)

	if result, ok := snap.StageResult(stage.stage); ok && result.Reusable() {
		logger.Info("reusing recorded stage result",
			logging.String(logging.FieldEventType, "stage_cached"),
			logging.String("completed_at", result.CompletedAt.Format(time.RFC3339)),
		)
		stage.apply(o.store, result.Data)
		o.store.SetStage(stage.next)
		o.persist(ctx)
		return
	}

	generation := o.currentGeneration()
	start := time.Now()
	logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	o.store.SetLoading(true)
	if stage.trigger != stage.stage {
		o.store.SetStage(stage.stage)
	}

	data, err := stage.call(ctx, o, snap)

	if o.currentGeneration() != generation {
		logger.Info("discarding stale stage response",
			logging.String(logging.FieldEventType, "stage_stale"),
		)
		return
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Error("stage failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Duration("stage_duration", time.Since(start)),
		)
		o.store.SetError(err.Error())
		o.store.SetStageResult(stage.stage, project.FailedResult(err.Error()))
		if stage.rollback != "" {
			o.store.SetStage(stage.rollback)
		}
		o.store.SetLoading(false)
		o.persistStageResult(ctx, stage.stage)
		o.persist(ctx)
		return
	}

	stage.apply(o.store, data)
	o.store.SetStageResult(stage.stage, project.CompletedResult(data))
	o.store.SetStage(stage.next)
	o.store.SetLoading(false)
	o.persistStageResult(ctx, stage.stage)
	o.persist(ctx)

	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_stage", string(stage.next)),
		logging.Duration("stage_duration", time.Since(start)),
	)
}

func (o *Orchestrator) stageForTrigger(trigger project.Stage) (pipelineStage, bool) {
	for _, stage := range o.stages {
		if stage.trigger == trigger {
			return stage, true
		}
	}
	return pipelineStage{}, false
}

// claimAttempt enforces the retry fence: each stage runs at most once per
// retry generation.
func (o *Orchestrator) claimAttempt(stage project.Stage) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if last, ok := o.lastAttempt[stage]; ok && last == o.retryCount {
		return false
	}
	o.lastAttempt[stage] = o.retryCount
	return true
}

func (o *Orchestrator) currentGeneration() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generation
}

func (o *Orchestrator) source() *Source {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.src
}

// persist mirrors the current snapshot to the checkpoint database.
// Best-effort: checkpoint failures never interrupt the pipeline.
func (o *Orchestrator) persist(ctx context.Context) {
	if o.checkpoints == nil {
		return
	}
	snap := o.store.Snapshot()
	if snap.ProjectID == "" {
		return
	}
	if err := o.checkpoints.Save(context.WithoutCancel(ctx), checkpoint.FromSnapshot(snap)); err != nil {
		o.logger.Warn("checkpoint save failed", logging.Error(err))
	}
}

func (o *Orchestrator) persistStageResult(ctx context.Context, stage project.Stage) {
	if o.checkpoints == nil {
		return
	}
	snap := o.store.Snapshot()
	if snap.ProjectID == "" {
		return
	}
	result, ok := snap.StageResult(stage)
	if !ok {
		return
	}
	if err := o.checkpoints.SaveStageResult(context.WithoutCancel(ctx), snap.ProjectID, stage, result); err != nil {
		o.logger.Warn("stage result save failed",
			logging.Error(err),
			logging.String(logging.FieldStage, string(stage)),
		)
	}
}

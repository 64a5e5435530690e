package workflow

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"vlooo/internal/config"
	"vlooo/internal/gateway"
	"vlooo/internal/logging"
	"vlooo/internal/project"
	"vlooo/internal/testsupport"
)

func newWorkflowConfig(t *testing.T) *config.Config {
	t.Helper()
	return testsupport.NewConfig(t, testsupport.WithPollInterval(1))
}

// fakeGateway scripts backend behavior per call and counts invocations.
type fakeGateway struct {
	mu sync.Mutex

	parseFn  func(context.Context) (*gateway.ParseResponse, error)
	scriptFn func(context.Context) (*gateway.ScriptResponse, error)
	ttsFn    func(context.Context) (*gateway.TTSResponse, error)
	renderFn func(context.Context) (*gateway.RenderResponse, error)
	statusFn func(context.Context, string) (*gateway.Status, error)
	deleteFn func(context.Context, string) error

	parseCalls  int
	scriptCalls int
	ttsCalls    int
	renderCalls int
	deleteCalls int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		parseFn: func(context.Context) (*gateway.ParseResponse, error) {
			return &gateway.ParseResponse{
				ProjectID: "proj-1",
				Slides: []project.Slide{
					{SlideNumber: 1, Title: "Intro", Content: "hello"},
					{SlideNumber: 2, Title: "Close", Content: "bye"},
				},
			}, nil
		},
		scriptFn: func(context.Context) (*gateway.ScriptResponse, error) {
			return &gateway.ScriptResponse{
				Scripts: []project.Script{
					{SlideNumber: 1, ScriptText: "hello narration"},
					{SlideNumber: 2, ScriptText: "bye narration"},
				},
			}, nil
		},
		ttsFn: func(context.Context) (*gateway.TTSResponse, error) {
			return &gateway.TTSResponse{
				Audio: []project.AudioTrack{
					{SlideNumber: 1, AudioURL: "https://cdn/a1.mp3"},
					{SlideNumber: 2, AudioURL: "https://cdn/a2.mp3"},
				},
			}, nil
		},
		renderFn: func(context.Context) (*gateway.RenderResponse, error) {
			return &gateway.RenderResponse{VideoURL: "https://cdn/final.mp4"}, nil
		},
		statusFn: func(context.Context, string) (*gateway.Status, error) {
			return &gateway.Status{}, nil
		},
		deleteFn: func(context.Context, string) error { return nil },
	}
}

func (f *fakeGateway) ParsePPT(ctx context.Context, file gateway.UploadSource, onProgress gateway.ProgressFunc) (*gateway.ParseResponse, error) {
	f.mu.Lock()
	f.parseCalls++
	fn := f.parseFn
	f.mu.Unlock()
	if onProgress != nil {
		onProgress(gateway.UploadProgress{Loaded: file.Size, Total: file.Size, Percentage: 100})
	}
	return fn(ctx)
}

func (f *fakeGateway) GenerateScript(ctx context.Context, projectID string, slides []project.Slide, opts gateway.ScriptOptions) (*gateway.ScriptResponse, error) {
	f.mu.Lock()
	f.scriptCalls++
	fn := f.scriptFn
	f.mu.Unlock()
	return fn(ctx)
}

func (f *fakeGateway) GenerateTTS(ctx context.Context, projectID string, scripts []project.Script, opts gateway.TTSOptions) (*gateway.TTSResponse, error) {
	f.mu.Lock()
	f.ttsCalls++
	fn := f.ttsFn
	f.mu.Unlock()
	return fn(ctx)
}

func (f *fakeGateway) RenderVideo(ctx context.Context, projectID string, slides []project.Slide, audio []project.AudioTrack, opts gateway.RenderOptions) (*gateway.RenderResponse, error) {
	f.mu.Lock()
	f.renderCalls++
	fn := f.renderFn
	f.mu.Unlock()
	return fn(ctx)
}

func (f *fakeGateway) ProjectStatus(ctx context.Context, projectID string) (*gateway.Status, error) {
	f.mu.Lock()
	fn := f.statusFn
	f.mu.Unlock()
	return fn(ctx, projectID)
}

func (f *fakeGateway) DeleteProject(ctx context.Context, projectID string) error {
	f.mu.Lock()
	f.deleteCalls++
	fn := f.deleteFn
	f.mu.Unlock()
	return fn(ctx, projectID)
}

func (f *fakeGateway) calls() (parse, script, tts, render, del int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.parseCalls, f.scriptCalls, f.ttsCalls, f.renderCalls, f.deleteCalls
}

func testSource() Source {
	content := "presentation bytes"
	return Source{
		Name:     "deck.pptx",
		Size:     int64(len(content)),
		MIMEType: "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

// waitForState blocks until the store satisfies cond or the deadline passes.
func waitForState(t *testing.T, store *project.Store, cond func(project.Snapshot) bool) project.Snapshot {
	t.Helper()
	changes, unsubscribe := store.Subscribe()
	defer unsubscribe()

	deadline := time.After(5 * time.Second)
	for {
		snap := store.Snapshot()
		if cond(snap) {
			return snap
		}
		select {
		case <-changes:
		case <-deadline:
			t.Fatalf("timed out waiting for state; stage=%s error=%q loading=%v",
				snap.Stage, snap.Error, snap.Loading)
		}
	}
}

func newTestOrchestrator(t *testing.T, gw Gateway, opts ...Option) (*Orchestrator, *project.Store) {
	t.Helper()
	cfg := newWorkflowConfig(t)
	store := project.NewStore()
	orch := NewOrchestrator(cfg, store, gw, logging.NewNop(), opts...)
	return orch, store
}

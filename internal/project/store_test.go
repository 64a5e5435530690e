package project_test

import (
	"testing"

	"vlooo/internal/project"
)

func TestSetStageRecomputesProgress(t *testing.T) {
	store := project.NewStore()
	store.SetStage(project.StageVoiceSynthesis)
	snap := store.Snapshot()
	if snap.Stage != project.StageVoiceSynthesis {
		t.Fatalf("stage = %s", snap.Stage)
	}
	if snap.Progress != 60 {
		t.Fatalf("progress = %d, want 60", snap.Progress)
	}
}

func TestResetClearsDerivedState(t *testing.T) {
	store := project.NewStore()
	store.SetProjectID("proj_1")
	store.SetStage(project.StageRendering)
	store.SetSlides([]project.Slide{{SlideID: "s1", SlideNumber: 1, Content: "intro"}})
	store.SetScripts([]project.Script{{SlideID: "s1", SlideNumber: 1, ScriptText: "hello"}})
	store.SetAudio([]project.AudioTrack{{SlideID: "s1", SlideNumber: 1, AudioURL: "https://cdn/a.mp3"}})
	store.SetError("render pipeline fault")
	store.SetStageResult(project.StageParsing, project.CompletedResult(&project.StageData{ProjectID: "proj_1"}))

	store.Reset()

	snap := store.Snapshot()
	if snap.ProjectID != "" || snap.Stage != project.StageUpload || snap.Progress != 0 {
		t.Fatalf("reset left identifiers: %+v", snap)
	}
	if snap.Slides != nil || snap.Scripts != nil || snap.Audio != nil || snap.VideoURL != "" {
		t.Fatal("reset left artifacts")
	}
	if snap.Error != "" || snap.Loading {
		t.Fatal("reset left error/loading")
	}
	if len(snap.StageResults) != 0 {
		t.Fatal("reset left stage results")
	}
}

func TestSnapshotDoesNotAliasStore(t *testing.T) {
	store := project.NewStore()
	store.SetSlides([]project.Slide{{SlideID: "s1", SlideNumber: 1}})
	snap := store.Snapshot()
	snap.Slides[0].SlideID = "mutated"
	snap.StageResults[project.StageParsing] = project.FailedResult("boom")

	fresh := store.Snapshot()
	if fresh.Slides[0].SlideID != "s1" {
		t.Fatal("snapshot aliased slide storage")
	}
	if _, ok := fresh.StageResult(project.StageParsing); ok {
		t.Fatal("snapshot aliased stage-result map")
	}
}

func TestSubscribeCoalescesNotifications(t *testing.T) {
	store := project.NewStore()
	ch, cancel := store.Subscribe()
	defer cancel()

	for i := 0; i < 5; i++ {
		store.SetProgress(i)
	}

	select {
	case <-ch:
	default:
		t.Fatal("expected a pending notification")
	}
	// All five commits coalesced into at most one buffered signal.
	select {
	case <-ch:
		t.Fatal("notifications were not coalesced")
	default:
	}
}

func TestSubscribeCancelStopsDelivery(t *testing.T) {
	store := project.NewStore()
	ch, cancel := store.Subscribe()
	cancel()
	store.SetProgress(10)
	select {
	case <-ch:
		t.Fatal("cancelled subscription still notified")
	default:
	}
}

func TestStageResultReusable(t *testing.T) {
	if (project.StageResult{Status: project.ResultCompleted}).Reusable() {
		t.Fatal("completed result without data must not be reusable")
	}
	if !project.CompletedResult(&project.StageData{}).Reusable() {
		t.Fatal("completed result with data must be reusable")
	}
	if project.FailedResult("x").Reusable() {
		t.Fatal("failed result must not be reusable")
	}
}

package project

import (
	"sync"
	"time"
)

// Snapshot is an immutable view of the conversion state at one commit.
type Snapshot struct {
	ProjectID    string
	Stage        Stage
	UploadedFile *UploadedFile
	Slides       []Slide
	Scripts      []Script
	Audio        []AudioTrack
	VideoURL     string
	VoiceID      string
	Progress     int
	Error        string
	Loading      bool
	Detailed     *DetailedProgress
	StageResults map[Stage]StageResult
}

// StageResult returns the recorded outcome for a stage, if any.
func (s Snapshot) StageResult(stage Stage) (StageResult, bool) {
	result, ok := s.StageResults[stage]
	return result, ok
}

// Store owns the mutable conversion state. Every setter commits exactly one
// state update under the lock and then notifies subscribers; observers never
// see a partially applied mutation.
type Store struct {
	mu    sync.RWMutex
	state Snapshot
	subs  map[int]chan struct{}
	next  int
}

// NewStore returns a store in the initial upload state.
func NewStore() *Store {
	return &Store{
		state: initialState(),
		subs:  make(map[int]chan struct{}),
	}
}

func initialState() Snapshot {
	return Snapshot{
		Stage:        StageUpload,
		Progress:     StageUpload.Progress(),
		StageResults: make(map[Stage]StageResult),
	}
}

// Snapshot returns a copy of the current state. Slices and the stage-result
// map are copied so callers cannot alias store internals.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (snap Snapshot) clone() Snapshot {
	out := snap
	if snap.UploadedFile != nil {
		file := *snap.UploadedFile
		out.UploadedFile = &file
	}
	if snap.Detailed != nil {
		detail := *snap.Detailed
		out.Detailed = &detail
	}
	out.Slides = append([]Slide(nil), snap.Slides...)
	out.Scripts = append([]Script(nil), snap.Scripts...)
	out.Audio = append([]AudioTrack(nil), snap.Audio...)
	out.StageResults = make(map[Stage]StageResult, len(snap.StageResults))
	for stage, result := range snap.StageResults {
		out.StageResults[stage] = result
	}
	return out
}

// Subscribe registers a coalesced change notification channel. The returned
// cancel function must be called to release the subscription.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch
	cancel := func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Store) commit(mutate func(*Snapshot)) {
	s.mu.Lock()
	mutate(&s.state)
	subs := make([]chan struct{}, 0, len(s.subs))
	for _, ch := range s.subs {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// SetProjectID records the backend-assigned project identifier.
func (s *Store) SetProjectID(id string) {
	s.commit(func(state *Snapshot) { state.ProjectID = id })
}

// SetStage moves the pipeline to a new stage and recomputes display progress
// from the stage progress table.
func (s *Store) SetStage(stage Stage) {
	s.commit(func(state *Snapshot) {
		state.Stage = stage
		state.Progress = stage.Progress()
	})
}

// SetUploadedFile records the source artifact descriptor.
func (s *Store) SetUploadedFile(file UploadedFile) {
	s.commit(func(state *Snapshot) { state.UploadedFile = &file })
}

// SetSlides stores the parsing stage's output.
func (s *Store) SetSlides(slides []Slide) {
	s.commit(func(state *Snapshot) { state.Slides = slides })
}

// SetScripts stores the scripting stage's output.
func (s *Store) SetScripts(scripts []Script) {
	s.commit(func(state *Snapshot) { state.Scripts = scripts })
}

// SetAudio stores the voice-synthesis stage's output.
func (s *Store) SetAudio(audio []AudioTrack) {
	s.commit(func(state *Snapshot) { state.Audio = audio })
}

// SetVideoURL stores the final rendered artifact location.
func (s *Store) SetVideoURL(url string) {
	s.commit(func(state *Snapshot) { state.VideoURL = url })
}

// SetVoiceID selects the synthesis voice for subsequent TTS calls.
func (s *Store) SetVoiceID(id string) {
	s.commit(func(state *Snapshot) { state.VoiceID = id })
}

// SetProgress overrides display progress; used for the parsing-stage upload
// interpolation only.
func (s *Store) SetProgress(progress int) {
	s.commit(func(state *Snapshot) { state.Progress = progress })
}

// SetError records a stage-fatal error message.
func (s *Store) SetError(message string) {
	s.commit(func(state *Snapshot) { state.Error = message })
}

// ClearError removes the error ahead of a retry attempt.
func (s *Store) ClearError() {
	s.commit(func(state *Snapshot) { state.Error = "" })
}

// SetLoading flags an outstanding network call for the current stage.
func (s *Store) SetLoading(loading bool) {
	s.commit(func(state *Snapshot) { state.Loading = loading })
}

// SetDetailedProgress replaces the transient backend progress hint. Passing
// nil clears it.
func (s *Store) SetDetailedProgress(detail *DetailedProgress) {
	s.commit(func(state *Snapshot) { state.Detailed = detail })
}

// SetStageResult records a stage outcome in the resume ledger.
func (s *Store) SetStageResult(stage Stage, result StageResult) {
	s.commit(func(state *Snapshot) {
		if state.StageResults == nil {
			state.StageResults = make(map[Stage]StageResult)
		}
		state.StageResults[stage] = result
	})
}

// Reset restores every field to its initial value, clearing artifacts and
// the stage-result ledger.
func (s *Store) Reset() {
	s.commit(func(state *Snapshot) { *state = initialState() })
}

// CompletedResult builds a completed stage result stamped with the current
// time.
func CompletedResult(data *StageData) StageResult {
	return StageResult{
		Status:      ResultCompleted,
		Data:        data,
		CompletedAt: time.Now().UTC(),
	}
}

// FailedResult builds a failed stage result carrying the error message.
func FailedResult(message string) StageResult {
	return StageResult{Status: ResultFailed, Error: message}
}

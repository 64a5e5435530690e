package project

import "time"

// Slide is one extracted presentation slide, produced by the parsing stage.
type Slide struct {
	SlideID     string   `json:"slideId"`
	SlideNumber int      `json:"slideNumber"`
	Title       string   `json:"title,omitempty"`
	Content     string   `json:"content"`
	ImageURLs   []string `json:"imageUrls"`
	Notes       string   `json:"notes,omitempty"`
}

// Script is the generated narration for one slide.
type Script struct {
	SlideID     string   `json:"slideId"`
	SlideNumber int      `json:"slideNumber"`
	ScriptText  string   `json:"scriptText"`
	Duration    float64  `json:"duration,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// AudioTrack is the synthesized narration audio for one slide.
type AudioTrack struct {
	SlideID     string  `json:"slideId"`
	SlideNumber int     `json:"slideNumber"`
	AudioURL    string  `json:"audioUrl"`
	Duration    float64 `json:"duration"`
}

// UploadedFile describes the source artifact supplied by the user.
type UploadedFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// DetailedProgress carries backend-reported in-stage progress, e.g.
// "slide 3 of 10". It is transient and cleared whenever the project is not
// actively processing.
type DetailedProgress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Stage   string `json:"stage"`
	Details string `json:"details,omitempty"`
}

// ResultStatus is the lifecycle of a single stage's recorded outcome.
type ResultStatus string

const (
	ResultPending    ResultStatus = "pending"
	ResultInProgress ResultStatus = "in-progress"
	ResultCompleted  ResultStatus = "completed"
	ResultFailed     ResultStatus = "failed"
)

// StageData holds the artifacts a completed stage produced. Only the fields
// relevant to the stage are populated.
type StageData struct {
	ProjectID string       `json:"projectId,omitempty"`
	Slides    []Slide      `json:"slides,omitempty"`
	Scripts   []Script     `json:"scripts,omitempty"`
	Audio     []AudioTrack `json:"audioUrls,omitempty"`
	VideoURL  string       `json:"videoUrl,omitempty"`
}

// StageResult is the durable per-stage resume ledger entry. A completed
// result with cached data substitutes for re-invoking the stage's backend
// call.
type StageResult struct {
	Status      ResultStatus `json:"status"`
	Data        *StageData   `json:"data,omitempty"`
	Error       string       `json:"error,omitempty"`
	CompletedAt time.Time    `json:"completedAt,omitempty"`
}

// Reusable reports whether the result can stand in for the stage's call.
func (r StageResult) Reusable() bool {
	return r.Status == ResultCompleted && r.Data != nil
}

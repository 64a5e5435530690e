package gateway

import "vlooo/internal/project"

// UploadProgress reports byte-level progress for a multipart upload.
type UploadProgress struct {
	Loaded     int64
	Total      int64
	Percentage int
}

// ProgressFunc receives upload progress callbacks.
type ProgressFunc func(UploadProgress)

// DeckMetadata carries presentation metadata extracted during parsing.
type DeckMetadata struct {
	Title     string `json:"pptTitle,omitempty"`
	Author    string `json:"pptAuthor,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// UploadResponse is the payload returned by the upload endpoint.
type UploadResponse struct {
	FileID     string `json:"fileId"`
	Filename   string `json:"filename"`
	FileSize   int64  `json:"fileSize"`
	UploadedAt string `json:"uploadedAt"`
}

// ParseResponse is the payload returned by the parse endpoint.
type ParseResponse struct {
	ProjectID     string          `json:"projectId"`
	TotalSlides   int             `json:"totalSlides"`
	Slides        []project.Slide `json:"slides"`
	ExtractedText string          `json:"extractedText,omitempty"`
	Metadata      DeckMetadata    `json:"metadata"`
}

// ScriptOptions tunes narration generation.
type ScriptOptions struct {
	ToneOfVoice        string `json:"toneOfVoice,omitempty"`
	Language           string `json:"language,omitempty"`
	CustomInstructions string `json:"customInstructions,omitempty"`
}

// ScriptResponse is the payload returned by the script endpoint.
type ScriptResponse struct {
	ProjectID     string           `json:"projectId"`
	Scripts       []project.Script `json:"scripts"`
	TotalDuration float64          `json:"totalDuration,omitempty"`
	GeneratedAt   string           `json:"generatedAt"`
}

// TTSOptions selects the synthesis voice and speed.
type TTSOptions struct {
	VoiceID   string  `json:"voiceId,omitempty"`
	VoiceName string  `json:"voiceName,omitempty"`
	Speed     float64 `json:"speed,omitempty"`
}

// TTSResponse is the payload returned by the synthesis endpoint.
type TTSResponse struct {
	ProjectID     string               `json:"projectId"`
	Audio         []project.AudioTrack `json:"audioUrls"`
	TotalDuration float64              `json:"totalDuration"`
	GeneratedAt   string               `json:"generatedAt"`
}

// RenderOptions tunes the final video composition.
type RenderOptions struct {
	Resolution   string `json:"resolution,omitempty"`
	FPS          int    `json:"fps,omitempty"`
	OutputFormat string `json:"outputFormat,omitempty"`
}

// RenderResponse is the payload returned by the render endpoint.
type RenderResponse struct {
	ProjectID    string  `json:"projectId"`
	VideoURL     string  `json:"videoUrl"`
	VideoSize    int64   `json:"videoSize,omitempty"`
	Duration     float64 `json:"duration,omitempty"`
	Resolution   string  `json:"resolution,omitempty"`
	RenderStatus string  `json:"renderStatus"`
	CompletedAt  string  `json:"completedAt,omitempty"`
}

// StatusStageResult is one per-stage entry in the backend checkpoint.
type StatusStageResult struct {
	Status      string             `json:"status"`
	Data        *project.StageData `json:"data,omitempty"`
	Error       string             `json:"error,omitempty"`
	CompletedAt string             `json:"completedAt,omitempty"`
}

// Status is the backend's view of a project, combining the coarse stage
// pointer, the per-stage checkpoint results, and the fine-grained in-stage
// progress counters the poller displays.
type Status struct {
	ProjectID string                       `json:"projectId"`
	Stage     string                       `json:"stage"`
	Current   int                          `json:"current"`
	Total     int                          `json:"total"`
	Details   string                       `json:"details,omitempty"`
	Timestamp string                       `json:"timestamp,omitempty"`
	Results   map[string]StatusStageResult `json:"results,omitempty"`
}

// Voice describes one synthesis voice option.
type Voice struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Gender string `json:"gender,omitempty"`
	Accent string `json:"accent,omitempty"`
}

// VoicesResponse is the payload returned by the voice listing endpoint.
type VoicesResponse struct {
	Voices []Voice `json:"voices"`
	Total  int     `json:"total"`
}

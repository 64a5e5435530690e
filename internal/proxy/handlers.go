package proxy

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"vlooo/internal/apierr"
	"vlooo/internal/gateway"
	"vlooo/internal/project"
)

// parseRequest shapes for the JSON endpoints. Validation tags are enforced
// before the backend sees the request.
type generateScriptRequest struct {
	ProjectID          string          `json:"projectId" validate:"required"`
	Slides             []project.Slide `json:"slides" validate:"required,min=1,dive"`
	ToneOfVoice        string          `json:"toneOfVoice" validate:"omitempty,oneof=professional friendly energetic calm"`
	Language           string          `json:"language" validate:"omitempty,len=2"`
	CustomInstructions string          `json:"customInstructions" validate:"omitempty,max=2000"`
}

type generateTTSRequest struct {
	ProjectID string           `json:"projectId" validate:"required"`
	Scripts   []project.Script `json:"scripts" validate:"required,min=1,dive"`
	VoiceID   string           `json:"voiceId" validate:"omitempty"`
	VoiceName string           `json:"voiceName" validate:"omitempty"`
	Speed     float64          `json:"speed" validate:"omitempty,gte=0.5,lte=2"`
}

type renderVideoRequest struct {
	ProjectID    string               `json:"projectId" validate:"required"`
	Slides       []project.Slide      `json:"slides" validate:"required,min=1,dive"`
	AudioURLs    []project.AudioTrack `json:"audioUrls" validate:"required,min=1,dive"`
	Resolution   string               `json:"resolution" validate:"omitempty,oneof=720p 1080p 1440p"`
	FPS          int                  `json:"fps" validate:"omitempty,oneof=24 30 60"`
	OutputFormat string               `json:"outputFormat" validate:"omitempty,oneof=mp4 webm"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	backend := "ok"
	if err := s.client.Health(r.Context()); err != nil {
		backend = "unreachable"
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": backend,
	})
}

func (s *Server) handleParsePPT(w http.ResponseWriter, r *http.Request) {
	// Cut the body off at the limit instead of buffering an oversized
	// upload first. The slack covers multipart framing and form fields.
	r.Body = http.MaxBytesReader(w, r.Body, apierr.MaxUploadBytes+(1<<20))
	// Cap form memory; larger parts spill to disk up to the upload limit.
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.writeError(w, apierr.New(apierr.CodeFileTooLarge, "file exceeds the upload size limit").
				WithDetails(map[string]any{"maxBytes": apierr.MaxUploadBytes}))
			return
		}
		s.writeError(w, apierr.New(apierr.CodeInvalidInput, "invalid multipart request"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, apierr.New(apierr.CodeMissingRequiredField, "file is required").
			WithDetails(map[string]any{"field": "file"}))
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if err := apierr.ValidateUpload(header.Filename, header.Size, mimeType); err != nil {
		s.writeFailure(w, err)
		return
	}

	resp, err := s.client.ParsePPT(r.Context(), gateway.UploadSource{
		Name:     header.Filename,
		Size:     header.Size,
		MIMEType: mimeType,
		Reader:   file,
	}, nil)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGenerateScript(w http.ResponseWriter, r *http.Request) {
	var req generateScriptRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := s.client.GenerateScript(r.Context(), req.ProjectID, req.Slides, gateway.ScriptOptions{
		ToneOfVoice:        req.ToneOfVoice,
		Language:           req.Language,
		CustomInstructions: req.CustomInstructions,
	})
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGenerateTTS(w http.ResponseWriter, r *http.Request) {
	var req generateTTSRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := s.client.GenerateTTS(r.Context(), req.ProjectID, req.Scripts, gateway.TTSOptions{
		VoiceID:   req.VoiceID,
		VoiceName: req.VoiceName,
		Speed:     req.Speed,
	})
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListVoices(w http.ResponseWriter, r *http.Request) {
	voices, err := s.client.ListVoices(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, gateway.VoicesResponse{Voices: voices, Total: len(voices)})
}

func (s *Server) handleRenderVideo(w http.ResponseWriter, r *http.Request) {
	var req renderVideoRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := s.client.RenderVideo(r.Context(), req.ProjectID, req.Slides, req.AudioURLs, gateway.RenderOptions{
		Resolution:   req.Resolution,
		FPS:          req.FPS,
		OutputFormat: req.OutputFormat,
	})
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProjectStatus(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	status, err := s.client.ProjectStatus(r.Context(), projectID)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if err := s.client.DeleteProject(r.Context(), projectID); err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"projectId": projectID,
		"status":    "cancelled",
	})
}

// decodeAndValidate decodes the JSON body into req and runs struct
// validation, writing the error response itself on failure.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(req); err != nil {
		s.writeError(w, apierr.New(apierr.CodeInvalidInput, "malformed JSON body"))
		return false
	}
	if err := s.validate.Struct(req); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			field := invalid[0]
			s.writeError(w, apierr.New(apierr.CodeInvalidInput, "request validation failed").
				WithDetails(map[string]any{
					"field":      field.Field(),
					"constraint": field.Tag(),
				}))
			return false
		}
		s.writeError(w, apierr.New(apierr.CodeInvalidInput, "request validation failed"))
		return false
	}
	return true
}

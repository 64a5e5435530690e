package proxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"vlooo/internal/apierr"
	"vlooo/internal/gateway"
	"vlooo/internal/project"
	"vlooo/internal/testsupport"
)

const pptxMIME = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// newTestServer wires a proxy in front of a scripted fake backend and
// returns the proxy handler plus the backend mux for per-test routes.
func newTestServer(t *testing.T) (http.Handler, *http.ServeMux) {
	t.Helper()
	backendMux := http.NewServeMux()
	backend := httptest.NewServer(backendMux)
	t.Cleanup(backend.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithBackendURL(backend.URL))
	client := gateway.NewClient(cfg)
	srv, err := NewServer(cfg, client, nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return srv.Handler(), backendMux
}

func respondSuccess(t *testing.T, w http.ResponseWriter, payload any) {
	t.Helper()
	envelope, err := apierr.Success(payload)
	if err != nil {
		t.Fatalf("encode envelope: %v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		t.Fatalf("write envelope: %v", err)
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apierr.Envelope {
	t.Helper()
	var envelope apierr.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	return envelope
}

func multipartUpload(t *testing.T, filename, mimeType, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestParsePPTForwardsToBackend(t *testing.T) {
	handler, backend := newTestServer(t)
	backend.HandleFunc("/api/parse-ppt", func(w http.ResponseWriter, r *http.Request) {
		respondSuccess(t, w, gateway.ParseResponse{
			ProjectID:   "proj-1",
			TotalSlides: 1,
			Slides:      []project.Slide{{SlideNumber: 1, Title: "Intro"}},
		})
	})

	body, contentType := multipartUpload(t, "deck.pptx", pptxMIME, "slide bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/parse-ppt", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	if !envelope.Success {
		t.Fatalf("envelope failure: %+v", envelope.Error)
	}
	var resp gateway.ParseResponse
	if err := json.Unmarshal(envelope.Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if resp.ProjectID != "proj-1" {
		t.Errorf("projectId = %q", resp.ProjectID)
	}
}

func TestParsePPTRejectsWrongFileType(t *testing.T) {
	handler, backend := newTestServer(t)
	backendHit := false
	backend.HandleFunc("/api/parse-ppt", func(w http.ResponseWriter, r *http.Request) {
		backendHit = true
	})

	body, contentType := multipartUpload(t, "notes.pdf", "application/pdf", "pdf bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/parse-ppt", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Code != apierr.CodeInvalidFileType {
		t.Errorf("error = %+v, want %s", envelope.Error, apierr.CodeInvalidFileType)
	}
	if backendHit {
		t.Error("invalid upload reached the backend")
	}
}

// devZero streams zero bytes forever, standing in for a huge upload without
// materializing one.
type devZero struct{}

func (devZero) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestParsePPTCutsOffOversizedUpload(t *testing.T) {
	handler, backend := newTestServer(t)
	backendHit := false
	backend.HandleFunc("/api/parse-ppt", func(w http.ResponseWriter, r *http.Request) {
		backendHit = true
	})

	boundary := "uploadboundary"
	prefix := fmt.Sprintf(
		"--%s\r\nContent-Disposition: form-data; name=\"file\"; filename=\"deck.pptx\"\r\nContent-Type: %s\r\n\r\n",
		boundary, pptxMIME)
	suffix := fmt.Sprintf("\r\n--%s--\r\n", boundary)
	body := io.MultiReader(
		strings.NewReader(prefix),
		io.LimitReader(devZero{}, apierr.MaxUploadBytes+(2<<20)),
		strings.NewReader(suffix),
	)

	req := httptest.NewRequest(http.MethodPost, "/api/parse-ppt", body)
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Code != apierr.CodeFileTooLarge {
		t.Errorf("error = %+v, want %s", envelope.Error, apierr.CodeFileTooLarge)
	}
	if backendHit {
		t.Error("oversized upload reached the backend")
	}
}

func TestParsePPTRequiresFileField(t *testing.T) {
	handler, _ := newTestServer(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	_ = writer.WriteField("note", "no file here")
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/parse-ppt", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Code != apierr.CodeMissingRequiredField {
		t.Errorf("error = %+v, want %s", envelope.Error, apierr.CodeMissingRequiredField)
	}
}

func TestGenerateScriptValidatesBody(t *testing.T) {
	handler, _ := newTestServer(t)

	// Missing slides entirely.
	req := httptest.NewRequest(http.MethodPost, "/api/generate-script",
		strings.NewReader(`{"projectId":"proj-1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Code != apierr.CodeInvalidInput {
		t.Errorf("error = %+v, want %s", envelope.Error, apierr.CodeInvalidInput)
	}
}

func TestGenerateScriptForwardsValidBody(t *testing.T) {
	handler, backend := newTestServer(t)
	backend.HandleFunc("/api/generate-script", func(w http.ResponseWriter, r *http.Request) {
		respondSuccess(t, w, gateway.ScriptResponse{
			ProjectID: "proj-1",
			Scripts:   []project.Script{{SlideNumber: 1, ScriptText: "narration"}},
		})
	})

	payload := `{"projectId":"proj-1","slides":[{"slideId":"s1","slideNumber":1,"content":"hello","imageUrls":[]}],"toneOfVoice":"professional","language":"ko"}`
	req := httptest.NewRequest(http.MethodPost, "/api/generate-script", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestRenderVideoRejectsCountMismatch(t *testing.T) {
	handler, backend := newTestServer(t)
	backendHit := false
	backend.HandleFunc("/api/render-video", func(w http.ResponseWriter, r *http.Request) {
		backendHit = true
	})

	payload := `{
		"projectId": "proj-1",
		"slides": [
			{"slideId":"s1","slideNumber":1,"content":"a","imageUrls":[]},
			{"slideId":"s2","slideNumber":2,"content":"b","imageUrls":[]}
		],
		"audioUrls": [
			{"slideId":"s1","slideNumber":1,"audioUrl":"https://cdn/a1.mp3","duration":3}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/render-video", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Code != apierr.CodeInvalidInput {
		t.Errorf("error = %+v, want %s", envelope.Error, apierr.CodeInvalidInput)
	}
	if backendHit {
		t.Error("mismatched render request reached the backend")
	}
}

func TestProjectStatusPassesThrough(t *testing.T) {
	handler, backend := newTestServer(t)
	backend.HandleFunc("/api/project-status/proj-1", func(w http.ResponseWriter, r *http.Request) {
		respondSuccess(t, w, gateway.Status{ProjectID: "proj-1", Stage: "rendering", Current: 5, Total: 9})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/project-status/proj-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	var status gateway.Status
	if err := json.Unmarshal(envelope.Data, &status); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if status.Stage != "rendering" || status.Current != 5 {
		t.Errorf("status = %+v", status)
	}
}

func TestDeleteProjectPassesThrough(t *testing.T) {
	handler, backend := newTestServer(t)
	var gotMethod string
	backend.HandleFunc("/api/project/proj-1", func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		respondSuccess(t, w, map[string]string{"projectId": "proj-1"})
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/project/proj-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("backend saw %s, want DELETE", gotMethod)
	}
}

func TestListVoicesFallsBackWhenBackendErrors(t *testing.T) {
	handler, _ := newTestServer(t)
	// No backend route registered: the proxy serves the built-in catalog.

	req := httptest.NewRequest(http.MethodGet, "/api/generate-tts", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	var resp gateway.VoicesResponse
	if err := json.Unmarshal(envelope.Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if resp.Total != 4 {
		t.Errorf("voices = %d, want built-in catalog of 4", resp.Total)
	}
}

func TestBackendFailurePropagatesEnvelope(t *testing.T) {
	handler, backend := newTestServer(t)
	backend.HandleFunc("/api/generate-script", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(apierr.Failure(apierr.New(apierr.CodeScriptGenerationFailed, "model unavailable")))
	})

	payload := `{"projectId":"proj-1","slides":[{"slideId":"s1","slideNumber":1,"content":"hello","imageUrls":[]}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/generate-script", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Code != apierr.CodeScriptGenerationFailed {
		t.Errorf("error = %+v, want %s", envelope.Error, apierr.CodeScriptGenerationFailed)
	}
}

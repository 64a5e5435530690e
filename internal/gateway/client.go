package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vlooo/internal/apierr"
	"vlooo/internal/config"
	"vlooo/internal/project"
)

const defaultHTTPTimeout = 30 * time.Second

// HTTPDoer describes the HTTP client used by the gateway.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client wraps the conversion backend API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client (used in tests).
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a gateway client from application configuration.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	baseURL := ""
	apiKey := ""
	if cfg != nil {
		if cfg.Backend.TimeoutSeconds > 0 {
			timeout = time.Duration(cfg.Backend.TimeoutSeconds) * time.Second
		}
		baseURL = strings.TrimRight(strings.TrimSpace(cfg.Backend.BaseURL), "/")
		apiKey = strings.TrimSpace(cfg.Backend.APIKey)
	}
	client := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// ParsePPT submits the presentation for parsing via multipart upload,
// reporting byte-level progress through onProgress when provided.
func (c *Client) ParsePPT(ctx context.Context, file UploadSource, onProgress ProgressFunc) (*ParseResponse, error) {
	body, contentType, err := buildMultipart(file)
	if err != nil {
		return nil, fmt.Errorf("build upload body: %w", err)
	}

	reader := io.Reader(body)
	total := int64(body.Len())
	if onProgress != nil {
		reader = newProgressReader(body, total, onProgress)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/parse-ppt", reader)
	if err != nil {
		return nil, fmt.Errorf("build parse request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = total
	c.authorize(req)

	var payload ParseResponse
	if err := c.send(req, &payload); err != nil {
		return nil, fmt.Errorf("parse ppt: %w", err)
	}
	return &payload, nil
}

// GenerateScript produces narration scripts for the parsed slides.
func (c *Client) GenerateScript(ctx context.Context, projectID string, slides []project.Slide, opts ScriptOptions) (*ScriptResponse, error) {
	request := struct {
		ProjectID string          `json:"projectId"`
		Slides    []project.Slide `json:"slides"`
		ScriptOptions
	}{ProjectID: projectID, Slides: slides, ScriptOptions: opts}

	var payload ScriptResponse
	if err := c.post(ctx, "/api/generate-script", request, &payload); err != nil {
		return nil, fmt.Errorf("generate script: %w", err)
	}
	return &payload, nil
}

// GenerateTTS synthesizes narration audio for the generated scripts.
func (c *Client) GenerateTTS(ctx context.Context, projectID string, scripts []project.Script, opts TTSOptions) (*TTSResponse, error) {
	request := struct {
		ProjectID string           `json:"projectId"`
		Scripts   []project.Script `json:"scripts"`
		TTSOptions
	}{ProjectID: projectID, Scripts: scripts, TTSOptions: opts}

	var payload TTSResponse
	if err := c.post(ctx, "/api/generate-tts", request, &payload); err != nil {
		return nil, fmt.Errorf("generate tts: %w", err)
	}
	return &payload, nil
}

// RenderVideo composites the final video. The slide/audio count invariant is
// enforced locally; violated calls never reach the backend.
func (c *Client) RenderVideo(ctx context.Context, projectID string, slides []project.Slide, audio []project.AudioTrack, opts RenderOptions) (*RenderResponse, error) {
	if len(slides) != len(audio) {
		return nil, apierr.New(apierr.CodeInvalidInput,
			fmt.Sprintf("slide count %d does not match audio count %d", len(slides), len(audio))).
			WithDetails(map[string]any{"slides": len(slides), "audioUrls": len(audio)})
	}

	request := struct {
		ProjectID string               `json:"projectId"`
		Slides    []project.Slide      `json:"slides"`
		AudioURLs []project.AudioTrack `json:"audioUrls"`
		RenderOptions
	}{ProjectID: projectID, Slides: slides, AudioURLs: audio, RenderOptions: opts}

	var payload RenderResponse
	if err := c.post(ctx, "/api/render-video", request, &payload); err != nil {
		return nil, fmt.Errorf("render video: %w", err)
	}
	return &payload, nil
}

// ProjectStatus queries the backend checkpoint for a project. Read-only.
func (c *Client) ProjectStatus(ctx context.Context, projectID string) (*Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/project-status/"+projectID, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	c.authorize(req)

	var payload Status
	if err := c.send(req, &payload); err != nil {
		return nil, fmt.Errorf("project status: %w", err)
	}
	return &payload, nil
}

// ListVoices returns the available synthesis voices, falling back to the
// built-in catalog when the backend is unreachable.
func (c *Client) ListVoices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/generate-tts", nil)
	if err != nil {
		return nil, fmt.Errorf("build voices request: %w", err)
	}
	c.authorize(req)

	var payload VoicesResponse
	if err := c.send(req, &payload); err != nil {
		return FallbackVoices(), nil
	}
	if len(payload.Voices) == 0 {
		return FallbackVoices(), nil
	}
	return payload.Voices, nil
}

// DeleteProject cancels a project and purges its backend checkpoint.
// Best-effort by contract: callers treat failures as non-fatal.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/project/"+projectID, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	c.authorize(req)
	if err := c.send(req, nil); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// Health probes backend reachability.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	c.authorize(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend health: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("backend health: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)
	return c.send(req, out)
}

// send executes the request and decodes the standard envelope. Backend
// failures become *apierr.Error values; transport failures stay plain errors.
func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var envelope apierr.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("backend returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if envErr := envelope.Err(resp.StatusCode); envErr != nil {
		return envErr
	}
	if !envelope.Success && resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
}

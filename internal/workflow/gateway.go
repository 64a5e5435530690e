package workflow

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"vlooo/internal/gateway"
	"vlooo/internal/project"
)

// Gateway is the backend surface the orchestrator depends on. *gateway.Client
// satisfies it; tests substitute scripted fakes.
type Gateway interface {
	ParsePPT(ctx context.Context, file gateway.UploadSource, onProgress gateway.ProgressFunc) (*gateway.ParseResponse, error)
	GenerateScript(ctx context.Context, projectID string, slides []project.Slide, opts gateway.ScriptOptions) (*gateway.ScriptResponse, error)
	GenerateTTS(ctx context.Context, projectID string, scripts []project.Script, opts gateway.TTSOptions) (*gateway.TTSResponse, error)
	RenderVideo(ctx context.Context, projectID string, slides []project.Slide, audio []project.AudioTrack, opts gateway.RenderOptions) (*gateway.RenderResponse, error)
	ProjectStatus(ctx context.Context, projectID string) (*gateway.Status, error)
	DeleteProject(ctx context.Context, projectID string) error
}

// Source describes the presentation to convert. Open is invoked once per
// parsing attempt so retries re-read the file from the start.
type Source struct {
	Name     string
	Size     int64
	MIMEType string
	Open     func() (io.ReadCloser, error)
}

// FileSource builds a Source backed by a file on disk, inferring the MIME
// type from the extension.
func FileSource(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Source{}, fmt.Errorf("stat presentation: %w", err)
	}
	if info.IsDir() {
		return Source{}, fmt.Errorf("presentation %s is a directory", path)
	}
	mimeType := presentationMIME(path)
	return Source{
		Name:     filepath.Base(path),
		Size:     info.Size(),
		MIMEType: mimeType,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// presentationMIME resolves the upload content type. The PowerPoint types
// are mapped explicitly; system MIME tables frequently lack them.
func presentationMIME(path string) string {
	switch filepath.Ext(path) {
	case ".ppt":
		return "application/vnd.ms-powerpoint"
	case ".pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	}
	if mimeType := mime.TypeByExtension(filepath.Ext(path)); mimeType != "" {
		return mimeType
	}
	return "application/octet-stream"
}

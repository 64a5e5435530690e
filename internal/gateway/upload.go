package gateway

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"

	"vlooo/internal/apierr"
)

// UploadSource is the presentation file handed to ParsePPT.
type UploadSource struct {
	Name     string
	Size     int64
	MIMEType string
	Reader   io.Reader
}

// buildMultipart validates the upload and assembles the multipart body.
// The whole body is buffered so progress totals include form overhead,
// matching what the transport actually sends.
func buildMultipart(file UploadSource) (*bytes.Buffer, string, error) {
	if err := apierr.ValidateUpload(file.Name, file.Size, file.MIMEType); err != nil {
		return nil, "", err
	}
	if file.Reader == nil {
		return nil, "", apierr.New(apierr.CodeInvalidInput, "no file content provided")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file.Reader); err != nil {
		return nil, "", fmt.Errorf("copy file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize form: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

// progressReader counts bytes as the transport drains the upload body.
type progressReader struct {
	inner  io.Reader
	total  int64
	loaded int64
	report ProgressFunc
}

func newProgressReader(inner io.Reader, total int64, report ProgressFunc) *progressReader {
	return &progressReader{inner: inner, total: total, report: report}
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.inner.Read(p)
	if n > 0 {
		r.loaded += int64(n)
		pct := 0
		if r.total > 0 {
			pct = int(r.loaded * 100 / r.total)
			if pct > 100 {
				pct = 100
			}
		}
		r.report(UploadProgress{Loaded: r.loaded, Total: r.total, Percentage: pct})
	}
	return n, err
}

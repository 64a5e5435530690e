package apierr

import "fmt"

// MaxUploadBytes is the upload size ceiling enforced at the boundary.
const MaxUploadBytes = 100 * 1024 * 1024

// AllowedPresentationTypes lists the accepted upload MIME types: the legacy
// binary format and the OOXML format.
var AllowedPresentationTypes = []string{
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// ValidateUpload checks file constraints before any network or backend work.
// It returns a classified Error so callers can surface the offending field.
func ValidateUpload(name string, size int64, mimeType string) error {
	if name == "" {
		return New(CodeMissingRequiredField, "file is required").
			WithDetails(map[string]any{"field": "file"})
	}
	if size > MaxUploadBytes {
		return New(CodeFileTooLarge,
			fmt.Sprintf("file exceeds the %dMB upload limit", MaxUploadBytes/(1024*1024))).
			WithDetails(map[string]any{"field": "file", "size": size})
	}
	for _, allowed := range AllowedPresentationTypes {
		if mimeType == allowed {
			return nil
		}
	}
	return New(CodeInvalidFileType, "unsupported file format; upload a PPT or PPTX presentation").
		WithDetails(map[string]any{"field": "file", "receivedType": mimeType})
}

package apierr

import "net/http"

// Code identifies a backend failure class using the DOMAIN_NNN convention.
type Code string

const (
	// Authentication
	CodeUnauthorized Code = "AUTH_001"
	CodeInvalidToken Code = "AUTH_002"
	CodeForbidden    Code = "AUTH_003"

	// Input validation
	CodeInvalidInput         Code = "INPUT_001"
	CodeMissingRequiredField Code = "INPUT_002"
	CodeInvalidFileType      Code = "INPUT_003"
	CodeFileTooLarge         Code = "INPUT_004"

	// File handling
	CodeFileUploadFailed Code = "FILE_001"
	CodeFileNotFound     Code = "FILE_002"
	CodeFileParseError   Code = "FILE_003"

	// PPT parsing
	CodePPTParseError Code = "PPT_001"
	CodeNoSlidesFound Code = "PPT_002"

	// Script generation
	CodeScriptGenerationFailed  Code = "AI_001"
	CodeScriptProviderError     Code = "AI_002"
	CodeScriptGenerationTimeout Code = "AI_003"

	// Voice synthesis
	CodeTTSGenerationFailed Code = "TTS_001"
	CodeTTSProviderError    Code = "TTS_002"
	CodeVoiceNotFound       Code = "TTS_003"

	// Video rendering
	CodeVideoRenderFailed Code = "VIDEO_001"
	CodeFFmpegError       Code = "VIDEO_002"
	CodeRenderTimeout     Code = "VIDEO_003"

	// Storage
	CodeStorageError         Code = "STORAGE_001"
	CodeStorageQuotaExceeded Code = "STORAGE_002"

	// Server
	CodeInternalServerError Code = "SERVER_001"
	CodeServiceUnavailable  Code = "SERVER_002"
	CodeDatabaseError       Code = "SERVER_003"

	// Miscellaneous
	CodeNotFound         Code = "NOT_FOUND_001"
	CodeResourceConflict Code = "CONFLICT_001"
	CodeRateLimited      Code = "RATE_001"
)

var statusByCode = map[Code]int{
	CodeUnauthorized:            http.StatusUnauthorized,
	CodeInvalidToken:            http.StatusUnauthorized,
	CodeForbidden:               http.StatusForbidden,
	CodeInvalidInput:            http.StatusBadRequest,
	CodeMissingRequiredField:    http.StatusBadRequest,
	CodeInvalidFileType:         http.StatusBadRequest,
	CodeFileTooLarge:            http.StatusRequestEntityTooLarge,
	CodeFileUploadFailed:        http.StatusInternalServerError,
	CodeFileNotFound:            http.StatusNotFound,
	CodeFileParseError:          http.StatusBadRequest,
	CodePPTParseError:           http.StatusBadRequest,
	CodeNoSlidesFound:           http.StatusBadRequest,
	CodeScriptGenerationFailed:  http.StatusInternalServerError,
	CodeScriptProviderError:     http.StatusServiceUnavailable,
	CodeScriptGenerationTimeout: http.StatusGatewayTimeout,
	CodeTTSGenerationFailed:     http.StatusInternalServerError,
	CodeTTSProviderError:        http.StatusServiceUnavailable,
	CodeVoiceNotFound:           http.StatusNotFound,
	CodeVideoRenderFailed:       http.StatusInternalServerError,
	CodeFFmpegError:             http.StatusInternalServerError,
	CodeRenderTimeout:           http.StatusGatewayTimeout,
	CodeStorageError:            http.StatusInternalServerError,
	CodeStorageQuotaExceeded:    http.StatusTooManyRequests,
	CodeInternalServerError:     http.StatusInternalServerError,
	CodeServiceUnavailable:      http.StatusServiceUnavailable,
	CodeDatabaseError:           http.StatusInternalServerError,
	CodeNotFound:                http.StatusNotFound,
	CodeResourceConflict:        http.StatusConflict,
	CodeRateLimited:             http.StatusTooManyRequests,
}

// StatusFor returns the HTTP status associated with a code. Unknown codes
// map to 500.
func StatusFor(code Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

package apierr_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"vlooo/internal/apierr"
)

func TestStatusForKnownCodes(t *testing.T) {
	cases := []struct {
		code apierr.Code
		want int
	}{
		{apierr.CodeFileTooLarge, http.StatusRequestEntityTooLarge},
		{apierr.CodeVoiceNotFound, http.StatusNotFound},
		{apierr.CodePPTParseError, http.StatusBadRequest},
		{apierr.CodeScriptGenerationFailed, http.StatusInternalServerError},
		{apierr.CodeInvalidInput, http.StatusBadRequest},
		{apierr.Code("BOGUS_999"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := apierr.StatusFor(tc.code); got != tc.want {
			t.Errorf("StatusFor(%s) = %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestErrorChainClassification(t *testing.T) {
	base := apierr.New(apierr.CodeTTSGenerationFailed, "synthesis backend unavailable")
	wrapped := fmt.Errorf("voice synthesis: %w", base)

	if !apierr.IsCode(wrapped, apierr.CodeTTSGenerationFailed) {
		t.Fatal("wrapped code not detected")
	}
	if apierr.CodeOf(wrapped) != apierr.CodeTTSGenerationFailed {
		t.Fatal("CodeOf lost the code")
	}
	if apierr.CodeOf(errors.New("plain")) != apierr.CodeInternalServerError {
		t.Fatal("unclassified errors must map to SERVER_001")
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env, err := apierr.Success(map[string]string{"projectId": "proj_1"})
	if err != nil {
		t.Fatalf("Success: %v", err)
	}
	if !env.Success || env.Err(0) != nil {
		t.Fatal("success envelope misreported")
	}

	failure := apierr.Failure(apierr.New(apierr.CodeVoiceNotFound, "unknown voice"))
	raw, err := json.Marshal(failure)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded apierr.Envelope
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	envErr := decoded.Err(0)
	if envErr == nil {
		t.Fatal("failure envelope produced no error")
	}
	apiErr, ok := apierr.FromError(envErr)
	if !ok || apiErr.Code != apierr.CodeVoiceNotFound || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("decoded error = %+v", apiErr)
	}
}

func TestValidateUpload(t *testing.T) {
	const pptx = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

	if err := apierr.ValidateUpload("deck.pptx", 5<<20, pptx); err != nil {
		t.Fatalf("valid upload rejected: %v", err)
	}
	if err := apierr.ValidateUpload("deck.ppt", 1<<20, "application/vnd.ms-powerpoint"); err != nil {
		t.Fatalf("legacy format rejected: %v", err)
	}

	err := apierr.ValidateUpload("deck.pptx", 150<<20, pptx)
	if !apierr.IsCode(err, apierr.CodeFileTooLarge) {
		t.Fatalf("oversized upload: got %v", err)
	}
	if apiErr, _ := apierr.FromError(err); apiErr.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized upload status = %d", apiErr.StatusCode)
	}

	err = apierr.ValidateUpload("deck.pdf", 1<<20, "application/pdf")
	if !apierr.IsCode(err, apierr.CodeInvalidFileType) {
		t.Fatalf("wrong MIME: got %v", err)
	}

	err = apierr.ValidateUpload("", 0, pptx)
	if !apierr.IsCode(err, apierr.CodeMissingRequiredField) {
		t.Fatalf("missing file: got %v", err)
	}
}

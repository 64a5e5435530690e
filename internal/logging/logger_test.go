package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"vlooo/internal/logging"
)

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Console: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("conversion started", logging.String("project_id", "proj_1"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if record["project_id"] != "proj_1" {
		t.Fatalf("missing attribute: %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestFileOutputCreatesDirectory(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "vlooo.log")
	logger, err := logging.New(logging.Options{Format: "console", FilePath: path, Console: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Fatal("console output missing")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Console: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := logging.WithProjectID(context.Background(), "proj_9")
	ctx = logging.WithStage(ctx, "rendering")
	logging.WithContext(ctx, logger).Info("tick")

	out := buf.String()
	if !strings.Contains(out, "proj_9") || !strings.Contains(out, "rendering") {
		t.Fatalf("context fields missing: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Console: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("quiet")
	logger.Warn("loud")
	out := buf.String()
	if strings.Contains(out, "quiet") || !strings.Contains(out, "loud") {
		t.Fatalf("level filtering broken: %s", out)
	}
}

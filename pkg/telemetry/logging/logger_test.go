package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: FormatJSON, Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("should be dropped")
	logger.Warn("should be kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info record not filtered: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn record missing: %s", out)
	}
}

func TestNew_InvalidSettings(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, err := New(Config{Format: "logfmt"}); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestRedactingHandler_MasksStringAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: FormatJSON, RedactPII: true, Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("user signed up", "email", "a@b.com", "attempt", 3)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}

	if record["email"] != "***@***.***" {
		t.Errorf("email not redacted: %v", record["email"])
	}
	if record["attempt"] != float64(3) {
		t.Errorf("non-string attr mangled: %v", record["attempt"])
	}
}

func TestRedactingHandler_MasksMessage(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: FormatJSON, RedactPII: true, Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("rejected signup for a@b.com")

	if strings.Contains(buf.String(), "a@b.com") {
		t.Errorf("message not redacted: %s", buf.String())
	}
}

func TestRedactingHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: FormatJSON, RedactPII: true, Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.With("contact", "a@b.com").Info("hello")

	if strings.Contains(buf.String(), "a@b.com") {
		t.Errorf("WithAttrs value not redacted: %s", buf.String())
	}
}

func TestRedactingHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: FormatJSON, RedactPII: true, Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("hello", slog.Group("request", slog.String("from", "a@b.com")))

	if strings.Contains(buf.String(), "a@b.com") {
		t.Errorf("grouped attr not redacted: %s", buf.String())
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	if got := RequestID(ctx); got != "" {
		t.Errorf("RequestID on empty context = %q", got)
	}

	ctx = WithRequestID(ctx, "req-123")
	if got := RequestID(ctx); got != "req-123" {
		t.Errorf("RequestID = %q, want req-123", got)
	}
}

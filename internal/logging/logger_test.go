package logging_test

import (
	"context"
	"testing"

	"podforge/internal/logging"
	"podforge/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := logging.New(logging.Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unsupported level")
	}
}

func TestNewAcceptsKnownFormats(t *testing.T) {
	for _, format := range []string{"", "console", "json", "text"} {
		if _, err := logging.New(logging.Options{Format: format, Level: "debug"}); err != nil {
			t.Fatalf("New(%q): %v", format, err)
		}
	}
}

func TestContextFields(t *testing.T) {
	ctx := services.WithJobID(context.Background(), "job-1")
	ctx = services.WithStage(ctx, "research")

	fields := logging.ContextFields(ctx)
	if len(fields) != 2 {
		t.Fatalf("expected 2 context fields, got %d", len(fields))
	}
	if fields[0].Key != logging.FieldJobID || fields[0].Value.String() != "job-1" {
		t.Fatalf("unexpected job field: %v", fields[0])
	}
	if fields[1].Key != logging.FieldStage || fields[1].Value.String() != "research" {
		t.Fatalf("unexpected stage field: %v", fields[1])
	}
}

func TestWithContextNilLogger(t *testing.T) {
	logger := logging.WithContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	logger.Info("should not panic")
}

package services_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"podforge/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalService, "voice", "synthesize", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"voice", "synthesize", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "research", "fetch", "timed out", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestFailureMessageStripsMarker(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "script", "parse", "empty summary", nil)
	msg := services.FailureMessage(err)
	if strings.Contains(msg, "validation error") {
		t.Fatalf("marker prefix should be stripped, got %q", msg)
	}
	if !strings.Contains(msg, "empty summary") {
		t.Fatalf("expected detail retained, got %q", msg)
	}
	if services.FailureMessage(nil) != "" {
		t.Fatal("nil error should produce empty message")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{services.Wrap(services.ErrValidation, "", "", "two hosts required", nil), http.StatusBadRequest},
		{services.Wrap(services.ErrNotFound, "", "", "no such job", nil), http.StatusNotFound},
		{services.Wrap(services.ErrUnknownVoice, "", "", "no such voice", nil), http.StatusNotFound},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := services.HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

package services_test

import (
	"errors"
	"strings"
	"testing"

	"stillcast/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "probe", "inspect", "failed", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"probe", "inspect", "failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestHint(t *testing.T) {
	if services.Hint(nil) != "" {
		t.Fatal("expected empty hint for nil error")
	}
	notFound := services.Wrap(services.ErrNotFound, "probe", "stat", "missing", nil)
	if !strings.Contains(services.Hint(notFound), "exists") {
		t.Fatalf("unexpected hint %q", services.Hint(notFound))
	}
	timeout := services.Wrap(services.ErrTimeout, "probe", "run", "", nil)
	if !strings.Contains(services.Hint(timeout), "probe_timeout_seconds") {
		t.Fatalf("unexpected hint %q", services.Hint(timeout))
	}
}

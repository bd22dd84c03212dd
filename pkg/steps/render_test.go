package steps

import (
	"strings"
	"testing"
)

func TestRenderTemplate(t *testing.T) {
	got, err := renderTemplate("header", "root={{ .rootMountPoint }}", map[string]any{"rootMountPoint": "/mnt/target"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "root=/mnt/target" {
		t.Fatalf("expected 'root=/mnt/target', got %q", got)
	}
}

func TestRenderTemplate_SprigFunctions(t *testing.T) {
	got, err := renderTemplate("header", `v: {{ "hello" | upper }}`, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "v: HELLO" {
		t.Fatalf("expected 'v: HELLO', got %q", got)
	}
}

func TestRenderTemplate_ParseError(t *testing.T) {
	_, err := renderTemplate("header", "{{ .unclosed", map[string]any{})
	if err == nil {
		t.Fatal("expected error for invalid template syntax")
	}
	if !strings.Contains(err.Error(), "parsing template") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRenderTemplate_ExecutionError(t *testing.T) {
	_, err := renderTemplate("header", `{{ fail "boom" }}`, map[string]any{})
	if err == nil {
		t.Fatal("expected error for template execution failure")
	}
	if !strings.Contains(err.Error(), "executing template") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRenderTemplate_DollarSignsPassThrough(t *testing.T) {
	got, err := renderTemplate("header", DefaultFstabHeader, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != DefaultFstabHeader {
		t.Fatalf("default header changed by rendering:\n%s", got)
	}
}

package repository

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultInstructionRepository(t *testing.T) {
	repo, err := NewDefaultInstructionRepository()
	if err != nil {
		t.Fatalf("Expected embedded instructions to load, got %v", err)
	}

	for _, id := range []string{"SystemMessage1", "SystemMessage2", "seo", "code-review", "summary"} {
		in, ok := repo.Get(id)
		if !ok {
			t.Errorf("Expected instruction %q to be registered", id)
			continue
		}
		if strings.TrimSpace(in.Body) == "" {
			t.Errorf("Expected instruction %q to have a body", id)
		}
	}

	if _, ok := repo.Get("systemmessage1"); ok {
		t.Error("Expected lookup to be case-sensitive")
	}
}

func TestListIsSorted(t *testing.T) {
	repo, err := ParseInstructions([]byte(`
instructions:
  - id: b
    body: second
  - id: a
    description: first one
    body: first
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list := repo.List()
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Fatalf("Expected [a b], got %+v", list)
	}
	if list[0].Description != "first one" {
		t.Errorf("Expected description to be kept, got %q", list[0].Description)
	}

	ids := repo.IDs()
	ids[0] = "mutated"
	if repo.IDs()[0] != "a" {
		t.Error("Expected IDs to return a copy")
	}
}

func TestParseInstructionsRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{"empty", "instructions: []", ErrEmptyRegistry},
		{"blank body", "instructions:\n  - id: a\n    body: '  '", ErrInvalidInstruction},
		{"blank id", "instructions:\n  - id: ''\n    body: text", ErrInvalidInstruction},
		{"duplicate", "instructions:\n  - id: a\n    body: x\n  - id: a\n    body: y", ErrDuplicateInstruction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInstructions([]byte(tt.yaml))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := ParseInstructions([]byte("instructions: [")); err == nil {
		t.Error("Expected malformed YAML to fail")
	}
}

func TestLoadInstructionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instructions.yaml")
	if err := os.WriteFile(path, []byte("instructions:\n  - id: custom\n    body: Do it\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	repo, err := LoadInstructionsFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in, ok := repo.Get("custom"); !ok || in.Body != "Do it" {
		t.Errorf("Expected custom instruction, got %+v", in)
	}

	if _, err := LoadInstructionsFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected missing file to fail")
	}
}

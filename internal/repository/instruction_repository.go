package repository

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed instructions.yaml
var defaultInstructions []byte

type instructionFile struct {
	Instructions []Instruction `yaml:"instructions"`
}

// YAMLInstructionRepository implements InstructionRepository over a YAML document
type YAMLInstructionRepository struct {
	byID map[string]Instruction
	ids  []string
}

// NewDefaultInstructionRepository loads the instructions compiled into the binary
func NewDefaultInstructionRepository() (*YAMLInstructionRepository, error) {
	return ParseInstructions(defaultInstructions)
}

// LoadInstructionsFile loads instructions from a YAML file on disk
func LoadInstructionsFile(path string) (*YAMLInstructionRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read instructions file %s: %w", path, err)
	}
	repo, err := ParseInstructions(data)
	if err != nil {
		return nil, fmt.Errorf("instructions file %s: %w", path, err)
	}
	return repo, nil
}

// ParseInstructions builds a repository from YAML, rejecting blank or duplicate entries.
func ParseInstructions(data []byte) (*YAMLInstructionRepository, error) {
	var file instructionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse instructions: %w", err)
	}
	if len(file.Instructions) == 0 {
		return nil, ErrEmptyRegistry
	}

	repo := &YAMLInstructionRepository{byID: make(map[string]Instruction, len(file.Instructions))}
	for i, in := range file.Instructions {
		in.ID = strings.TrimSpace(in.ID)
		in.Description = strings.TrimSpace(in.Description)
		in.Body = strings.TrimSpace(in.Body)

		if in.ID == "" {
			return nil, fmt.Errorf("%w: entry %d has no id", ErrInvalidInstruction, i)
		}
		if in.Body == "" {
			return nil, fmt.Errorf("%w: %q has an empty body", ErrInvalidInstruction, in.ID)
		}
		if _, exists := repo.byID[in.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateInstruction, in.ID)
		}
		repo.byID[in.ID] = in
		repo.ids = append(repo.ids, in.ID)
	}
	sort.Strings(repo.ids)

	return repo, nil
}

// Get returns the instruction registered under id. Lookup is exact and case-sensitive.
func (r *YAMLInstructionRepository) Get(id string) (Instruction, bool) {
	in, ok := r.byID[id]
	return in, ok
}

func (r *YAMLInstructionRepository) List() []Instruction {
	out := make([]Instruction, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.byID[id])
	}
	return out
}

func (r *YAMLInstructionRepository) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

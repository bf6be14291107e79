package repository

// Instruction is a named system message sent to the chat model
type Instruction struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Body        string `yaml:"body"`
}

// InstructionRepository defines read access to the instruction registry.
// Implementations are populated once at startup and safe for concurrent reads.
type InstructionRepository interface {
	// Get returns the instruction registered under id
	Get(id string) (Instruction, bool)

	// List returns all instructions ordered by id
	List() []Instruction

	// IDs returns the registered ids ordered lexically
	IDs() []string
}

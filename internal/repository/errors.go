package repository

import "errors"

var (
	// ErrEmptyRegistry indicates the source defined no instructions
	ErrEmptyRegistry = errors.New("instruction registry is empty")

	// ErrDuplicateInstruction indicates two entries share an id
	ErrDuplicateInstruction = errors.New("duplicate instruction id")

	// ErrInvalidInstruction indicates an entry with a blank id or body
	ErrInvalidInstruction = errors.New("invalid instruction")
)

// Package instruction decides which system message accompanies a request.
package instruction

import (
	"fmt"
	"strings"

	"github.com/arbovm/levenshtein"

	apperrors "github.com/sutinse/ai-analysis-api/internal/errors"
	"github.com/sutinse/ai-analysis-api/internal/repository"
	"github.com/sutinse/ai-analysis-api/pkg/models"
)

// maxSuggestionDistance bounds how far an unknown id may be from a known one to be suggested.
const maxSuggestionDistance = 3

// Resolver picks the instruction text for a request
type Resolver struct {
	repo repository.InstructionRepository
}

// NewResolver creates a resolver backed by repo
func NewResolver(repo repository.InstructionRepository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the custom instruction verbatim when present, otherwise the registered
// body for the named id.
func (r *Resolver) Resolve(req *models.AnalysisRequest) (string, error) {
	if req.HasCustomInstruction() {
		return req.CustomInstruction(), nil
	}

	id := req.NamedInstructionID()
	if strings.TrimSpace(id) == "" {
		return "", apperrors.NewMissingInstructionError(
			"either systemMessageId or customSystemMessage must be provided", nil)
	}

	in, ok := r.repo.Get(id)
	if !ok {
		msg := fmt.Sprintf("unknown systemMessageId %q", id)
		if s := r.suggest(id); s != "" {
			msg += fmt.Sprintf(", did you mean %q?", s)
		}
		return "", apperrors.NewUnknownInstructionError(msg, nil)
	}
	return in.Body, nil
}

func (r *Resolver) suggest(id string) string {
	best, bestDist := "", maxSuggestionDistance+1
	for _, known := range r.repo.IDs() {
		d := levenshtein.Distance(strings.ToLower(id), strings.ToLower(known))
		if d < bestDist {
			best, bestDist = known, d
		}
	}
	return best
}

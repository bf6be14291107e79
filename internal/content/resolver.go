package content

import (
	"context"
	"fmt"

	apperrors "github.com/sutinse/ai-analysis-api/internal/errors"
	"github.com/sutinse/ai-analysis-api/pkg/models"
)

// Resolver dispatches a request to the strategy for its input kind
type Resolver struct {
	strategies map[models.InputKind]ContentStrategy
}

// NewResolver creates a resolver from one strategy per input kind
func NewResolver(text, file, web ContentStrategy) *Resolver {
	return &Resolver{
		strategies: map[models.InputKind]ContentStrategy{
			models.InputKindText:   text,
			models.InputKindFile:   file,
			models.InputKindWebURL: web,
		},
	}
}

// Resolve returns the plain text to analyze
func (r *Resolver) Resolve(ctx context.Context, req *models.AnalysisRequest) (string, error) {
	strategy, ok := r.strategies[req.InputKind()]
	if !ok || strategy == nil {
		return "", apperrors.NewInternalError(
			fmt.Sprintf("no content strategy for input kind %q", req.InputKind()), nil)
	}
	return strategy.Resolve(ctx, req)
}

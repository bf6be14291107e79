package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/sutinse/ai-analysis-api/internal/errors"
	"github.com/sutinse/ai-analysis-api/internal/logger"
	"github.com/sutinse/ai-analysis-api/internal/observer"
	"github.com/sutinse/ai-analysis-api/internal/repository"
	"github.com/sutinse/ai-analysis-api/pkg/models"
)

// DefaultAnalysisTimeout bounds one whole analysis
const DefaultAnalysisTimeout = 5 * time.Minute

const tracerName = "github.com/sutinse/ai-analysis-api/internal/service"

// AnalysisService defines the operations exposed to the HTTP boundary
type AnalysisService interface {
	// Analyze runs one request through instruction and content resolution, embedding and completion
	Analyze(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResult, error)

	// SystemMessages lists the registered instructions
	SystemMessages() []repository.Instruction

	// Healthy reports whether the model gateway is usable
	Healthy() bool
}

// InstructionResolver picks the system message for a request
type InstructionResolver interface {
	Resolve(req *models.AnalysisRequest) (string, error)
}

// ContentResolver turns a request's input into plain text
type ContentResolver interface {
	Resolve(ctx context.Context, req *models.AnalysisRequest) (string, error)
}

// ModelGateway is the AI model client used by the service
type ModelGateway interface {
	Complete(ctx context.Context, instruction, content string) (string, error)
	Embed(ctx context.Context, content string) ([]float32, error)
	Healthy() bool
}

// analysisService implements AnalysisService
type analysisService struct {
	instructions InstructionResolver
	content      ContentResolver
	gateway      ModelGateway
	registry     repository.InstructionRepository
	events       observer.Subject
	timeout      time.Duration
	tracer       trace.Tracer
}

// NewAnalysisService creates a new analysis service. timeout <= 0 selects DefaultAnalysisTimeout.
func NewAnalysisService(
	instructions InstructionResolver,
	content ContentResolver,
	gateway ModelGateway,
	registry repository.InstructionRepository,
	events observer.Subject,
	timeout time.Duration,
) AnalysisService {
	if timeout <= 0 {
		timeout = DefaultAnalysisTimeout
	}
	if events == nil {
		events = observer.NewEventPublisher()
	}
	return &analysisService{
		instructions: instructions,
		content:      content,
		gateway:      gateway,
		registry:     registry,
		events:       events,
		timeout:      timeout,
		tracer:       otel.Tracer(tracerName),
	}
}

func (s *analysisService) SystemMessages() []repository.Instruction {
	return s.registry.List()
}

func (s *analysisService) Healthy() bool {
	return s.gateway.Healthy()
}

// Analyze resolves the instruction, then the content, then embeds (best effort) and
// completes. The steps run strictly in that order and the first failure aborts.
func (s *analysisService) Analyze(parent context.Context, req *models.AnalysisRequest) (result *models.AnalysisResult, err error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "analysis.analyze", trace.WithAttributes(
		attribute.String("analysis.input_kind", string(req.InputKind())),
		attribute.String("analysis.system_message", req.InstructionSource()),
	))
	defer span.End()

	base := observer.AnalysisEvent{
		RequestID:         RequestIDFromContext(parent),
		InputKind:         string(req.InputKind()),
		InstructionSource: req.InstructionSource(),
	}
	s.publish(ctx, base, observer.AnalysisStarted)

	defer func() {
		if err == nil {
			return
		}
		err = s.timeoutError(parent, ctx, err)
		recordError(span, err)

		ev := base
		ev.ProcessingTime = time.Since(start)
		ev.ErrorMessage = err.Error()
		ev.ErrorType = string(apperrors.ErrorTypeInternal)
		if appErr, ok := apperrors.As(err); ok {
			ev.ErrorType = string(appErr.Type)
		}
		s.events.NotifyObservers(ctx, withType(ev, observer.AnalysisFailed))
	}()

	instruction, err := s.instructions.Resolve(req)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, base, observer.InstructionResolved)

	content, err := s.resolveContent(ctx, req)
	if err != nil {
		return nil, err
	}
	ev := base
	ev.Metadata = map[string]interface{}{"content_chars": utf8.RuneCountInString(content)}
	s.events.NotifyObservers(ctx, withType(ev, observer.ContentResolved))

	s.embed(ctx, base, content)

	answer, err := s.complete(ctx, instruction, content)
	if err != nil {
		return nil, err
	}

	result = &models.AnalysisResult{
		ID:                uuid.NewString(),
		Timestamp:         time.Now().UTC(),
		ResultText:        answer,
		InputKind:         req.InputKind(),
		InstructionSource: req.InstructionSource(),
		Format:            req.ResponseFormat(),
	}
	span.SetAttributes(attribute.String("analysis.id", result.ID))

	done := base
	done.Success = true
	done.ProcessingTime = time.Since(start)
	done.Metadata = map[string]interface{}{"analysis_id": result.ID}
	s.events.NotifyObservers(ctx, withType(done, observer.AnalysisCompleted))

	return result, nil
}

func (s *analysisService) resolveContent(ctx context.Context, req *models.AnalysisRequest) (string, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.resolve_content")
	defer span.End()

	content, err := s.content.Resolve(ctx, req)
	if err != nil {
		recordError(span, err)
		return "", err
	}
	span.SetAttributes(attribute.Int("content.chars", utf8.RuneCountInString(content)))
	return content, nil
}

// embed never fails the analysis. Errors and panics are logged and published.
func (s *analysisService) embed(ctx context.Context, base observer.AnalysisEvent, content string) {
	ctx, span := s.tracer.Start(ctx, "analysis.embed")
	defer span.End()

	fail := func(err error) {
		recordError(span, err)
		ev := base
		ev.ErrorMessage = err.Error()
		ev.ErrorType = string(apperrors.ErrorTypeInternal)
		if appErr, ok := apperrors.As(err); ok {
			ev.ErrorType = string(appErr.Type)
		}
		s.events.NotifyObservers(ctx, withType(ev, observer.EmbeddingFailed))
	}

	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Errorf("embedding panicked: %v", r))
		}
	}()

	vector, err := s.gateway.Embed(ctx, content)
	if err != nil {
		fail(err)
		return
	}

	span.SetAttributes(attribute.Int("embedding.dimensions", len(vector)))
	logger.WithFields(logrus.Fields{
		"request_id": base.RequestID,
		"dimensions": len(vector),
	}).Debug("Embedding generated")
}

func (s *analysisService) complete(ctx context.Context, instruction, content string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.complete")
	defer span.End()

	answer, err := s.gateway.Complete(ctx, instruction, content)
	if err != nil {
		recordError(span, err)
		if apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
			return "", apperrors.NewModelTimeoutError("AI model did not respond in time", err)
		}
		return "", apperrors.NewModelInvocationError("AI model call failed", err)
	}
	if strings.TrimSpace(answer) == "" {
		err := apperrors.NewModelInvocationError("AI model returned an empty response", nil)
		recordError(span, err)
		return "", err
	}
	return answer, nil
}

// timeoutError replaces err with the model timeout variant when the analysis deadline,
// not the caller, ended the work.
func (s *analysisService) timeoutError(parent, ctx context.Context, err error) error {
	if !errors.Is(ctx.Err(), context.DeadlineExceeded) || parent.Err() != nil {
		return err
	}
	if appErr, ok := apperrors.As(err); ok && appErr.Type == apperrors.ErrorTypeModelInvocation && appErr.StatusCode == http.StatusGatewayTimeout {
		return err
	}
	return apperrors.NewModelTimeoutError(fmt.Sprintf("analysis did not finish within %s", s.timeout), err)
}

func (s *analysisService) publish(ctx context.Context, base observer.AnalysisEvent, t observer.EventType) {
	s.events.NotifyObservers(ctx, withType(base, t))
}

func withType(ev observer.AnalysisEvent, t observer.EventType) observer.AnalysisEvent {
	ev.EventType = t
	ev.Timestamp = time.Now()
	return ev
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

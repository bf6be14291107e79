package container

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sutinse/ai-analysis-api/internal/config"
	"github.com/sutinse/ai-analysis-api/internal/content"
	"github.com/sutinse/ai-analysis-api/internal/factory"
	"github.com/sutinse/ai-analysis-api/internal/gateway"
	"github.com/sutinse/ai-analysis-api/internal/instruction"
	"github.com/sutinse/ai-analysis-api/internal/logger"
	"github.com/sutinse/ai-analysis-api/internal/observer"
	"github.com/sutinse/ai-analysis-api/internal/repository"
	"github.com/sutinse/ai-analysis-api/internal/service"
	"github.com/sutinse/ai-analysis-api/internal/transport"
	"github.com/sutinse/ai-analysis-api/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	instructions    repository.InstructionRepository
	gateway         *gateway.AzureGateway
	analysisService service.AnalysisService
	registry        *prometheus.Registry
	handler         http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	if err := cfg.AI.Validate(); err != nil {
		return nil, err
	}

	instructions, err := LoadInstructions(cfg)
	if err != nil {
		return nil, err
	}

	components := factory.NewComponentFactory(cfg.WebFetchTimeout)
	fetcher, err := components.StorageFactory.CreateStorage(factory.HTTPStorage)
	if err != nil {
		return nil, err
	}

	contentResolver := content.NewResolver(
		content.NewTextStrategy(),
		content.NewFileStrategy(
			validation.NewFileValidatorWithOptions(validation.DefaultAllowedExtensions, cfg.MaxFileSize),
			components.ExtractorFactory,
		),
		content.NewWebStrategy(
			fetcher,
			validation.NewURLValidatorWithOptions(validation.DefaultAllowedSchemes, cfg.WebURLAllowedHosts),
			cfg.MaxWebContentLength,
		),
	)

	gw := gateway.NewAzureGateway(
		gateway.Credentials{Endpoint: cfg.AI.Endpoint, APIKey: cfg.AI.APIKey, Deployment: cfg.AI.DeploymentName},
		gateway.Credentials{Endpoint: cfg.AI.EmbeddingEndpoint, APIKey: cfg.AI.EmbeddingAPIKey, Deployment: cfg.AI.EmbeddingDeployment},
		cfg.AI.APIVersion,
		gateway.DefaultOptions().
			WithTimeouts(cfg.AI.ChatTimeout, cfg.AI.EmbeddingTimeout).
			WithRetry(cfg.AI.MaxAttempts, 0, 0),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics, err := observer.NewMetricsObserver(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	analysisService := service.NewAnalysisService(
		instruction.NewResolver(instructions),
		contentResolver,
		gw,
		instructions,
		events,
		cfg.AnalysisTimeout,
	)

	handler, err := transport.NewHandler(analysisService, cfg, registry)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP handler: %w", err)
	}

	return &Container{
		config:          cfg,
		instructions:    instructions,
		gateway:         gw,
		analysisService: analysisService,
		registry:        registry,
		handler:         handler,
	}, nil
}

// LoadInstructions reads INSTRUCTIONS_FILE when set, otherwise the built-in registry
func LoadInstructions(cfg *config.Config) (repository.InstructionRepository, error) {
	if cfg.InstructionsFile != "" {
		repo, err := repository.LoadInstructionsFile(cfg.InstructionsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load instructions: %w", err)
		}
		return repo, nil
	}
	repo, err := repository.NewDefaultInstructionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in instructions: %w", err)
	}
	return repo, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Package gateway talks to the Azure-hosted chat and embedding models.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	apperrors "github.com/sutinse/ai-analysis-api/internal/errors"
	"github.com/sutinse/ai-analysis-api/internal/logger"
)

// Credentials locate one Azure deployment
type Credentials struct {
	Endpoint   string
	APIKey     string
	Deployment string
}

func (c Credentials) validate(kind string) error {
	var missing []string
	if strings.TrimSpace(c.Endpoint) == "" {
		missing = append(missing, "endpoint")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		missing = append(missing, "api key")
	}
	if strings.TrimSpace(c.Deployment) == "" {
		missing = append(missing, "deployment name")
	}
	if len(missing) > 0 {
		return apperrors.NewConfigurationError(
			fmt.Sprintf("%s model is not configured: missing %s", kind, strings.Join(missing, ", ")), nil)
	}
	return nil
}

type lazyClient struct {
	once   sync.Once
	client *openai.Client
	err    error
}

// AzureGateway implements the model gateway over Azure OpenAI deployments.
// Clients are created on first use and shared by all requests.
type AzureGateway struct {
	chatCreds      Credentials
	embeddingCreds Credentials
	apiVersion     string
	opts           Options

	chat      lazyClient
	embedding lazyClient
}

// NewAzureGateway creates a gateway. No network call happens until the first request.
func NewAzureGateway(chat, embedding Credentials, apiVersion string, opts Options) *AzureGateway {
	return &AzureGateway{
		chatCreds:      chat,
		embeddingCreds: embedding,
		apiVersion:     apiVersion,
		opts:           opts,
	}
}

func (g *AzureGateway) newClient(creds Credentials) *openai.Client {
	cfg := openai.DefaultAzureConfig(creds.APIKey, creds.Endpoint)
	if g.apiVersion != "" {
		cfg.APIVersion = g.apiVersion
	}
	// deployment names are used as-is
	cfg.AzureModelMapperFunc = func(model string) string { return model }
	if g.opts.HTTPClient != nil {
		cfg.HTTPClient = g.opts.HTTPClient
	}
	return openai.NewClientWithConfig(cfg)
}

func (g *AzureGateway) clientFor(lc *lazyClient, creds Credentials, kind string) (*openai.Client, error) {
	lc.once.Do(func() {
		if err := creds.validate(kind); err != nil {
			lc.err = err
			logger.WithError(err).Error("Model client initialization failed")
			return
		}
		lc.client = g.newClient(creds)
		logger.WithFields(logrus.Fields{
			"kind":       kind,
			"endpoint":   creds.Endpoint,
			"deployment": creds.Deployment,
		}).Info("Model client initialized")
	})
	return lc.client, lc.err
}

// Healthy reports whether both clients are, or can be, initialized
func (g *AzureGateway) Healthy() bool {
	if _, err := g.clientFor(&g.chat, g.chatCreds, "chat"); err != nil {
		return false
	}
	_, err := g.clientFor(&g.embedding, g.embeddingCreds, "embedding")
	return err == nil
}

// Complete sends instruction as the system message and content as the user message
// and returns the first choice's text.
func (g *AzureGateway) Complete(ctx context.Context, instruction, content string) (string, error) {
	client, err := g.clientFor(&g.chat, g.chatCreds, "chat")
	if err != nil {
		return "", err
	}

	if logger.DebugEnabled() {
		logger.WithFields(logrus.Fields{
			"deployment":       g.chatCreds.Deployment,
			"estimated_tokens": estimateTokens(instruction, content),
		}).Debug("Sending chat completion")
	}

	req := openai.ChatCompletionRequest{
		Model: g.chatCreds.Deployment,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instruction},
			{Role: openai.ChatMessageRoleUser, Content: content},
		},
	}

	var answer string
	err = g.retry(ctx, "chat completion", g.opts.ChatTimeout, func(attemptCtx context.Context) error {
		resp, err := client.CreateChatCompletion(attemptCtx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return apperrors.NewUpstreamError("chat completion returned no choices", nil)
		}
		answer = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}
	return answer, nil
}

// Embed returns the embedding vector of content. Oversized or empty input is refused
// without contacting the service.
func (g *AzureGateway) Embed(ctx context.Context, content string) ([]float32, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewInvalidInputError("embedding input is empty", nil)
	}
	if n := utf8.RuneCountInString(content); n > g.opts.MaxEmbeddingChars {
		return nil, apperrors.NewInvalidInputError(
			fmt.Sprintf("embedding input too long: %d characters (max %d)", n, g.opts.MaxEmbeddingChars), nil)
	}

	client, err := g.clientFor(&g.embedding, g.embeddingCreds, "embedding")
	if err != nil {
		return nil, err
	}

	req := openai.EmbeddingRequest{
		Input: []string{content},
		Model: openai.EmbeddingModel(g.embeddingCreds.Deployment),
	}

	var vector []float32
	err = g.retry(ctx, "embedding", g.opts.EmbeddingTimeout, func(attemptCtx context.Context) error {
		resp, err := client.CreateEmbeddings(attemptCtx, req)
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return apperrors.NewUpstreamError("embedding response contained no vectors", nil)
		}
		vector = resp.Data[0].Embedding
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vector, nil
}

// retry runs call up to MaxAttempts times, each bounded by timeout. Only connection
// failures, timeouts, rate limiting and 5xx responses are retried.
func (g *AzureGateway) retry(ctx context.Context, op string, timeout time.Duration, call func(context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.opts.InitialBackoff
	b.MaxInterval = g.opts.MaxBackoff
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxElapsedTime = 0

	attempts := g.opts.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)

	attempt := 0
	operation := func() error {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		err := call(attemptCtx)
		if err == nil {
			return nil
		}

		appErr, retryable := classify(op, err)
		if ctx.Err() != nil {
			return backoff.Permanent(apperrors.NewTimeoutError(op+" deadline exceeded", ctx.Err()))
		}
		if !retryable {
			return backoff.Permanent(appErr)
		}
		return appErr
	}

	notify := func(err error, wait time.Duration) {
		logger.WithFields(logrus.Fields{
			"operation": op,
			"attempt":   attempt,
			"wait_ms":   wait.Milliseconds(),
		}).WithError(err).Warn("Model call failed, retrying")
	}

	err := backoff.RetryNotify(operation, policy, notify)
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	// the policy stops with the bare context error when ctx ends between attempts
	appErr, _ := classify(op, err)
	return appErr
}

package gateway

import (
	"net/http"
	"time"
)

// Options tunes timeouts and retries of the model gateway
type Options struct {
	// Per-attempt timeouts
	ChatTimeout      time.Duration
	EmbeddingTimeout time.Duration

	// Retry policy. Backoff grows exponentially without jitter.
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Longest content, in characters, accepted for embedding
	MaxEmbeddingChars int

	// HTTPClient overrides the client used for Azure calls; nil uses the library default
	HTTPClient *http.Client
}

// DefaultOptions returns default gateway options
func DefaultOptions() Options {
	return Options{
		ChatTimeout:       2 * time.Minute,
		EmbeddingTimeout:  1 * time.Minute,
		MaxAttempts:       3,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		MaxEmbeddingChars: 50_000,
	}
}

// WithTimeouts sets the per-attempt chat and embedding timeouts
func (opts Options) WithTimeouts(chat, embedding time.Duration) Options {
	if chat > 0 {
		opts.ChatTimeout = chat
	}
	if embedding > 0 {
		opts.EmbeddingTimeout = embedding
	}
	return opts
}

// WithRetry sets the attempt budget and backoff bounds
func (opts Options) WithRetry(maxAttempts int, initial, max time.Duration) Options {
	if maxAttempts > 0 {
		opts.MaxAttempts = maxAttempts
	}
	if initial > 0 {
		opts.InitialBackoff = initial
	}
	if max > 0 {
		opts.MaxBackoff = max
	}
	return opts
}

// WithMaxEmbeddingChars sets the embedding input ceiling
func (opts Options) WithMaxEmbeddingChars(n int) Options {
	if n > 0 {
		opts.MaxEmbeddingChars = n
	}
	return opts
}

// WithHTTPClient sets the HTTP client shared by both Azure clients
func (opts Options) WithHTTPClient(c *http.Client) Options {
	opts.HTTPClient = c
	return opts
}

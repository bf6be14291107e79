package gateway

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/sutinse/ai-analysis-api/internal/logger"
)

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

// estimateTokens counts cl100k tokens, or returns -1 when the codec is unavailable
func estimateTokens(texts ...string) int {
	codecOnce.Do(func() {
		c, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err != nil {
			logger.WithError(err).Warn("Tokenizer unavailable, token estimates disabled")
			return
		}
		codec = c
	})
	if codec == nil {
		return -1
	}

	total := 0
	for _, text := range texts {
		ids, _, err := codec.Encode(text)
		if err != nil {
			return -1
		}
		total += len(ids)
	}
	return total
}

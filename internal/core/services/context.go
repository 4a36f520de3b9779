package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quest-cli/internal/logger"
)

// ContextExtractor selects the snapshot stored with a new quest.
// Without a ranker it takes the middle of the document. With one, it asks
// the ranker for the most relevant excerpt and falls back to the middle
// window when the ranker fails or returns something unusable.
type ContextExtractor struct {
	ranker  driven.ContextRanker
	enabled bool
}

// NewContextExtractor creates an extractor. ranker may be nil.
func NewContextExtractor(ranker driven.ContextRanker, enabled bool) *ContextExtractor {
	return &ContextExtractor{ranker: ranker, enabled: enabled}
}

// Extract returns an excerpt of text of at most targetSize words.
func (e *ContextExtractor) Extract(ctx context.Context, text, question string, targetSize int) string {
	if targetSize <= 0 {
		targetSize = domain.DefaultContextSize
	}
	baseline := domain.ExtractContext(text, question, targetSize)
	if e == nil || e.ranker == nil || !e.enabled {
		return baseline
	}
	if domain.WordCount(text) <= targetSize {
		return baseline
	}

	excerpt, err := e.ranker.RankContext(ctx, text, question, targetSize)
	if err != nil {
		logger.Warn("context ranking failed, using midpoint window: %v", err)
		return baseline
	}
	excerpt = strings.TrimSpace(excerpt)
	if excerpt == "" {
		logger.Debug("context ranking returned nothing, using midpoint window")
		return baseline
	}
	if n := domain.WordCount(excerpt); n > targetSize {
		logger.Debug("ranked excerpt has %d words (limit %d), using midpoint window", n, targetSize)
		return baseline
	}
	return excerpt
}

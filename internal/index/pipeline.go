package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sthimark/quakeboard/internal/embed"
	"github.com/sthimark/quakeboard/internal/normalize"
	"github.com/sthimark/quakeboard/internal/source"
)

// DefaultBatchSize is how many messages are embedded and upserted per round.
const DefaultBatchSize = 32

// Pipeline drives the corpus through load, normalize, embed, and upsert.
type Pipeline struct {
	CSV       *source.CSVSource
	Embedder  embed.Embedder
	Indexer   Indexer
	BatchSize int
	Logger    *slog.Logger
}

// Stats summarizes one pipeline run.
type Stats struct {
	Loaded  int
	Indexed int
	Batches int
}

// Run indexes the whole corpus. The normalizer's dedup applies before
// embedding, so re-sent duplicates never cost an inference pass.
func (p *Pipeline) Run(ctx context.Context) (Stats, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	batchSize := p.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	records, err := p.CSV.Read()
	if err != nil {
		return Stats{}, fmt.Errorf("loading corpus: %w", err)
	}
	msgs := normalize.Normalize(records)
	stats := Stats{Loaded: len(msgs)}

	if err := p.Indexer.EnsureCollection(ctx, p.Embedder.Dimensions()); err != nil {
		return stats, fmt.Errorf("preparing collection: %w", err)
	}

	for start := 0; start < len(msgs); start += batchSize {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		end := start + batchSize
		if end > len(msgs) {
			end = len(msgs)
		}
		batch := msgs[start:end]

		texts := make([]string, len(batch))
		for i, m := range batch {
			texts[i] = m.Text
		}
		vectors, err := p.Embedder.EmbedBatch(texts)
		if err != nil {
			return stats, fmt.Errorf("embedding batch at %d: %w", start, err)
		}

		embedded := make([]EmbeddedMessage, len(batch))
		for i := range batch {
			embedded[i] = EmbeddedMessage{Message: batch[i], Vector: vectors[i]}
		}
		if err := p.Indexer.UpsertBatch(ctx, embedded); err != nil {
			return stats, fmt.Errorf("indexing batch at %d: %w", start, err)
		}

		stats.Indexed += len(batch)
		stats.Batches++
		logger.Info("indexed batch", "batch", stats.Batches, "messages", stats.Indexed)
	}
	return stats, nil
}

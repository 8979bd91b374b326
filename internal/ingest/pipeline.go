package ingest

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/cholinyo/chatbot-comparador/internal/embeddings"
	"github.com/cholinyo/chatbot-comparador/internal/fragmenter"
	"github.com/cholinyo/chatbot-comparador/internal/manifest"
	"github.com/cholinyo/chatbot-comparador/internal/progress"
	"github.com/cholinyo/chatbot-comparador/internal/vectorstore"
)

// Pipeline runs collected artifacts through fragment -> embed -> index and
// keeps the manifest in sync so unchanged artifacts are skipped next time.
type Pipeline struct {
	Embedder    embeddings.Embedder
	Manifest    *manifest.Manifest // nil disables checksum skipping.
	Indices     map[vectorstore.SourceCategory]*vectorstore.SourceIndex
	MaxChars    int
	Overlap     int
	Concurrency int
	Reporter    progress.Reporter
	Logger      *log.Logger
}

// Stats summarizes one ingestion run. Per-artifact failures are collected
// in Errors; they never abort the run.
type Stats struct {
	Collected int
	Ingested  int
	Skipped   int
	Failed    int
	Fragments int
	Duration  time.Duration
	Errors    []error
}

// Run ingests one source end to end.
func (p *Pipeline) Run(ctx context.Context, ing Ingestor) (*Stats, error) {
	start := time.Now()
	category := ing.Category()

	index, ok := p.Indices[category]
	if !ok {
		return nil, fmt.Errorf("no index registered for category %s", category)
	}

	items, warnings, err := ing.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting %s sources: %w", category, err)
	}
	for _, warning := range warnings {
		p.logf("warning: %s", warning)
	}

	stats := &Stats{Collected: len(items)}

	// Drop unchanged artifacts before spending embedding calls on them.
	var pending []Item
	for _, item := range items {
		if p.Manifest != nil && item.Checksum != "" {
			recorded, err := p.Manifest.Checksum(category, item.ArtifactID)
			if err != nil {
				stats.Errors = append(stats.Errors, fmt.Errorf("manifest lookup %s: %w", item.ArtifactID, err))
				stats.Failed++
				continue
			}
			if recorded == item.Checksum {
				stats.Skipped++
				continue
			}
		}
		pending = append(pending, item)
	}

	reporter := p.Reporter
	if reporter == nil {
		reporter = progress.Silent{}
	}
	reporter.Start(len(pending))
	defer reporter.Finish()

	concurrency := p.Concurrency
	if concurrency < 1 {
		concurrency = 4
	}

	sem := make(chan struct{}, concurrency)
	var mu sync.Mutex
	var processed int64
	var wg sync.WaitGroup

	for _, item := range pending {
		select {
		case <-ctx.Done():
			mu.Lock()
			stats.Errors = append(stats.Errors, ctx.Err())
			stats.Failed++
			mu.Unlock()
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(item Item) {
			defer wg.Done()
			defer func() { <-sem }()

			count, err := p.ingestItem(ctx, category, index, item)
			mu.Lock()
			if err != nil {
				stats.Errors = append(stats.Errors, fmt.Errorf("ingest %s: %w", item.ArtifactID, err))
				stats.Failed++
			} else {
				stats.Ingested++
				stats.Fragments += count
			}
			mu.Unlock()

			done := atomic.AddInt64(&processed, 1)
			reporter.Update(int(done), item.ArtifactID)
		}(item)
	}
	wg.Wait()

	stats.Duration = time.Since(start)
	return stats, nil
}

// ingestItem fragments one artifact, embeds the fragments, and replaces the
// artifact's entry in the index and manifest.
func (p *Pipeline) ingestItem(ctx context.Context, category vectorstore.SourceCategory, index *vectorstore.SourceIndex, item Item) (int, error) {
	chunks := fragmenter.Split(item.Text, p.MaxChars, p.Overlap)
	if len(chunks) == 0 {
		return 0, nil
	}

	vectors, err := p.Embedder.Embed(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embedding: %w", err)
	}

	fragments := make([]vectorstore.Fragment, len(chunks))
	for i, chunk := range chunks {
		prov := map[string]string{
			vectorstore.ProvArtifact: item.ArtifactID,
			vectorstore.ProvChunk:    strconv.Itoa(i),
			vectorstore.ProvChecksum: item.Checksum,
		}
		for k, v := range item.Provenance {
			prov[k] = v
		}
		fragments[i] = vectorstore.Fragment{
			ID:         uuid.NewString(),
			Text:       chunk,
			Category:   category,
			Provenance: prov,
		}
	}

	if err := index.ReplaceArtifact(item.ArtifactID, fragments, vectors); err != nil {
		return 0, fmt.Errorf("indexing: %w", err)
	}

	if p.Manifest != nil {
		if err := p.Manifest.Record(category, item.ArtifactID, item.Checksum, len(fragments)); err != nil {
			return 0, fmt.Errorf("recording manifest: %w", err)
		}
	}
	return len(fragments), nil
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.Logger != nil {
		p.Logger.Printf(format, args...)
	} else {
		log.Printf(format, args...)
	}
}

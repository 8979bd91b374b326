// Package ingest collects raw text from the configured sources (document
// folders, municipal web sites, REST APIs) and pushes it through the
// fragment-embed-index pipeline.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/cholinyo/chatbot-comparador/internal/vectorstore"
)

// Item is one raw artifact produced by an ingestor, before fragmentation.
type Item struct {
	ArtifactID string
	Text       string
	Checksum   string
	Provenance map[string]string
}

// Ingestor collects artifacts for a single source category. Collect returns
// the artifacts plus per-artifact warnings for content that had to be
// skipped; the error is reserved for failures that abort the whole source.
type Ingestor interface {
	Category() vectorstore.SourceCategory
	Collect(ctx context.Context) ([]Item, []string, error)
}

func checksumBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func checksumString(s string) string {
	return checksumBytes([]byte(s))
}

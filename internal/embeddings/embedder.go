package embeddings

import (
	"context"
	"errors"
	"fmt"
)

// ErrModelUnavailable indicates the embedding backend could not be
// reached. Callers must not index zero-vectors in its place.
var ErrModelUnavailable = errors.New("embedding model unavailable")

// Embedder defines the interface for generating text embeddings.
//
// Indexing and querying must use the same underlying model within one
// deployment; mixing models produces meaningless distances. This is a
// configuration precondition, not something the implementations enforce.
type Embedder interface {
	// Embed generates embeddings for one or more texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}

// EmbedOne embeds a single text as a batch of one. Used for queries.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one text", len(vecs))
	}
	return vecs[0], nil
}

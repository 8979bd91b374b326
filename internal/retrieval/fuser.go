// Package retrieval fuses nearest-neighbour results from the per-source
// vector indices into one globally ranked list.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/cholinyo/chatbot-comparador/internal/embeddings"
	"github.com/cholinyo/chatbot-comparador/internal/vectorstore"
)

// Result is one retrieved fragment annotated with its originating
// category and its L2 distance to the query (lower = more relevant).
type Result struct {
	Text       string                     `json:"text"`
	Provenance map[string]string          `json:"provenance"`
	Category   vectorstore.SourceCategory `json:"category"`
	Distance   float32                    `json:"distance"`
}

// Fuser queries multiple per-source indices and merges their results.
// Each source keeps its own index so provenance and staleness stay
// independent and one missing source never breaks the others; distances
// remain comparable because all indices share one embedding space.
type Fuser struct {
	embedder embeddings.Embedder
	indices  []*vectorstore.SourceIndex // registration order breaks distance ties
}

// NewFuser creates a fuser over the given indices. The order in which
// indices are passed is the tie-break order for identical distances.
func NewFuser(embedder embeddings.Embedder, indices ...*vectorstore.SourceIndex) *Fuser {
	return &Fuser{embedder: embedder, indices: indices}
}

// Categories returns the categories registered with the fuser, in
// registration order.
func (f *Fuser) Categories() []vectorstore.SourceCategory {
	cats := make([]vectorstore.SourceCategory, len(f.indices))
	for i, idx := range f.indices {
		cats[i] = idx.Category()
	}
	return cats
}

// Retrieve embeds the query once, searches every requested category's
// index at full k, applies the optional provenance filters, and returns
// the merged pool sorted ascending by distance, truncated to k.
//
// A nil or empty categories set means all registered categories. An
// empty result is a valid outcome (all indices empty or unavailable);
// callers fall back to a no-context prompt.
func (f *Fuser) Retrieve(ctx context.Context, query string, k int, categories []vectorstore.SourceCategory, filters map[string]string) ([]Result, error) {
	if k <= 0 {
		return nil, nil
	}

	queryVec, err := embeddings.EmbedOne(ctx, f.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	wanted := make(map[vectorstore.SourceCategory]bool, len(categories))
	for _, c := range categories {
		wanted[c] = true
	}

	var (
		pool     []Result
		searched int
		errs     []error
	)
	for _, idx := range f.indices {
		if len(wanted) > 0 && !wanted[idx.Category()] {
			continue
		}
		searched++

		hits, err := idx.Search(queryVec, k)
		if err != nil {
			// Partial availability: one broken index must not take
			// retrieval from the others down with it.
			errs = append(errs, fmt.Errorf("%s: %w", idx.Category(), err))
			continue
		}
		for _, hit := range hits {
			frag := idx.FragmentAt(hit.Position)
			if !matchesFilters(frag.Provenance, filters) {
				continue
			}
			pool = append(pool, Result{
				Text:       frag.Text,
				Provenance: frag.Provenance,
				Category:   frag.Category,
				Distance:   hit.Distance,
			})
		}
	}

	if len(pool) == 0 && searched > 0 && len(errs) == searched {
		return nil, errors.Join(errs...)
	}

	// Stable sort keeps the category registration order for equal
	// distances, so fused rankings are reproducible.
	sort.SliceStable(pool, func(a, b int) bool { return pool[a].Distance < pool[b].Distance })

	if k < len(pool) {
		pool = pool[:k]
	}
	return pool, nil
}

// matchesFilters reports whether provenance satisfies every filter
// entry by exact match.
func matchesFilters(provenance, filters map[string]string) bool {
	for key, want := range filters {
		if provenance[key] != want {
			return false
		}
	}
	return true
}

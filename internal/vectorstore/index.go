package vectorstore

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDimensionMismatch indicates a vector whose dimensionality differs
// from the index's, or a persisted index built with a different
// embedding model than the active one.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Hit is one nearest-neighbour match: the position of the fragment
// within the index and its L2 distance to the query (squared Euclidean,
// lower is more relevant).
type Hit struct {
	Position int
	Distance float32
}

// SourceIndex owns the three parallel collections for one source
// category. All three always have equal length; any append that would
// break that invariant rolls back fully, including across a crash
// mid-write (persistence is a single temp-file-then-rename snapshot).
//
// A SourceIndex is safe for concurrent use: writers serialize, readers
// proceed against the last committed state and never block on an
// in-progress write.
type SourceIndex struct {
	mu         sync.RWMutex
	dir        string
	category   SourceCategory
	dimensions int

	vectors   [][]float32
	texts     []string
	metadata  []map[string]string
	fragments []Fragment // derived view, kept aligned with the three collections
}

// Open loads the index for one category from dir. A missing or corrupt
// snapshot yields an empty index and a warning (first-run behaviour is
// "no fragments found", not a startup crash); the warning, if any, is
// returned for the operator. A snapshot whose stored dimensionality
// disagrees with dimensions is a hard error: searching it with the
// active embedder would produce meaningless distances.
func Open(dir string, category SourceCategory, dimensions int) (*SourceIndex, string, error) {
	if dimensions <= 0 {
		return nil, "", fmt.Errorf("vectorstore: invalid dimensions %d", dimensions)
	}

	idx := &SourceIndex{
		dir:        dir,
		category:   category,
		dimensions: dimensions,
	}

	snap, warn, err := loadSnapshot(dir)
	if err != nil {
		return nil, "", err
	}
	if snap != nil {
		if len(snap.Vectors) > 0 && snap.Dimensions != dimensions {
			return nil, "", fmt.Errorf("%w: index %s persisted with %d dimensions, embedder produces %d",
				ErrDimensionMismatch, dir, snap.Dimensions, dimensions)
		}
		idx.vectors = snap.Vectors
		idx.texts = snap.Texts
		idx.metadata = snap.Metadata
		idx.rebuildFragments(snap.IDs)
	}
	return idx, warn, nil
}

// rebuildFragments regenerates the Fragment view from the parallel
// collections after a load.
func (s *SourceIndex) rebuildFragments(ids []string) {
	s.fragments = make([]Fragment, len(s.texts))
	for i := range s.texts {
		var id string
		if i < len(ids) {
			id = ids[i]
		}
		s.fragments[i] = Fragment{
			ID:         id,
			Text:       s.texts[i],
			Category:   s.category,
			Provenance: s.metadata[i],
		}
	}
}

// Category returns the source category this index owns.
func (s *SourceIndex) Category() SourceCategory { return s.category }

// Dimensions returns the fixed vector dimensionality of the index.
func (s *SourceIndex) Dimensions() int { return s.dimensions }

// Len returns the number of indexed fragments.
func (s *SourceIndex) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.texts)
}

// FragmentAt returns the fragment at position i from the last committed
// state.
func (s *SourceIndex) FragmentAt(i int) Fragment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fragments[i]
}

// Add appends fragments and their vectors to the three collections and
// persists the result atomically: either all collections are updated
// and flushed, or the in-memory and on-disk state both remain as
// before.
func (s *SourceIndex) Add(fragments []Fragment, vectors [][]float32) error {
	return s.replace("", fragments, vectors)
}

// ReplaceArtifact removes every fragment whose provenance groups it
// under artifactID, appends the given fragments, and persists
// atomically. Used for checksum-based re-ingestion of changed
// artifacts.
func (s *SourceIndex) ReplaceArtifact(artifactID string, fragments []Fragment, vectors [][]float32) error {
	if artifactID == "" {
		return fmt.Errorf("vectorstore: empty artifact id")
	}
	return s.replace(artifactID, fragments, vectors)
}

// DeleteArtifact removes every fragment grouped under artifactID.
func (s *SourceIndex) DeleteArtifact(artifactID string) error {
	if artifactID == "" {
		return fmt.Errorf("vectorstore: empty artifact id")
	}
	return s.replace(artifactID, nil, nil)
}

// replace is the single write path: drop artifactID's fragments (when
// set), append the new ones, persist to a temp file, rename, then swap
// the in-memory collections. Readers holding the read lock during the
// snapshot write simply see pre-write state.
func (s *SourceIndex) replace(artifactID string, fragments []Fragment, vectors [][]float32) error {
	if len(fragments) != len(vectors) {
		return fmt.Errorf("vectorstore: %d fragments with %d vectors", len(fragments), len(vectors))
	}
	for i, v := range vectors {
		if len(v) != s.dimensions {
			return fmt.Errorf("%w: vector %d has %d dimensions, index requires %d",
				ErrDimensionMismatch, i, len(v), s.dimensions)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Build the post-write collections without touching the live ones.
	n := len(s.texts) + len(fragments)
	newVectors := make([][]float32, 0, n)
	newTexts := make([]string, 0, n)
	newMetadata := make([]map[string]string, 0, n)
	newFragments := make([]Fragment, 0, n)

	for i, frag := range s.fragments {
		if artifactID != "" && frag.Artifact() == artifactID {
			continue
		}
		newVectors = append(newVectors, s.vectors[i])
		newTexts = append(newTexts, s.texts[i])
		newMetadata = append(newMetadata, s.metadata[i])
		newFragments = append(newFragments, frag)
	}
	for i, frag := range fragments {
		frag.Category = s.category
		newVectors = append(newVectors, vectors[i])
		newTexts = append(newTexts, frag.Text)
		newMetadata = append(newMetadata, frag.Provenance)
		newFragments = append(newFragments, frag)
	}

	ids := make([]string, len(newFragments))
	for i, f := range newFragments {
		ids[i] = f.ID
	}

	snap := &snapshot{
		Category:   s.category,
		Dimensions: s.dimensions,
		IDs:        ids,
		Vectors:    newVectors,
		Texts:      newTexts,
		Metadata:   newMetadata,
	}
	if err := writeSnapshot(s.dir, snap); err != nil {
		// On-disk state is untouched (temp file only); keep memory in sync.
		return fmt.Errorf("vectorstore: persist %s: %w", s.category, err)
	}

	s.vectors = newVectors
	s.texts = newTexts
	s.metadata = newMetadata
	s.fragments = newFragments
	return nil
}

// Search returns up to k nearest fragments to query by L2 distance,
// ordered ascending. An empty index yields an empty result without
// error.
func (s *SourceIndex) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index requires %d",
			ErrDimensionMismatch, len(query), s.dimensions)
	}
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.vectors) == 0 {
		return nil, nil
	}

	hits := make([]Hit, len(s.vectors))
	for i, v := range s.vectors {
		hits[i] = Hit{Position: i, Distance: l2Squared(query, v)}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Distance < hits[b].Distance })

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// l2Squared computes the squared Euclidean distance between two vectors
// of equal length. Squared distances preserve L2 ordering and match
// what flat L2 indices conventionally report.
func l2Squared(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

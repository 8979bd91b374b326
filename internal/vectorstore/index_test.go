package vectorstore

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func mkFragments(category SourceCategory, artifact string, texts ...string) []Fragment {
	frags := make([]Fragment, len(texts))
	for i, text := range texts {
		frags[i] = Fragment{
			ID:       artifact + ":" + strconv.Itoa(i),
			Text:     text,
			Category: category,
			Provenance: map[string]string{
				ProvArtifact: artifact,
				ProvChunk:    strconv.Itoa(i),
			},
		}
	}
	return frags
}

func TestOpen_MissingStoreIsEmpty(t *testing.T) {
	idx, warn, err := Open(filepath.Join(t.TempDir(), "documents"), CategoryDocument, 3)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if warn != "" {
		t.Errorf("unexpected warning on first run: %q", warn)
	}
	if idx.Len() != 0 {
		t.Errorf("fresh index has %d fragments, want 0", idx.Len())
	}

	hits, err := idx.Search([]float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Search on empty index: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("empty index returned %d hits", len(hits))
	}
}

func TestOpen_CorruptStoreIsEmptyWithWarning(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, snapshotFile), []byte("not a gob"), 0o644); err != nil {
		t.Fatal(err)
	}

	idx, warn, err := Open(dir, CategoryWeb, 3)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if warn == "" {
		t.Error("expected a warning for a corrupt snapshot")
	}
	if idx.Len() != 0 {
		t.Errorf("corrupt index reported %d fragments, want 0", idx.Len())
	}
}

func TestAddAndSearch_OrderedByDistance(t *testing.T) {
	idx, _, err := Open(t.TempDir(), CategoryDocument, 2)
	if err != nil {
		t.Fatal(err)
	}

	frags := mkFragments(CategoryDocument, "doc-1", "cerca", "lejos", "medio")
	vectors := [][]float32{{0, 0}, {10, 10}, {3, 3}}
	if err := idx.Add(frags, vectors); err != nil {
		t.Fatalf("Add: %v", err)
	}

	hits, err := idx.Search([]float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("got %d hits, want 3", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i-1].Distance > hits[i].Distance {
			t.Errorf("hits not ordered: %v", hits)
		}
	}
	if got := idx.FragmentAt(hits[0].Position).Text; got != "cerca" {
		t.Errorf("nearest fragment = %q, want \"cerca\"", got)
	}
	if hits[0].Distance != 0 {
		t.Errorf("identical vector should have distance 0, got %f", hits[0].Distance)
	}
}

func TestSearch_KBound(t *testing.T) {
	idx, _, _ := Open(t.TempDir(), CategoryDocument, 1)
	frags := mkFragments(CategoryDocument, "doc-1", "a", "b", "c", "d")
	if err := idx.Add(frags, [][]float32{{1}, {2}, {3}, {4}}); err != nil {
		t.Fatal(err)
	}

	hits, err := idx.Search([]float32{0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Errorf("got %d hits, want k=2", len(hits))
	}

	hits, _ = idx.Search([]float32{0}, 100)
	if len(hits) != 4 {
		t.Errorf("got %d hits, want all 4 when k exceeds size", len(hits))
	}
}

func TestAdd_DimensionMismatchRejected(t *testing.T) {
	idx, _, _ := Open(t.TempDir(), CategoryDocument, 3)
	frags := mkFragments(CategoryDocument, "doc-1", "x")
	err := idx.Add(frags, [][]float32{{1, 2}})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("failed add must not leave partial state, len = %d", idx.Len())
	}
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	idx, _, _ := Open(t.TempDir(), CategoryDocument, 3)
	_, err := idx.Search([]float32{1}, 1)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestOpen_PersistedDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	idx, _, _ := Open(dir, CategoryDocument, 2)
	if err := idx.Add(mkFragments(CategoryDocument, "doc-1", "x"), [][]float32{{1, 2}}); err != nil {
		t.Fatal(err)
	}

	// Reopen with a different embedder dimensionality.
	_, _, err := Open(dir, CategoryDocument, 3)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch at load, got %v", err)
	}
}

func TestPersistAndReload(t *testing.T) {
	dir := t.TempDir()
	idx, _, _ := Open(dir, CategoryAPI, 2)
	frags := mkFragments(CategoryAPI, "api-1", "uno", "dos")
	if err := idx.Add(frags, [][]float32{{1, 0}, {0, 1}}); err != nil {
		t.Fatal(err)
	}

	reloaded, warn, err := Open(dir, CategoryAPI, 2)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if warn != "" {
		t.Errorf("unexpected warning: %q", warn)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("reloaded %d fragments, want 2", reloaded.Len())
	}
	frag := reloaded.FragmentAt(0)
	if frag.Text != "uno" || frag.Category != CategoryAPI || frag.Artifact() != "api-1" {
		t.Errorf("reloaded fragment = %+v", frag)
	}
	if frag.ID != "api-1:0" {
		t.Errorf("fragment ID not preserved: %q", frag.ID)
	}
}

// A crash between writing the temp file and the rename must leave the
// previous snapshot untouched: reload sees either pre-write or fully
// written post-state, never diverging collections.
func TestAtomicity_CrashMidWriteKeepsOldState(t *testing.T) {
	dir := t.TempDir()
	idx, _, _ := Open(dir, CategoryDocument, 1)
	if err := idx.Add(mkFragments(CategoryDocument, "doc-1", "antes"), [][]float32{{1}}); err != nil {
		t.Fatal(err)
	}

	// Simulate a crash mid-write: a temp file exists but was never renamed.
	if err := os.WriteFile(filepath.Join(dir, snapshotFile+".tmp-123"), []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}

	reloaded, warn, err := Open(dir, CategoryDocument, 1)
	if err != nil {
		t.Fatalf("reopen after simulated crash: %v", err)
	}
	if warn != "" {
		t.Errorf("unexpected warning: %q", warn)
	}
	if reloaded.Len() != 1 || reloaded.FragmentAt(0).Text != "antes" {
		t.Errorf("expected pre-write state to survive, got %d fragments", reloaded.Len())
	}
}

func TestReplaceArtifact(t *testing.T) {
	dir := t.TempDir()
	idx, _, _ := Open(dir, CategoryDocument, 1)
	if err := idx.Add(mkFragments(CategoryDocument, "a.txt", "vieja version"), [][]float32{{1}}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(mkFragments(CategoryDocument, "b.txt", "otro documento"), [][]float32{{2}}); err != nil {
		t.Fatal(err)
	}

	newFrags := mkFragments(CategoryDocument, "a.txt", "nueva version", "segundo fragmento")
	if err := idx.ReplaceArtifact("a.txt", newFrags, [][]float32{{3}, {4}}); err != nil {
		t.Fatalf("ReplaceArtifact: %v", err)
	}

	if idx.Len() != 3 {
		t.Fatalf("len = %d, want 3", idx.Len())
	}
	for i := 0; i < idx.Len(); i++ {
		if idx.FragmentAt(i).Text == "vieja version" {
			t.Error("stale fragment survived replacement")
		}
	}

	// Replacement must be durable.
	reloaded, _, err := Open(dir, CategoryDocument, 1)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Len() != 3 {
		t.Errorf("reloaded len = %d, want 3", reloaded.Len())
	}
}

func TestDeleteArtifact(t *testing.T) {
	idx, _, _ := Open(t.TempDir(), CategoryWeb, 1)
	if err := idx.Add(mkFragments(CategoryWeb, "https://example.org", "pagina"), [][]float32{{1}}); err != nil {
		t.Fatal(err)
	}
	if err := idx.DeleteArtifact("https://example.org"); err != nil {
		t.Fatalf("DeleteArtifact: %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("len = %d after delete, want 0", idx.Len())
	}
}

func TestAdd_CountMismatchRejected(t *testing.T) {
	idx, _, _ := Open(t.TempDir(), CategoryDocument, 1)
	err := idx.Add(mkFragments(CategoryDocument, "doc", "x", "y"), [][]float32{{1}})
	if err == nil {
		t.Fatal("expected error for fragment/vector count mismatch")
	}
}

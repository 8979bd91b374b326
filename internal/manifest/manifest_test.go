package manifest

import (
	"path/filepath"
	"testing"

	"github.com/cholinyo/chatbot-comparador/internal/vectorstore"
)

func TestChecksumRoundTrip(t *testing.T) {
	m, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	got, err := m.Checksum(vectorstore.CategoryDocument, "ordenanza.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("checksum of unknown artifact = %q, want empty", got)
	}

	if err := m.Record(vectorstore.CategoryDocument, "ordenanza.pdf", "abc123", 7); err != nil {
		t.Fatal(err)
	}
	got, err = m.Checksum(vectorstore.CategoryDocument, "ordenanza.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if got != "abc123" {
		t.Errorf("checksum = %q, want abc123", got)
	}

	// Upsert overwrites.
	if err := m.Record(vectorstore.CategoryDocument, "ordenanza.pdf", "def456", 9); err != nil {
		t.Fatal(err)
	}
	got, _ = m.Checksum(vectorstore.CategoryDocument, "ordenanza.pdf")
	if got != "def456" {
		t.Errorf("checksum after upsert = %q, want def456", got)
	}
}

func TestCategoriesAreIsolated(t *testing.T) {
	m, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	if err := m.Record(vectorstore.CategoryWeb, "https://ayto.example/es", "aaa", 3); err != nil {
		t.Fatal(err)
	}
	got, err := m.Checksum(vectorstore.CategoryDocument, "https://ayto.example/es")
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("document category saw web artifact: %q", got)
	}
}

func TestListAndDelete(t *testing.T) {
	m, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	for _, id := range []string{"b.txt", "a.txt"} {
		if err := m.Record(vectorstore.CategoryDocument, id, "sum-"+id, 1); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := m.List(vectorstore.CategoryDocument)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].ArtifactID != "a.txt" || entries[1].ArtifactID != "b.txt" {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	if err := m.Delete(vectorstore.CategoryDocument, "a.txt"); err != nil {
		t.Fatal(err)
	}
	n, err := m.Count(vectorstore.CategoryDocument)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count after delete = %d, want 1", n)
	}
}

func TestOpenOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "manifest.db")

	m, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Record(vectorstore.CategoryAPI, "padron", "zzz", 2); err != nil {
		t.Fatal(err)
	}
	m.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got, err := reopened.Checksum(vectorstore.CategoryAPI, "padron")
	if err != nil {
		t.Fatal(err)
	}
	if got != "zzz" {
		t.Errorf("checksum after reopen = %q, want zzz", got)
	}
}

package vectorstore

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// snapshotFile is the durable serialization of one SourceIndex: the
// three parallel collections plus the dimensionality they were built
// with.
const snapshotFile = "index.gob"

type snapshot struct {
	Category   SourceCategory
	Dimensions int
	IDs        []string
	Vectors    [][]float32
	Texts      []string
	Metadata   []map[string]string
}

// writeSnapshot persists snap under dir using write-to-temp-then-rename,
// so a crash mid-write leaves the previous snapshot intact and the
// parallel collections can never diverge on disk.
func writeSnapshot(dir string, snap *snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, snapshotFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := gob.NewEncoder(tmp).Encode(snap); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}

	if err := os.Rename(tmpName, filepath.Join(dir, snapshotFile)); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// loadSnapshot reads the persisted snapshot from dir. A missing file is
// a nil snapshot with no warning (first run); an unreadable or
// truncated file is reported as a warning and treated as empty rather
// than failing startup. Only filesystem errors other than not-exist are
// returned as errors.
func loadSnapshot(dir string) (*snapshot, string, error) {
	path := filepath.Join(dir, snapshotFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("opening snapshot %s: %w", path, err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Sprintf("index %s unreadable (%v), treating as empty", path, err), nil
	}
	if len(snap.Vectors) != len(snap.Texts) || len(snap.Texts) != len(snap.Metadata) {
		return nil, fmt.Sprintf("index %s has diverging collections (%d/%d/%d), treating as empty",
			path, len(snap.Vectors), len(snap.Texts), len(snap.Metadata)), nil
	}
	return &snap, "", nil
}

package ingest

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cholinyo/chatbot-comparador/internal/vectorstore"
)

// DefaultMaxFileSize is the maximum document size to process (20 MB).
const DefaultMaxFileSize int64 = 20 << 20

// defaultExcludedDirs are directory names skipped during traversal.
var defaultExcludedDirs = []string{
	".git",
	".svn",
	"node_modules",
	"__pycache__",
	".venv",
	".idea",
	".vscode",
}

// DocumentIngestor walks the configured folders and extracts text from
// every supported document it finds.
type DocumentIngestor struct {
	Folders     []string
	Include     []string // Glob patterns; empty means every supported file.
	Exclude     []string // Glob patterns; matching files are skipped.
	MaxFileSize int64    // 0 = DefaultMaxFileSize.
}

func (d *DocumentIngestor) Category() vectorstore.SourceCategory {
	return vectorstore.CategoryDocument
}

// Collect traverses every folder and returns one Item per readable
// document. Files that cannot be extracted are reported as warnings, not
// errors: a corrupt PDF must not abort the rest of the folder.
func (d *DocumentIngestor) Collect(ctx context.Context) ([]Item, []string, error) {
	maxSize := d.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var items []Item
	var warnings []string

	for _, folder := range d.Folders {
		root, err := filepath.Abs(folder)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving folder %s: %w", folder, err)
		}

		err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if walkErr != nil {
				// Skip unreadable entries instead of aborting.
				return nil
			}
			if entry.IsDir() {
				if shouldExcludeDir(entry.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if !entry.Type().IsRegular() || !supportedDocument(path) {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return nil
			}
			if !matchesInclude(rel, d.Include) || matchesExclude(rel, d.Exclude) {
				return nil
			}

			info, err := entry.Info()
			if err != nil {
				return nil
			}
			if info.Size() > maxSize {
				warnings = append(warnings, fmt.Sprintf("skipping %s: exceeds size limit", rel))
				return nil
			}

			item, err := d.loadDocument(root, path, rel)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("skipping %s: %v", rel, err))
				return nil
			}
			if strings.TrimSpace(item.Text) == "" {
				warnings = append(warnings, fmt.Sprintf("skipping %s: no extractable text", rel))
				return nil
			}
			items = append(items, item)
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("walking %s: %w", folder, err)
		}
	}
	return items, warnings, nil
}

func (d *DocumentIngestor) loadDocument(root, path, rel string) (Item, error) {
	text, err := extractText(path)
	if err != nil {
		return Item{}, err
	}
	checksum, err := checksumFile(path)
	if err != nil {
		return Item{}, err
	}

	artifactID := filepath.ToSlash(filepath.Join(filepath.Base(root), rel))
	docType := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

	return Item{
		ArtifactID: artifactID,
		Text:       text,
		Checksum:   checksum,
		Provenance: map[string]string{
			vectorstore.ProvOrigin:     path,
			vectorstore.ProvDocType:    docType,
			vectorstore.ProvIngestedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

func checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return checksumBytes(data), nil
}

func shouldExcludeDir(name string) bool {
	for _, excl := range defaultExcludedDirs {
		if strings.EqualFold(name, excl) {
			return true
		}
	}
	return false
}

// matchesInclude returns true if the relative path matches any include
// pattern. Empty patterns include everything.
func matchesInclude(rel string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	return matchesAny(rel, patterns)
}

// matchesExclude returns true if the relative path matches any exclude
// pattern. Empty patterns exclude nothing.
func matchesExclude(rel string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	return matchesAny(rel, patterns)
}

func matchesAny(rel string, patterns []string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if matched, err := doublestar.PathMatch(pattern, normalized); err == nil && matched {
			return true
		}
		base := filepath.Base(normalized)
		if matched, err := doublestar.PathMatch(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

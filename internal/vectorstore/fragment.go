// Package vectorstore implements the per-source vector indices: three
// index-aligned collections (vectors, fragment texts, provenance) with
// exact L2 nearest-neighbour search and atomic on-disk persistence.
package vectorstore

// SourceCategory partitions the index space. Each category owns exactly
// one SourceIndex and its on-disk directory.
type SourceCategory string

const (
	CategoryDocument SourceCategory = "document"
	CategoryWeb      SourceCategory = "web"
	CategoryAPI      SourceCategory = "api"
	CategoryDatabase SourceCategory = "database"
)

// Categories lists all known categories in registration order. The order
// is significant: the retrieval fuser uses it to break distance ties.
var Categories = []SourceCategory{CategoryDocument, CategoryWeb, CategoryAPI, CategoryDatabase}

// Valid reports whether c is one of the known categories.
func (c SourceCategory) Valid() bool {
	switch c {
	case CategoryDocument, CategoryWeb, CategoryAPI, CategoryDatabase:
		return true
	}
	return false
}

// Well-known provenance keys. Every ingestor must set ProvArtifact so
// fragments can be grouped back to (and replaced with) their parent
// artifact; the rest are set where they apply.
const (
	ProvArtifact   = "artifact_id" // identifier of the parent artifact
	ProvOrigin     = "origin"      // file path, page URL, or API endpoint
	ProvChunk      = "chunk"       // chunk index within the parent, as decimal string
	ProvChecksum   = "checksum"    // sha256 of the parent artifact content
	ProvIngestedAt = "ingested_at" // RFC 3339 ingestion timestamp
	ProvDocType    = "doc_type"    // document-type tag (pdf, html, ...)
	ProvLabel      = "label"       // static label from API source config
)

// Fragment is the atomic unit of retrievable text: a bounded chunk plus
// the provenance needed to trace it back to its originating artifact.
// Fragments are immutable once written; re-ingesting a changed artifact
// replaces all fragments sharing its ProvArtifact identifier.
type Fragment struct {
	ID         string
	Text       string
	Category   SourceCategory
	Provenance map[string]string
}

// Artifact returns the parent artifact identifier, or "" if unset.
func (f Fragment) Artifact() string {
	return f.Provenance[ProvArtifact]
}

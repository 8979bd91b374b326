// Package fragmenter splits raw extracted text into bounded-size chunks
// suitable for embedding and retrieval.
package fragmenter

import (
	"regexp"
	"strings"
)

// OverlapSeparator joins the overlap prefix carried over from the previous
// chunk with the chunk's own text, so the carried context stays visible.
const OverlapSeparator = " [...] "

var (
	paragraphSplit = regexp.MustCompile(`\n\s*\n`)
	sentenceSplit  = regexp.MustCompile(`[^.!?]+[.!?]+(?:\s|$)|[^.!?]+$`)
)

// Split divides raw text into chunks of at most maxChars characters.
// It prefers paragraph boundaries, then sentence boundaries, and only
// hard-cuts at whitespace when a single sentence exceeds maxChars. A
// whitespace-delimited token longer than maxChars is kept whole, so that
// one chunk may exceed the bound.
//
// When overlap > 0, every chunk after the first is prefixed with the
// trailing overlap characters of the previous chunk, joined with
// OverlapSeparator. Empty or whitespace-only input yields no chunks.
// The function is deterministic: the same input and parameters always
// produce the same output.
func Split(raw string, maxChars, overlap int) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if maxChars <= 0 {
		maxChars = 500
	}
	if len(trimmed) <= maxChars {
		return []string{trimmed}
	}

	units := splitUnits(trimmed, maxChars)
	chunks := pack(units, maxChars)

	if overlap > 0 && len(chunks) > 1 {
		chunks = applyOverlap(chunks, overlap)
	}
	return chunks
}

// splitUnits breaks the text into pieces that each fit within maxChars,
// except for single oversized tokens.
func splitUnits(text string, maxChars int) []string {
	var units []string
	for _, para := range paragraphSplit.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) <= maxChars {
			units = append(units, para)
			continue
		}
		for _, sent := range sentenceSplit.FindAllString(para, -1) {
			sent = strings.TrimSpace(sent)
			if sent == "" {
				continue
			}
			if len(sent) <= maxChars {
				units = append(units, sent)
				continue
			}
			units = append(units, hardCut(sent, maxChars)...)
		}
	}
	return units
}

// hardCut splits a single overlong sentence at whitespace. Tokens longer
// than maxChars become their own unit without being cut mid-token.
func hardCut(sent string, maxChars int) []string {
	var (
		pieces  []string
		current strings.Builder
	)
	for _, word := range strings.Fields(sent) {
		if current.Len() > 0 && current.Len()+1+len(word) > maxChars {
			pieces = append(pieces, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}
	return pieces
}

// pack greedily merges consecutive units into chunks bounded by maxChars.
func pack(units []string, maxChars int) []string {
	var (
		chunks  []string
		current strings.Builder
	)
	for _, unit := range units {
		if current.Len() > 0 && current.Len()+1+len(unit) > maxChars {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(unit)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// applyOverlap prefixes each chunk after the first with the tail of the
// previous base chunk. The tail is taken from the chunk before overlap
// was applied, so prefixes never compound.
func applyOverlap(chunks []string, overlap int) []string {
	out := make([]string, len(chunks))
	out[0] = chunks[0]
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev
		if len(prev) > overlap {
			tail = prev[len(prev)-overlap:]
			// Avoid starting the carried context mid-token.
			if idx := strings.IndexByte(tail, ' '); idx >= 0 && idx < len(tail)-1 {
				tail = tail[idx+1:]
			}
		}
		out[i] = tail + OverlapSeparator + chunks[i]
	}
	return out
}

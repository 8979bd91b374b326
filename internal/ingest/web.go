package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html"

	"github.com/cholinyo/chatbot-comparador/internal/vectorstore"
)

const (
	// DefaultMaxPages bounds a crawl when the source does not set one.
	DefaultMaxPages = 3

	// minPageTextLen filters out near-empty pages (redirect stubs, cookie
	// walls) that would only add noise to the index.
	minPageTextLen = 100
)

// WebSource is one seed URL to crawl.
type WebSource struct {
	URL      string
	MaxPages int
}

// WebIngestor crawls each seed with a breadth-first walk that never leaves
// the seed's domain and never revisits a URL.
type WebIngestor struct {
	Sources []WebSource
	Client  *http.Client
}

func (w *WebIngestor) Category() vectorstore.SourceCategory {
	return vectorstore.CategoryWeb
}

// Collect crawls every seed. Pages that fail to fetch or parse become
// warnings; the crawl continues with the remaining queue.
func (w *WebIngestor) Collect(ctx context.Context) ([]Item, []string, error) {
	client := w.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	var items []Item
	var warnings []string

	for _, source := range w.Sources {
		pages, warns, err := w.crawl(ctx, client, source)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, pages...)
		warnings = append(warnings, warns...)
	}
	return items, warnings, nil
}

func (w *WebIngestor) crawl(ctx context.Context, client *http.Client, source WebSource) ([]Item, []string, error) {
	seed, err := url.Parse(source.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid seed url %s: %w", source.URL, err)
	}

	maxPages := source.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	visited := make(map[string]bool)
	queue := []string{seed.String()}

	var items []Item
	var warnings []string

	for len(queue) > 0 && len(items) < maxPages {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		pageURL := queue[0]
		queue = queue[1:]
		if visited[pageURL] {
			continue
		}
		visited[pageURL] = true

		text, links, err := fetchPage(ctx, client, pageURL)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping %s: %v", pageURL, err))
			continue
		}

		if len(text) > minPageTextLen {
			items = append(items, Item{
				ArtifactID: pageURL,
				Text:       text,
				Checksum:   checksumString(text),
				Provenance: map[string]string{
					vectorstore.ProvOrigin:     pageURL,
					vectorstore.ProvIngestedAt: time.Now().UTC().Format(time.RFC3339),
				},
			})
		}

		base, err := url.Parse(pageURL)
		if err != nil {
			continue
		}
		for _, href := range links {
			ref, err := url.Parse(href)
			if err != nil {
				continue
			}
			resolved := base.ResolveReference(ref)
			resolved.Fragment = ""
			// Same-domain only: links out of the seed's host end the branch.
			if resolved.Host != seed.Host {
				continue
			}
			if target := resolved.String(); !visited[target] {
				queue = append(queue, target)
			}
		}
	}
	return items, warnings, nil
}

func fetchPage(ctx context.Context, client *http.Client, pageURL string) (string, []string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	node, err := html.Parse(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("parsing html: %w", err)
	}
	return htmlText(node), htmlLinks(node), nil
}

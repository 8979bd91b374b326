package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cholinyo/chatbot-comparador/internal/vectorstore"
)

// defaultTextField is the record field read when a source does not name one.
const defaultTextField = "texto"

// APISource describes one REST endpoint to pull records from.
type APISource struct {
	Name      string
	URL       string
	Auth      string            // Authorization header value, e.g. "Bearer ...".
	Headers   map[string]string // Extra request headers.
	TextField string            // Record field holding the text; "" = "texto".
	Labels    []string          // Copied into every fragment's provenance.
}

// APIIngestor issues one GET per source and extracts the text field from
// each returned record.
type APIIngestor struct {
	Sources []APISource
	Client  *http.Client
}

func (a *APIIngestor) Category() vectorstore.SourceCategory {
	return vectorstore.CategoryAPI
}

// Collect fetches every source. A source that fails to respond or returns
// malformed JSON becomes a warning so the remaining sources still ingest.
func (a *APIIngestor) Collect(ctx context.Context) ([]Item, []string, error) {
	client := a.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	var items []Item
	var warnings []string

	for _, source := range a.Sources {
		records, err := fetchRecords(ctx, client, source)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping api %s: %v", source.name(), err))
			continue
		}
		items = append(items, records...)
	}
	return items, warnings, nil
}

func (s APISource) name() string {
	if s.Name != "" {
		return s.Name
	}
	return s.URL
}

func fetchRecords(ctx context.Context, client *http.Client, source APISource) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range source.Headers {
		req.Header.Set(k, v)
	}
	if source.Auth != "" {
		req.Header.Set("Authorization", source.Auth)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// Accept either a top-level array of records or a single record object.
	var records []map[string]any
	if err := json.Unmarshal(body, &records); err != nil {
		var single map[string]any
		if err := json.Unmarshal(body, &single); err != nil {
			return nil, fmt.Errorf("decoding response: %w", err)
		}
		records = []map[string]any{single}
	}

	field := source.TextField
	if field == "" {
		field = defaultTextField
	}

	var items []Item
	for i, record := range records {
		text, ok := record[field].(string)
		text = strings.TrimSpace(text)
		if !ok || text == "" {
			continue
		}

		prov := map[string]string{
			vectorstore.ProvOrigin:     source.URL,
			vectorstore.ProvIngestedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if len(source.Labels) > 0 {
			prov[vectorstore.ProvLabel] = strings.Join(source.Labels, ",")
		}

		items = append(items, Item{
			ArtifactID: fmt.Sprintf("%s#%d", source.name(), i),
			Text:       text,
			Checksum:   checksumString(text),
			Provenance: prov,
		})
	}
	return items, nil
}

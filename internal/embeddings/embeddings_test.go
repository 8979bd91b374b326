package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaEmbedder_BatchRequest(t *testing.T) {
	var gotInput []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		gotInput = req.Input

		embeddings := make([][]float32, len(req.Input))
		for i := range embeddings {
			embeddings[i] = []float32{1, 2, 3}
		}
		json.NewEncoder(w).Encode(map[string]any{"embeddings": embeddings})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", 3, srv.URL)
	vecs, err := e.Embed(context.Background(), []string{"uno", "dos"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vecs))
	}
	if len(gotInput) != 2 {
		t.Errorf("expected one batched request with 2 inputs, got %v", gotInput)
	}
}

func TestOllamaEmbedder_EmptyInput(t *testing.T) {
	e := NewOllamaEmbedder("nomic-embed-text", 3, "http://localhost:1")
	vecs, err := e.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed(nil): %v", err)
	}
	if vecs != nil {
		t.Errorf("expected nil result for empty input, got %v", vecs)
	}
}

func TestOllamaEmbedder_UnreachableBackend(t *testing.T) {
	// Port 1 is never listening.
	e := NewOllamaEmbedder("nomic-embed-text", 768, "http://127.0.0.1:1")
	_, err := e.Embed(context.Background(), []string{"hola"})
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestOllamaEmbedder_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{{1}}})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", 1, srv.URL)
	_, err := e.Embed(context.Background(), []string{"uno", "dos"})
	if err == nil {
		t.Fatal("expected error on embedding count mismatch")
	}
}

func TestEmbedOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{{0.5, 0.5}}})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", 2, srv.URL)
	vec, err := EmbedOne(context.Background(), e, "pregunta")
	if err != nil {
		t.Fatalf("EmbedOne: %v", err)
	}
	if len(vec) != 2 {
		t.Errorf("got %d dims, want 2", len(vec))
	}
}

func TestOpenAIModelDimensions(t *testing.T) {
	cases := []struct {
		model OpenAIModel
		want  int
	}{
		{ModelTextEmbedding3Small, 1536},
		{ModelTextEmbedding3Large, 3072},
		{OpenAIModel("unknown"), 1536},
	}
	for _, tc := range cases {
		e := NewOpenAIEmbedder("key", tc.model)
		if got := e.Dimensions(); got != tc.want {
			t.Errorf("Dimensions(%s) = %d, want %d", tc.model, got, tc.want)
		}
	}
}

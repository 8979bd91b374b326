package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cholinyo/chatbot-comparador/internal/gateway"
	"github.com/cholinyo/chatbot-comparador/internal/retrieval"
	"github.com/cholinyo/chatbot-comparador/internal/vectorstore"
)

// mockEmbedder maps known texts to fixed vectors.
type mockEmbedder struct {
	vectors map[string][]float32
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := m.vectors[text]; ok {
			result[i] = v
		} else {
			result[i] = []float32{0, 0}
		}
	}
	return result, nil
}
func (m *mockEmbedder) Dimensions() int { return 2 }
func (m *mockEmbedder) Name() string    { return "mock" }

func newTestServer(t *testing.T) *Server {
	t.Helper()

	idx, _, err := vectorstore.Open(t.TempDir(), vectorstore.CategoryDocument, 2)
	if err != nil {
		t.Fatal(err)
	}
	err = idx.Add([]vectorstore.Fragment{
		{ID: "1", Text: "El registro abre de 9 a 14.", Category: vectorstore.CategoryDocument,
			Provenance: map[string]string{vectorstore.ProvArtifact: "horarios.txt"}},
	}, [][]float32{{1, 0}})
	if err != nil {
		t.Fatal(err)
	}

	ollama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":"De 9 a 14."}}`))
	}))
	t.Cleanup(ollama.Close)

	emb := &mockEmbedder{vectors: map[string][]float32{
		"¿Cuándo abre el registro?": {0.9, 0.1},
	}}
	fuser := retrieval.NewFuser(emb, idx)
	gw := gateway.New(gateway.Options{OllamaHost: ollama.URL})

	return NewServer(fuser, gw, 5, gateway.BackendDescriptor{
		Family: gateway.FamilyLocalServed, Model: "llama3",
	})
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		tool     mcp.Tool
		wantName string
	}{
		{retrieveFragmentsTool, "retrieve_fragments"},
		{askTool, "ask"},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestHandleRetrieveFragments(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	t.Run("basic query", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "¿Cuándo abre el registro?"}

		result, err := srv.handleRetrieveFragments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := resultText(t, result)
		if !strings.Contains(text, "El registro abre de 9 a 14.") {
			t.Errorf("fragment text missing:\n%s", text)
		}
		if !strings.Contains(text, "horarios.txt") {
			t.Errorf("provenance missing:\n%s", text)
		}
	})

	t.Run("missing query", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleRetrieveFragments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected tool error for missing query")
		}
	})

	t.Run("k out of range", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "q", "k": 50}

		result, _ := srv.handleRetrieveFragments(ctx, req)
		if !result.IsError {
			t.Error("expected tool error for k out of range")
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "q", "category": "tiktok"}

		result, _ := srv.handleRetrieveFragments(ctx, req)
		if !result.IsError {
			t.Error("expected tool error for unknown category")
		}
	})
}

func TestHandleAsk(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"question": "¿Cuándo abre el registro?"}

	result, err := srv.handleAsk(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "De 9 a 14.") {
		t.Errorf("answer missing:\n%s", text)
	}
}

func TestHandleAsk_BadBackend(t *testing.T) {
	srv := newTestServer(t)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"question": "q", "backend": "nope"}

	result, _ := srv.handleAsk(context.Background(), req)
	if !result.IsError {
		t.Error("expected tool error for invalid backend")
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	var sb strings.Builder
	for _, content := range result.Content {
		if text, ok := content.(mcp.TextContent); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String()
}

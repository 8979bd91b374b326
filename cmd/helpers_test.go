package cmd

import (
	"testing"

	"github.com/cholinyo/chatbot-comparador/internal/config"
)

func TestResolveK(t *testing.T) {
	cfg := config.DefaultConfig()

	tests := []struct {
		name    string
		flag    int
		want    int
		wantErr bool
	}{
		{"unset uses config default", 0, cfg.RAG.K, false},
		{"negative uses config default", -3, cfg.RAG.K, false},
		{"explicit value kept", 3, 3, false},
		{"upper bound allowed", 10, 10, false},
		{"above bound rejected", 11, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveK(cfg, tt.flag)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("resolveK(%d) = %d, want error", tt.flag, got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("resolveK(%d) = %d, want %d", tt.flag, got, tt.want)
			}
		})
	}
}

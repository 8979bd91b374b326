// Package gateway sends an assembled prompt to one or more model backends
// and reports each outcome uniformly, so a failed backend can sit next to a
// successful one in a comparison.
package gateway

import (
	"fmt"
	"strings"
)

// Family identifies how a backend is reached.
type Family string

const (
	// FamilyHostedAPI is a remote vendor API (OpenAI).
	FamilyHostedAPI Family = "hosted_api"
	// FamilyLocalServed is a locally running model server (Ollama).
	FamilyLocalServed Family = "local_served"
	// FamilyLocalFile is a model file served through an OpenAI-compatible
	// local endpoint (llama.cpp, llamafile).
	FamilyLocalFile Family = "local_file"
)

// Valid reports whether the family is one of the known constants.
func (f Family) Valid() bool {
	switch f {
	case FamilyHostedAPI, FamilyLocalServed, FamilyLocalFile:
		return true
	}
	return false
}

// BackendDescriptor names one concrete model behind one family.
type BackendDescriptor struct {
	Family      Family  `json:"family"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

func (b BackendDescriptor) String() string {
	return fmt.Sprintf("%s:%s", b.Family, b.Model)
}

// ParseBackend turns a "provider:model" string into a descriptor.
// Recognized providers: "openai" (hosted API), "ollama" (local server),
// "file" (local model file behind an OpenAI-compatible endpoint).
func ParseBackend(s string) (BackendDescriptor, error) {
	provider, model, found := strings.Cut(s, ":")
	if !found || strings.TrimSpace(model) == "" {
		return BackendDescriptor{}, fmt.Errorf("invalid backend %q: want provider:model", s)
	}

	var family Family
	switch provider {
	case "openai", string(FamilyHostedAPI):
		family = FamilyHostedAPI
	case "ollama", string(FamilyLocalServed):
		family = FamilyLocalServed
	case "file", string(FamilyLocalFile):
		family = FamilyLocalFile
	default:
		return BackendDescriptor{}, fmt.Errorf("unknown backend provider %q", provider)
	}

	return BackendDescriptor{Family: family, Model: strings.TrimSpace(model)}, nil
}

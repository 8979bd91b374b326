package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Default per-family timeouts. Local inference is given far more room than
// a hosted API round trip.
const (
	DefaultHostedTimeout = 60 * time.Second
	DefaultLocalTimeout  = 180 * time.Second
)

// Result is the uniform outcome of one generation attempt. A backend that
// failed still produces a Result, with Success false and Error set.
type Result struct {
	Text           string  `json:"text,omitempty"`
	ModelUsed      string  `json:"model_used"`
	LatencySeconds float64 `json:"latency_seconds"`
	Success        bool    `json:"success"`
	Error          string  `json:"error,omitempty"`
}

// Options configures a Gateway.
type Options struct {
	OpenAIKey     string
	OllamaHost    string        // "" = http://localhost:11434
	FileServerURL string        // OpenAI-compatible endpoint of the local model file server.
	HostedTimeout time.Duration // 0 = DefaultHostedTimeout.
	LocalTimeout  time.Duration // 0 = DefaultLocalTimeout.
	HTTPClient    *http.Client
}

// Gateway fans prompts out to model backends.
type Gateway struct {
	opts   Options
	client *http.Client
}

// New creates a Gateway. Missing options get their defaults filled in.
func New(opts Options) *Gateway {
	if opts.OllamaHost == "" {
		opts.OllamaHost = "http://localhost:11434"
	}
	if opts.HostedTimeout <= 0 {
		opts.HostedTimeout = DefaultHostedTimeout
	}
	if opts.LocalTimeout <= 0 {
		opts.LocalTimeout = DefaultLocalTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Gateway{opts: opts, client: client}
}

// Generate sends the prompt to one backend. It never returns an error:
// every failure mode ends up inside the Result so callers can compare
// healthy and broken backends side by side. There is no automatic retry.
func (g *Gateway) Generate(ctx context.Context, prompt string, backend BackendDescriptor) Result {
	start := time.Now()

	timeout := g.opts.LocalTimeout
	if backend.Family == FamilyHostedAPI {
		timeout = g.opts.HostedTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var text, model string
	var err error
	switch backend.Family {
	case FamilyHostedAPI:
		text, model, err = g.completeHosted(ctx, prompt, backend)
	case FamilyLocalServed:
		text, model, err = g.completeOllama(ctx, prompt, backend)
	case FamilyLocalFile:
		text, model, err = g.completeLocalFile(ctx, prompt, backend)
	default:
		err = fmt.Errorf("unknown backend family %q", backend.Family)
	}

	result := Result{
		ModelUsed:      backend.String(),
		LatencySeconds: time.Since(start).Seconds(),
	}
	if model != "" {
		result.ModelUsed = fmt.Sprintf("%s:%s", backend.Family, model)
	}
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Text = text
	result.Success = true
	return result
}

// Compare runs the same prompt against every backend concurrently and
// returns the results in the order the backends were given.
func (g *Gateway) Compare(ctx context.Context, prompt string, backends []BackendDescriptor) []Result {
	results := make([]Result, len(backends))
	var wg sync.WaitGroup
	for i, backend := range backends {
		wg.Add(1)
		go func(i int, backend BackendDescriptor) {
			defer wg.Done()
			results[i] = g.Generate(ctx, prompt, backend)
		}(i, backend)
	}
	wg.Wait()
	return results
}

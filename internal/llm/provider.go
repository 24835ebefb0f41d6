package llm

import (
	"fmt"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Options selects and configures a backend.
type Options struct {
	Provider      string
	GeminiBaseURL string
	GeminiModel   string
	GeminiAPIKey  string
	OllamaBaseURL string
	OllamaModel   string
	Timeout       time.Duration
}

// New builds the configured backend. A positive Timeout wraps it in a
// TimeoutGenerator.
func New(opts Options) (Generator, error) {
	var gen Generator
	switch opts.Provider {
	case ProviderGemini, "":
		gen = NewGeminiClient(opts.GeminiBaseURL, opts.GeminiModel, opts.GeminiAPIKey)
	case ProviderOllama:
		gen = NewOllamaClient(opts.OllamaBaseURL, opts.OllamaModel)
	default:
		return nil, fmt.Errorf("unknown provider %q: must be gemini or ollama", opts.Provider)
	}

	if opts.Timeout > 0 {
		gen = NewTimeoutGenerator(gen, opts.Timeout)
	}
	return gen, nil
}

// Package llm holds the text generation backends used for subtask
// suggestions.
package llm

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"
)

// Generator is satisfied by every backend in this package.
type Generator interface {
	ID() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// HealthChecker is implemented by backends that can probe their upstream.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// TimeoutGenerator bounds each Generate call. It never retries.
type TimeoutGenerator struct {
	inner Generator
	limit time.Duration
}

func NewTimeoutGenerator(inner Generator, limit time.Duration) *TimeoutGenerator {
	return &TimeoutGenerator{inner: inner, limit: limit}
}

func (g *TimeoutGenerator) ID() string {
	return g.inner.ID()
}

func (g *TimeoutGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	t := timeout.New[string](timeout.Config{
		DefaultTimeout: g.limit,
	})
	return t.Execute(ctx, g.limit, func(ctx context.Context) (string, error) {
		return g.inner.Generate(ctx, prompt)
	})
}

// HealthCheck delegates to the wrapped backend when it supports probing.
func (g *TimeoutGenerator) HealthCheck(ctx context.Context) error {
	if hc, ok := g.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

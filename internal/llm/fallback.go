package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// ErrNoBackends is returned when a fallback chain has no configured backends.
var ErrNoBackends = errors.New("llm: no backends configured")

// FallbackChain tries an ordered list of backends until one succeeds. The
// order is a first-class value: attempts happen strictly in slice order, and
// each failure is logged with the backend name before moving on.
type FallbackChain struct {
	backends []Client
}

// NewFallbackChain creates a chain over the given backends, tried in order.
func NewFallbackChain(backends ...Client) *FallbackChain {
	return &FallbackChain{backends: backends}
}

// Backends returns the attempt order.
func (f *FallbackChain) Backends() []Client {
	return f.backends
}

func (f *FallbackChain) Name() string {
	if len(f.backends) == 0 {
		return "fallback(empty)"
	}
	return "fallback(" + f.backends[0].Name() + ")"
}

// Complete attempts each backend in order, returning the first success.
// If all backends fail, the errors are joined so diagnostics retain every
// attempt, including credential and access hints from the providers.
func (f *FallbackChain) Complete(ctx context.Context, req Request) (*Response, error) {
	if len(f.backends) == 0 {
		return nil, ErrNoBackends
	}

	var errs []error
	for _, b := range f.backends {
		resp, err := b.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		log.Printf("llm: backend %s failed, trying next: %v", b.Name(), err)
		errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))

		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}

// Package batch evaluates several models at once.
package batch

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"Envolvente/internal/calc/indicators"
	"Envolvente/internal/diag"
)

type Input struct {
	Items []indicators.Input `json:"items"`
	// Maximum models evaluated at the same time. Zero means GOMAXPROCS.
	Concurrency int `json:"concurrency,omitempty"`
}

type Result struct {
	Results []indicators.Summary `json:"results"`
}

// Calculate evaluates every item with its own calculator and keeps the input
// order. The first invalid item cancels the rest.
func Calculate(ctx context.Context, in Input, obs diag.Observer) (Result, error) {
	if len(in.Items) == 0 {
		return Result{}, fmt.Errorf("no items")
	}
	limit := in.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	out := make([]indicators.Summary, len(in.Items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range in.Items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := indicators.Calculate(item, obs)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return Result{Results: out}, nil
}

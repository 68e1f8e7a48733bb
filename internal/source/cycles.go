package source

import (
	"context"

	"github.com/fortify-index/mfi/internal/contract"
	"github.com/fortify-index/mfi/schema"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

// FetchCycles fetches several cycles concurrently. Each fetch is independent
// and writes only its own slot; the first error cancels the others.
func FetchCycles(ctx context.Context, src contract.Source, cycles []string) ([][]schema.RawMetric, error) {
	results := make([][]schema.RawMetric, len(cycles))

	g, gctx := errgroup.WithContext(ctx)
	for i, cycle := range cycles {
		g.Go(func() error {
			records, err := src.Fetch(gctx, cycle)
			if err != nil {
				return eris.Wrapf(err, "cycle %q", cycle)
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

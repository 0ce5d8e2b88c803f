package dynamo

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Sweep runs one simulation per parameter value, at most limit at a time
// (limit <= 0 means unbounded). Results are index-aligned with params. The
// first failing run cancels the context handed to the remaining ones.
//
// Each call of run must build its own state; systems shared between runs
// must not be mutated.
func Sweep[P any, V Vector[V]](
	ctx context.Context,
	params []P,
	limit int,
	run func(ctx context.Context, p P) (*Trajectory[V], error),
) ([]*Trajectory[V], error) {
	results := make([]*Trajectory[V], len(params))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, p := range params {
		i, p := i, p
		g.Go(func() error {
			traj, err := run(ctx, p)
			if err != nil {
				return fmt.Errorf("sweep run %d: %w", i, err)
			}
			results[i] = traj
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

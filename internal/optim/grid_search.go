// Package optim searches parameter grids for the point minimising an
// objective.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// ErrNoFeasiblePoint is returned when every grid point failed to evaluate.
var ErrNoFeasiblePoint = errors.New("optim: no feasible grid point")

// Objective scores one grid point; lower is better. A returned error or a
// NaN score marks the point infeasible and it is skipped.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameter names for %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Points enumerates the Cartesian product of the ranges, last parameter
// varying fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var points []map[string]float64
	g.collect(0, map[string]float64{}, &points)
	return points
}

func (g *GridSearch) collect(depth int, current map[string]float64, points *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*points = append(*points, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[paramName] = val
		g.collect(depth+1, next, points)
	}
}

// Search evaluates every point with at most workers concurrent calls and
// returns the best one. Ties go to the earlier point, so the answer does not
// depend on scheduling.
func (g *GridSearch) Search(ctx context.Context, workers int, objective Objective) (map[string]float64, float64, error) {
	points := g.Points()
	scores := make([]float64, len(points))

	eg, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}
	for i, p := range points {
		i, p := i, p
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			score, err := objective(ctx, p)
			if err != nil {
				score = math.NaN()
			}
			scores[i] = score
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, 0, err
	}

	bestIdx := -1
	for i, s := range scores {
		if math.IsNaN(s) {
			continue
		}
		if bestIdx < 0 || s < scores[bestIdx] {
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return nil, 0, ErrNoFeasiblePoint
	}
	return points[bestIdx], scores[bestIdx], nil
}

// Range returns from, from+step, ... up to and including to.
func Range(from, to, step float64) []float64 {
	if !(step > 0) || to < from {
		return nil
	}
	n := int(math.Floor((to-from)/step+1e-9)) + 1
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = from + float64(i)*step
	}
	return vals
}

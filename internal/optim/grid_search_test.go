package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	. "github.com/onsi/gomega"
)

func TestPoints(t *testing.T) {
	g := NewWithT(t)
	gs, err := NewGridSearch([]string{"a", "b"}, [][]float64{{1, 2}, {10, 20, 30}})
	g.Expect(err).NotTo(HaveOccurred())

	points := gs.Points()
	g.Expect(points).To(HaveLen(6))
	g.Expect(points[0]).To(Equal(map[string]float64{"a": 1, "b": 10}))
	g.Expect(points[1]).To(Equal(map[string]float64{"a": 1, "b": 20}))
	g.Expect(points[5]).To(Equal(map[string]float64{"a": 2, "b": 30}))
}

func TestNewGridSearchValidation(t *testing.T) {
	if _, err := NewGridSearch([]string{"a"}, nil); err == nil {
		t.Error("expected an error for mismatched lengths")
	}
	if _, err := NewGridSearch([]string{"a"}, [][]float64{{}}); err == nil {
		t.Error("expected an error for an empty range")
	}
}

func TestSearchFindsMinimum(t *testing.T) {
	g := NewWithT(t)
	gs, err := NewGridSearch([]string{"x", "y"}, [][]float64{Range(-2, 2, 0.5), Range(-2, 2, 0.5)})
	g.Expect(err).NotTo(HaveOccurred())

	best, score, err := gs.Search(context.Background(), 4, func(ctx context.Context, p map[string]float64) (float64, error) {
		return (p["x"]-1)*(p["x"]-1) + (p["y"]+0.5)*(p["y"]+0.5), nil
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(best).To(Equal(map[string]float64{"x": 1, "y": -0.5}))
	g.Expect(score).To(Equal(0.0))
}

func TestSearchSkipsInfeasible(t *testing.T) {
	g := NewWithT(t)
	gs, _ := NewGridSearch([]string{"x"}, [][]float64{{1, 2, 3}})

	best, score, err := gs.Search(context.Background(), 1, func(ctx context.Context, p map[string]float64) (float64, error) {
		switch p["x"] {
		case 1:
			return 0, errors.New("diverged")
		case 2:
			return math.NaN(), nil
		}
		return 5, nil
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(best["x"]).To(Equal(3.0))
	g.Expect(score).To(Equal(5.0))

	_, _, err = gs.Search(context.Background(), 1, func(ctx context.Context, p map[string]float64) (float64, error) {
		return 0, errors.New("diverged")
	})
	g.Expect(err).To(MatchError(ErrNoFeasiblePoint))
}

func TestSearchTiesGoToFirstPoint(t *testing.T) {
	gs, _ := NewGridSearch([]string{"x"}, [][]float64{{3, 1, 2}})
	best, _, err := gs.Search(context.Background(), 3, func(ctx context.Context, p map[string]float64) (float64, error) {
		return 1, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if best["x"] != 3 {
		t.Errorf("expected first point, got %v", best)
	}
}

func TestSearchCancelled(t *testing.T) {
	gs, _ := NewGridSearch([]string{"x"}, [][]float64{{1, 2}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := gs.Search(ctx, 1, func(ctx context.Context, p map[string]float64) (float64, error) {
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRange(t *testing.T) {
	g := NewWithT(t)
	g.Expect(Range(10, 20, 5)).To(Equal([]float64{10, 15, 20}))
	g.Expect(Range(0, 0.3, 0.1)).To(HaveLen(4))
	g.Expect(Range(1, 0, 1)).To(BeEmpty())
	g.Expect(Range(0, 1, 0)).To(BeEmpty())
}

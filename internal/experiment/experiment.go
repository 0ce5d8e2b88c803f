package experiment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/san-kum/mechsim/internal/config"
	"github.com/san-kum/mechsim/internal/dynamo"
	"github.com/san-kum/mechsim/internal/integrators"
)

// Result is a finished run with its states flattened to rows, ready for
// storage or export. Columns names every entry of a row.
type Result struct {
	Config        config.Config
	Columns       []string
	Times         []float64
	States        [][]float64
	Metrics       map[string]float64
	Summary       map[string]float64
	EnergyDrift   float64
	StepsTaken    int
	StepsRejected int
}

// Run executes cfg with the default registry. When the integration
// diverges, the samples computed before the failure come back alongside the
// error.
func Run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Result, error) {
	return Default.Run(ctx, cfg, logger)
}

// simulate runs one typed simulation and flattens it. rows appends derived
// columns to a sample; it may be nil.
func simulate[V dynamo.Vector[V]](
	ctx context.Context,
	cfg *config.Config,
	logger zerolog.Logger,
	dyn dynamo.System[V],
	x0 V,
	columns []string,
	metrics []dynamo.Metric[V],
	rows func(V) []float64,
) (*dynamo.Trajectory[V], *Result, error) {
	integ, err := integrators.ByName[V](cfg.Integrator)
	if err != nil {
		return nil, nil, err
	}

	sim := dynamo.New[V](dyn, integ)
	sim.SetLogger(logger)
	for _, m := range metrics {
		sim.AddMetric(m)
	}

	traj, runErr := sim.Run(ctx, x0, cfg.RunConfig())
	if traj == nil {
		return nil, nil, runErr
	}

	res := &Result{
		Config:        *cfg,
		Columns:       columns,
		Times:         traj.Times,
		States:        make([][]float64, traj.Len()),
		Metrics:       traj.Metrics,
		Summary:       map[string]float64{},
		EnergyDrift:   traj.EnergyDrift,
		StepsTaken:    traj.StepsTaken,
		StepsRejected: traj.StepsRejected,
	}
	for i, x := range traj.States {
		row := append([]float64(nil), x.Slice()...)
		if rows != nil {
			row = append(row, rows(x)...)
		}
		res.States[i] = row
	}

	if runErr != nil {
		runErr = fmt.Errorf("%s: %w", cfg.Model, runErr)
	}
	return traj, res, runErr
}

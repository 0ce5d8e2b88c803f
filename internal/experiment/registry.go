package experiment

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/san-kum/mechsim/internal/analysis"
	"github.com/san-kum/mechsim/internal/config"
	"github.com/san-kum/mechsim/internal/dynamo"
	"github.com/san-kum/mechsim/internal/metrics"
	"github.com/san-kum/mechsim/internal/physics"
)

// Runner builds the model described by cfg and runs it.
type Runner func(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Result, error)

type Registry struct {
	models map[string]Runner
}

var Default = NewRegistry()

// pendulumBound is the |angle| and |rate| limit behind the pendulum
// "stability" metric.
const pendulumBound = 1000.0

var (
	ProjectileColumns = []string{"x", "y", "z", "vx", "vy", "vz"}
	PendulumColumns   = []string{"theta1", "omega1", "theta2", "omega2", "x1", "y1", "x2", "y2"}
)

func NewRegistry() *Registry {
	r := &Registry{
		models: make(map[string]Runner),
	}

	r.models["projectile"] = runProjectile
	r.models["double_pendulum"] = runDoublePendulum

	return r
}

func (r *Registry) Register(name string, run Runner) {
	r.models[name] = run
}

func (r *Registry) GetModel(name string) (Runner, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn, nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Result, error) {
	run, err := r.GetModel(cfg.Model)
	if err != nil {
		return nil, err
	}
	logger = logger.With().Str("model", cfg.Model).Str("integrator", cfg.Integrator).Logger()
	logger.Debug().Float64("dt", cfg.Dt).Float64("duration", cfg.Duration).Bool("adaptive", cfg.Adaptive).Msg("starting run")
	return run(ctx, cfg, logger)
}

func runProjectile(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Result, error) {
	dyn, err := physics.NewProjectile(cfg.Body(), cfg.PhysicsEnvironment())
	if err != nil {
		return nil, err
	}

	ms := []dynamo.Metric[physics.ProjectileState]{
		metrics.NewEnergyDrift[physics.ProjectileState](dyn),
		metrics.NewPeak[physics.ProjectileState]("peak_height", 1),
	}
	traj, res, err := simulate[physics.ProjectileState](ctx, cfg, logger, dyn, cfg.LaunchState(), ProjectileColumns, ms, nil)
	if res == nil {
		return nil, err
	}

	for k, v := range analysis.SummarizeFlight(traj).Values() {
		res.Summary[k] = v
	}
	return res, err
}

func runDoublePendulum(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Result, error) {
	dyn, err := physics.NewDoublePendulum(cfg.PendulumParams())
	if err != nil {
		return nil, err
	}

	ms := []dynamo.Metric[physics.PendulumState]{
		metrics.NewEnergyDrift[physics.PendulumState](dyn),
		metrics.NewEnergy[physics.PendulumState](dyn),
		metrics.NewPeak[physics.PendulumState]("peak_omega2", 3),
		metrics.NewStability[physics.PendulumState](pendulumBound),
	}
	positions := func(x physics.PendulumState) []float64 {
		b1, b2 := dyn.Positions(x.Angles())
		return []float64{b1.X, b1.Y, b2.X, b2.Y}
	}
	traj, res, err := simulate[physics.PendulumState](ctx, cfg, logger, dyn, cfg.PendulumState(), PendulumColumns, ms, positions)
	if res == nil {
		return nil, err
	}

	_, first := traj.At(0)
	_, last := traj.Final()
	res.Summary["energy_initial"] = dyn.Energy(first)
	res.Summary["energy_final"] = dyn.Energy(last)
	return res, err
}

package experiment

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/san-kum/mechsim/internal/analysis"
	"github.com/san-kum/mechsim/internal/config"
	"github.com/san-kum/mechsim/internal/dynamo"
	"github.com/san-kum/mechsim/internal/integrators"
	"github.com/san-kum/mechsim/internal/optim"
	"github.com/san-kum/mechsim/internal/physics"
)

// AnglePoint is the flight summary of one launch angle.
type AnglePoint struct {
	Angle  float64
	Flight analysis.Flight
}

// SweepAngles flies the projectile of cfg once per launch angle, at most
// workers runs at a time.
func SweepAngles(ctx context.Context, cfg *config.Config, angles []float64, workers int, logger zerolog.Logger) ([]AnglePoint, error) {
	dyn, err := physics.NewProjectile(cfg.Body(), cfg.PhysicsEnvironment())
	if err != nil {
		return nil, err
	}
	integ, err := integrators.ByName[physics.ProjectileState](cfg.Integrator)
	if err != nil {
		return nil, err
	}
	runCfg := cfg.RunConfig()

	trajs, err := dynamo.Sweep(ctx, angles, workers,
		func(ctx context.Context, angle float64) (*dynamo.Trajectory[physics.ProjectileState], error) {
			sim := dynamo.New[physics.ProjectileState](dyn, integ)
			sim.SetLogger(logger.With().Float64("angle", angle).Logger())
			return sim.Run(ctx, physics.LaunchState(cfg.Projectile.Speed, angle), runCfg)
		})
	if err != nil {
		return nil, err
	}

	points := make([]AnglePoint, len(angles))
	for i, angle := range angles {
		points[i] = AnglePoint{Angle: angle, Flight: analysis.SummarizeFlight(trajs[i])}
	}
	return points, nil
}

// Lyapunov estimates the largest Lyapunov exponent of the double pendulum in
// cfg by offsetting theta1 by separation. It always steps with fixed RK4.
func Lyapunov(cfg *config.Config, separation float64) (float64, error) {
	if cfg.Model != "double_pendulum" {
		return 0, fmt.Errorf("lyapunov exponent needs the double_pendulum model, got %s", cfg.Model)
	}
	dyn, err := physics.NewDoublePendulum(cfg.PendulumParams())
	if err != nil {
		return 0, err
	}

	x0 := cfg.PendulumState()
	x0p := x0.Add(physics.PendulumState{separation})
	return analysis.LyapunovExponent[physics.PendulumState](
		dyn, integrators.NewRK4[physics.PendulumState](), x0, x0p, cfg.Dt, cfg.Duration)
}

// LaunchParams are the projectile settings OptimizeLaunch may vary.
var LaunchParams = []string{"angle", "speed", "spin_rate"}

func applyLaunchParams(cfg *config.Config, params map[string]float64) error {
	for name, v := range params {
		switch name {
		case "angle":
			cfg.Projectile.Angle = v
		case "speed":
			cfg.Projectile.Speed = v
		case "spin_rate":
			cfg.Projectile.SpinRate = v
		default:
			return fmt.Errorf("unknown launch parameter: %s", name)
		}
	}
	return nil
}

// OptimizeLaunch searches grid for the launch settings with the longest range
// at launch height. Settings that never come back down are skipped.
func OptimizeLaunch(ctx context.Context, cfg *config.Config, grid map[string][]float64, workers int, logger zerolog.Logger) (map[string]float64, analysis.Flight, error) {
	names := make([]string, 0, len(grid))
	for name := range grid {
		names = append(names, name)
	}
	sort.Strings(names)
	ranges := make([][]float64, len(names))
	for i, name := range names {
		ranges[i] = grid[name]
	}

	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return nil, analysis.Flight{}, err
	}
	integ, err := integrators.ByName[physics.ProjectileState](cfg.Integrator)
	if err != nil {
		return nil, analysis.Flight{}, err
	}

	fly := func(ctx context.Context, params map[string]float64) (analysis.Flight, error) {
		c := *cfg
		if err := applyLaunchParams(&c, params); err != nil {
			return analysis.Flight{}, err
		}
		dyn, err := physics.NewProjectile(c.Body(), c.PhysicsEnvironment())
		if err != nil {
			return analysis.Flight{}, err
		}
		sim := dynamo.New[physics.ProjectileState](dyn, integ)
		traj, err := sim.Run(ctx, c.LaunchState(), c.RunConfig())
		if err != nil {
			return analysis.Flight{}, err
		}
		return analysis.SummarizeFlight(traj), nil
	}

	best, _, err := gs.Search(ctx, workers, func(ctx context.Context, params map[string]float64) (float64, error) {
		f, err := fly(ctx, params)
		if err != nil {
			logger.Debug().Err(err).Interface("params", params).Msg("launch skipped")
			return 0, err
		}
		if !f.Landed {
			return math.NaN(), nil
		}
		return -f.Range, nil
	})
	if err != nil {
		return nil, analysis.Flight{}, err
	}

	flight, err := fly(ctx, best)
	return best, flight, err
}

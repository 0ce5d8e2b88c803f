// Package integrators provides Runge-Kutta steppers for dynamo systems.
package integrators

import (
	"context"
	"fmt"

	"github.com/san-kum/mechsim/internal/dynamo"
)

// Names lists the integrators ByName accepts.
var Names = []string{"rk4", "rk45"}

func ByName[V dynamo.Vector[V]](name string) (dynamo.Integrator[V], error) {
	switch name {
	case "rk4":
		return NewRK4[V](), nil
	case "rk45":
		return NewRK45[V](), nil
	default:
		return nil, fmt.Errorf("unknown integrator %q (want one of %v)", name, Names)
	}
}

// Integrate runs dyn from x0 over [0, span] with fixed RK4 steps of dt,
// sampling after every step.
func Integrate[V dynamo.Vector[V]](ctx context.Context, dyn dynamo.System[V], x0 V, span, dt float64) (*dynamo.Trajectory[V], error) {
	sim := dynamo.New[V](dyn, NewRK4[V]())
	cfg := dynamo.DefaultConfig()
	cfg.Dt = dt
	cfg.Duration = span
	return sim.Run(ctx, x0, cfg)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/san-kum/mechsim/internal/config"
	"github.com/san-kum/mechsim/internal/optim"
)

// modelFlags mirrors the tunable fields of config.Config. Each value is
// applied only when the flag was set on the command line.
type modelFlags struct {
	configFile string
	preset     string
	integrator string
	dt         float64
	duration   float64
	adaptive   bool
	tolerance  float64
	speed      float64
	angle      float64
	spin       float64
	drag       float64
	latitude   float64
	theta1     float64
	omega1     float64
	theta2     float64
	omega2     float64
}

var flags modelFlags

func addModelFlags(cmd *cobra.Command) {
	flags.register(cmd)
}

func (m *modelFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&m.configFile, "config", "", "config file path (yaml)")
	f.StringVar(&m.preset, "preset", "", "use preset configuration")
	f.StringVar(&m.integrator, "integrator", config.DefaultIntegrator, "integrator (rk4, rk45)")
	f.Float64Var(&m.dt, "dt", config.DefaultDt, "sample interval")
	f.Float64Var(&m.duration, "time", config.DefaultDuration, "duration")
	f.BoolVar(&m.adaptive, "adaptive", false, "adaptive sub-stepping (rk45)")
	f.Float64Var(&m.tolerance, "tol", 1e-6, "adaptive error tolerance")
	f.Float64Var(&m.speed, "speed", config.DefaultSpeed, "launch speed (projectile)")
	f.Float64Var(&m.angle, "angle", config.DefaultAngle, "launch angle in degrees (projectile)")
	f.Float64Var(&m.spin, "spin", 0, "spin rate in rad/s (projectile)")
	f.Float64Var(&m.drag, "drag", 0, "drag coefficient (projectile)")
	f.Float64Var(&m.latitude, "latitude", 0, "latitude in degrees (projectile)")
	f.Float64Var(&m.theta1, "theta1", config.DefaultTheta, "first angle (double_pendulum)")
	f.Float64Var(&m.omega1, "omega1", 0, "first angular velocity (double_pendulum)")
	f.Float64Var(&m.theta2, "theta2", config.DefaultTheta, "second angle (double_pendulum)")
	f.Float64Var(&m.omega2, "omega2", 0, "second angular velocity (double_pendulum)")
	cmd.MarkFlagsMutuallyExclusive("config", "preset")
}

// resolveConfig layers the preset or config file, then the changed flags.
// model, when non-empty, selects the model and the preset namespace.
func resolveConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	return flags.resolve(cmd.Flags(), model)
}

func (m *modelFlags) resolve(fs *pflag.FlagSet, model string) (*config.Config, error) {
	var cfg *config.Config
	if m.preset != "" {
		lookup := model
		if lookup == "" {
			lookup = config.DefaultModel
		}
		cfg = config.GetPreset(lookup, m.preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", m.preset, config.ListPresets(lookup))
		}
	} else {
		var err error
		cfg, err = config.Load(m.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if model != "" {
		cfg.Model = model
	}

	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("integrator", func() { cfg.Integrator = m.integrator })
	set("dt", func() { cfg.Dt = m.dt })
	set("time", func() { cfg.Duration = m.duration })
	set("adaptive", func() { cfg.Adaptive = m.adaptive })
	set("tol", func() { cfg.Tolerance = m.tolerance })
	set("speed", func() { cfg.Projectile.Speed = m.speed })
	set("angle", func() { cfg.Projectile.Angle = m.angle })
	set("spin", func() { cfg.Projectile.SpinRate = m.spin })
	set("drag", func() { cfg.Projectile.DragCoefficient = m.drag })
	set("latitude", func() { cfg.Environment.Latitude = m.latitude })
	set("theta1", func() { cfg.Pendulum.Theta1 = m.theta1 })
	set("omega1", func() { cfg.Pendulum.Omega1 = m.omega1 })
	set("theta2", func() { cfg.Pendulum.Theta2 = m.theta2 })
	set("omega2", func() { cfg.Pendulum.Omega2 = m.omega2 })

	if cfg.Adaptive && !fs.Changed("integrator") && cfg.Integrator == "rk4" {
		cfg.Integrator = "rk45"
	}
	return cfg, nil
}

// angleFlags is the launch-angle grid of one command.
type angleFlags struct {
	from    float64
	to      float64
	step    float64
	workers int
}

func (a *angleFlags) register(cmd *cobra.Command, step float64) {
	f := cmd.Flags()
	f.Float64Var(&a.from, "from", 10, "first launch angle (degrees)")
	f.Float64Var(&a.to, "to", 80, "last launch angle (degrees)")
	f.Float64Var(&a.step, "step", step, "angle increment (degrees)")
	f.IntVar(&a.workers, "workers", 4, "concurrent runs")
}

func (a *angleFlags) angles() ([]float64, error) {
	if !(a.step > 0) || a.to < a.from {
		return nil, fmt.Errorf("invalid angle range %g..%g step %g", a.from, a.to, a.step)
	}
	return optim.Range(a.from, a.to, a.step), nil
}

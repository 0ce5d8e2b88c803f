package physics_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mechsim/internal/analysis"
	"github.com/san-kum/mechsim/internal/dynamo"
	"github.com/san-kum/mechsim/internal/integrators"
	"github.com/san-kum/mechsim/internal/metrics"
	"github.com/san-kum/mechsim/internal/physics"
)

func vacuum() (physics.Body, physics.Environment) {
	body := physics.DefaultBody()
	body.DragCoefficient = 0
	body.LiftCoefficient = 0
	env := physics.DefaultEnvironment()
	env.EarthAngularVelocity = 0
	return body, env
}

func runConfig(dt, duration float64) dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.Dt = dt
	cfg.Duration = duration
	return cfg
}

var _ = Describe("DoublePendulum", func() {
	var (
		dyn *physics.DoublePendulum
		sim *dynamo.Simulator[physics.PendulumState]
		ctx context.Context
	)

	BeforeEach(func() {
		var err error
		dyn, err = physics.NewDoublePendulum(physics.DefaultPendulumParams())
		Expect(err).NotTo(HaveOccurred())
		sim = dynamo.New[physics.PendulumState](dyn, integrators.NewRK4[physics.PendulumState]())
		ctx = context.Background()
	})

	DescribeTable("conserves energy with RK4 at dt=0.01 over 10s",
		func(x0 physics.PendulumState, bound float64) {
			drift := metrics.NewEnergyDrift[physics.PendulumState](dyn)
			sim.AddMetric(drift)

			traj, err := sim.Run(ctx, x0, runConfig(0.01, 10))
			Expect(err).NotTo(HaveOccurred())
			Expect(traj.Len()).To(Equal(1001))
			Expect(traj.EnergyDrift).To(BeNumerically("<", bound))
			Expect(traj.Metrics).To(HaveKeyWithValue("energy_drift", BeNumerically("<", bound)))
		},
		Entry("moderate swing", physics.PendulumState{1.0, 0, 0.5, 0}, 1e-6),
		Entry("chaotic swing", physics.PendulumState{2.0, 0, 2.5, 0}, 1e-2),
	)

	It("conserves energy from horizontal arms with adaptive RK45", func() {
		x0 := physics.PendulumState{math.Pi / 2, 0, math.Pi / 2, 0}
		e0 := dyn.Energy(x0)
		Expect(e0).To(BeNumerically("~", 0, 1e-12))

		cfg := runConfig(0.01, 10)
		cfg.Adaptive = true
		cfg.Tolerance = 1e-10
		adaptive := dynamo.New[physics.PendulumState](dyn, integrators.NewRK45[physics.PendulumState]())

		traj, err := adaptive.Run(ctx, x0, cfg)
		Expect(err).NotTo(HaveOccurred())
		scale := (physics.DefaultMass + physics.DefaultMass) * physics.DefaultGravity * physics.DefaultLength
		for _, x := range traj.States {
			Expect(math.Abs(dyn.Energy(x)-e0) / scale).To(BeNumerically("<", 1e-6))
		}
	})

	It("stays at rest when hanging straight down", func() {
		traj, err := sim.Run(ctx, physics.PendulumState{}, runConfig(0.01, 10))
		Expect(err).NotTo(HaveOccurred())
		for _, x := range traj.States {
			Expect(x).To(Equal(physics.PendulumState{}))
		}
	})

	It("is deterministic", func() {
		x0 := physics.PendulumState{2.0, 0.3, 2.5, -0.1}
		a, err := sim.Run(ctx, x0, runConfig(0.01, 5))
		Expect(err).NotTo(HaveOccurred())
		b, err := sim.Run(ctx, x0, runConfig(0.01, 5))
		Expect(err).NotTo(HaveOccurred())
		Expect(a.States).To(Equal(b.States))
		Expect(a.Times).To(Equal(b.Times))
	})

	It("does not wrap angles", func() {
		traj, err := sim.Run(ctx, physics.PendulumState{0, 20, 0, 20}, runConfig(0.01, 2))
		Expect(err).NotTo(HaveOccurred())
		_, x := traj.Final()
		Expect(x[0]).To(BeNumerically(">", 2*math.Pi))
	})
})

var _ = Describe("Projectile", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	newSim := func(body physics.Body, env physics.Environment) (*physics.Projectile, *dynamo.Simulator[physics.ProjectileState]) {
		dyn, err := physics.NewProjectile(body, env)
		Expect(err).NotTo(HaveOccurred())
		return dyn, dynamo.New[physics.ProjectileState](dyn, integrators.NewRK4[physics.ProjectileState]())
	}

	It("follows the textbook parabola in vacuum", func() {
		const v0, angle = 40.0, 35.0
		_, sim := newSim(vacuum())

		traj, err := sim.Run(ctx, physics.LaunchState(v0, angle), runConfig(0.01, 5))
		Expect(err).NotTo(HaveOccurred())

		rad := angle * math.Pi / 180
		g := physics.DefaultGravity
		for i, t := range traj.Times {
			x := traj.States[i]
			Expect(x[0]).To(BeNumerically("~", v0*math.Cos(rad)*t, 1e-9))
			Expect(x[1]).To(BeNumerically("~", v0*math.Sin(rad)*t-0.5*g*t*t, 1e-9))
			Expect(x[2]).To(BeNumerically("~", 0, 1e-12))
		}
	})

	It("lands at the same range for complementary angles in vacuum", func() {
		const v0 = 50.0
		body, env := vacuum()
		_, sim := newSim(body, env)

		rangeAt := func(angle float64) float64 {
			traj, err := sim.Run(ctx, physics.LaunchState(v0, angle), runConfig(0.01, 10))
			Expect(err).NotTo(HaveOccurred())
			f := analysis.SummarizeFlight(traj)
			Expect(f.Landed).To(BeTrue())
			return f.Range
		}

		r30, r60 := rangeAt(30), rangeAt(60)
		Expect(r30).To(BeNumerically("~", r60, 1e-2))
		Expect(r30).To(BeNumerically("~", v0*v0*math.Sin(math.Pi/3)/env.Gravity, 1e-2))
	})

	It("conserves mechanical energy without drag", func() {
		body := physics.DefaultBody()
		body.DragCoefficient = 0
		_, sim := newSim(body, physics.DefaultEnvironment())

		traj, err := sim.Run(ctx, physics.LaunchState(40, 45), runConfig(0.001, 5))
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.EnergyDrift).To(BeNumerically("<", 1e-7))

		// Magnus lift still bends the path sideways
		sideways := 0.0
		for _, z := range traj.Column(2) {
			sideways = math.Max(sideways, math.Abs(z))
		}
		Expect(sideways).To(BeNumerically(">", 1))
	})

	It("loses energy to drag", func() {
		dyn, sim := newSim(physics.DefaultBody(), physics.DefaultEnvironment())
		x0 := physics.LaunchState(40, 45)

		traj, err := sim.Run(ctx, x0, runConfig(0.01, 3))
		Expect(err).NotTo(HaveOccurred())
		prev := dyn.Energy(x0)
		for _, x := range traj.States[1:] {
			e := dyn.Energy(x)
			Expect(e).To(BeNumerically("<", prev))
			prev = e
		}
	})

	It("returns only the initial sample for a zero duration", func() {
		_, sim := newSim(physics.DefaultBody(), physics.DefaultEnvironment())
		x0 := physics.LaunchState(40, 45)

		traj, err := sim.Run(ctx, x0, runConfig(0.01, 0))
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Times).To(Equal([]float64{0}))
		Expect(traj.States).To(Equal([]physics.ProjectileState{x0}))
	})

	It("is deterministic in adaptive mode", func() {
		dyn, err := physics.NewProjectile(physics.DefaultBody(), physics.DefaultEnvironment())
		Expect(err).NotTo(HaveOccurred())
		sim := dynamo.New[physics.ProjectileState](dyn, integrators.NewRK45[physics.ProjectileState]())
		cfg := runConfig(0.05, 4)
		cfg.Adaptive = true

		a, err := sim.Run(ctx, physics.LaunchState(45, 30), cfg)
		Expect(err).NotTo(HaveOccurred())
		b, err := sim.Run(ctx, physics.LaunchState(45, 30), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.States).To(Equal(b.States))
		Expect(a.StepsTaken).To(Equal(b.StepsTaken))
	})

	It("reports divergence as ErrUnstable with the samples computed so far", func() {
		body := physics.DefaultBody()
		body.DragCoefficient = 1e6
		_, sim := newSim(body, physics.DefaultEnvironment())

		traj, err := sim.Run(ctx, physics.LaunchState(1000, 10), runConfig(0.1, 10))
		Expect(errors.Is(err, dynamo.ErrUnstable)).To(BeTrue())

		var simErr *dynamo.SimulationError
		Expect(errors.As(err, &simErr)).To(BeTrue())
		Expect(traj.Len()).To(Equal(simErr.Step))
		for _, x := range traj.States {
			Expect(dynamo.IsFinite(x)).To(BeTrue())
		}
	})

	It("keeps independent results across a concurrent sweep", func() {
		dyn, err := physics.NewProjectile(physics.DefaultBody(), physics.DefaultEnvironment())
		Expect(err).NotTo(HaveOccurred())
		angles := []float64{15, 30, 45, 60, 75}

		run := func(ctx context.Context, angle float64) (*dynamo.Trajectory[physics.ProjectileState], error) {
			sim := dynamo.New[physics.ProjectileState](dyn, integrators.NewRK4[physics.ProjectileState]())
			return sim.Run(ctx, physics.LaunchState(40, angle), runConfig(0.01, 4))
		}

		results, err := dynamo.Sweep(ctx, angles, 3, run)
		Expect(err).NotTo(HaveOccurred())
		for i, angle := range angles {
			serial, err := run(ctx, angle)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[i].States).To(Equal(serial.States))
		}
	})
})

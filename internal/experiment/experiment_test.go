package experiment_test

import (
	"context"
	"errors"
	"math"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/san-kum/mechsim/internal/config"
	"github.com/san-kum/mechsim/internal/dynamo"
	"github.com/san-kum/mechsim/internal/experiment"
)

func TestRunProjectile(t *testing.T) {
	g := NewWithT(t)
	cfg := config.DefaultConfig()

	res, err := experiment.Run(context.Background(), cfg, zerolog.Nop())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Columns).To(Equal(experiment.ProjectileColumns))
	g.Expect(res.Times).To(HaveLen(1001))
	g.Expect(res.States).To(HaveLen(1001))
	g.Expect(res.States[0]).To(HaveLen(6))
	g.Expect(res.Config).To(Equal(*cfg))

	g.Expect(res.Metrics).To(HaveKey("energy_drift"))
	g.Expect(res.Metrics).To(HaveKey("peak_height"))
	g.Expect(res.Summary).To(HaveKey("max_height"))
	g.Expect(res.Summary["max_height"]).To(Equal(res.Metrics["peak_height"]))
	g.Expect(res.Summary["final_distance"]).To(Equal(res.States[1000][0]))

	// drag only removes energy
	g.Expect(res.EnergyDrift).To(BeNumerically(">", 0))
}

func TestRunDoublePendulum(t *testing.T) {
	g := NewWithT(t)
	cfg := config.GetPreset("double_pendulum", "gentle")
	cfg.Duration = 2

	res, err := experiment.Run(context.Background(), cfg, zerolog.Nop())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Columns).To(Equal(experiment.PendulumColumns))
	g.Expect(res.States).To(HaveLen(201))

	for _, row := range res.States {
		g.Expect(row).To(HaveLen(8))
		theta1, theta2 := row[0], row[2]
		g.Expect(row[4]).To(BeNumerically("~", math.Sin(theta1), 1e-12))
		g.Expect(row[5]).To(BeNumerically("~", -math.Cos(theta1), 1e-12))
		g.Expect(row[6]).To(BeNumerically("~", math.Sin(theta1)+math.Sin(theta2), 1e-12))
		g.Expect(row[7]).To(BeNumerically("~", -math.Cos(theta1)-math.Cos(theta2), 1e-12))
	}
	g.Expect(res.Summary["energy_final"]).To(BeNumerically("~", res.Summary["energy_initial"], 1e-6))
	g.Expect(res.Metrics).To(HaveKey("energy"))
	g.Expect(res.Metrics["stability"]).To(Equal(1.0))
}

func TestRunAdaptivePreset(t *testing.T) {
	g := NewWithT(t)
	cfg := config.GetPreset("projectile", "baseball")
	cfg.Duration = 1

	res, err := experiment.Run(context.Background(), cfg, zerolog.Nop())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Times).To(HaveLen(101))
	g.Expect(res.StepsTaken).To(BeNumerically(">=", 100))
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		check  func(error) bool
	}{
		{"unknown model", func(c *config.Config) { c.Model = "cartpole" }, nil},
		{"unknown integrator", func(c *config.Config) { c.Integrator = "leapfrog" }, nil},
		{"invalid mass", func(c *config.Config) { c.Projectile.Mass = 0 }, func(err error) bool {
			return errors.Is(err, dynamo.ErrParameterBounds)
		}},
		{"invalid length", func(c *config.Config) {
			c.Model = "double_pendulum"
			c.Pendulum.L2 = -1
		}, func(err error) bool {
			return errors.Is(err, dynamo.ErrParameterBounds)
		}},
		{"negative duration", func(c *config.Config) { c.Duration = -1 }, func(err error) bool {
			return errors.Is(err, dynamo.ErrParameterBounds)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			res, err := experiment.Run(context.Background(), cfg, zerolog.Nop())
			if err == nil {
				t.Fatal("expected an error")
			}
			if res != nil {
				t.Error("no result expected")
			}
			if tt.check != nil && !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestRunKeepsPartialResultOnDivergence(t *testing.T) {
	g := NewWithT(t)
	cfg := config.DefaultConfig()
	cfg.Projectile.DragCoefficient = 1e6
	cfg.Projectile.Speed = 1000
	cfg.Dt = 0.1

	res, err := experiment.Run(context.Background(), cfg, zerolog.Nop())
	g.Expect(errors.Is(err, dynamo.ErrUnstable)).To(BeTrue())
	g.Expect(res).NotTo(BeNil())
	g.Expect(res.States).NotTo(BeEmpty())
	g.Expect(res.Times).To(HaveLen(len(res.States)))
}

func TestRunCancelled(t *testing.T) {
	g := NewWithT(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := experiment.Run(ctx, config.DefaultConfig(), zerolog.Nop())
	g.Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	g.Expect(res.States).To(HaveLen(1))
}

func TestRegistry(t *testing.T) {
	g := NewWithT(t)
	r := experiment.NewRegistry()
	g.Expect(r.ListModels()).To(Equal([]string{"double_pendulum", "projectile"}))

	called := false
	r.Register("stub", func(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*experiment.Result, error) {
		called = true
		return &experiment.Result{}, nil
	})
	cfg := config.DefaultConfig()
	cfg.Model = "stub"
	_, err := r.Run(context.Background(), cfg, zerolog.Nop())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(called).To(BeTrue())
}

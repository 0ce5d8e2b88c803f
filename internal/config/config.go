package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mechsim/internal/dynamo"
	"github.com/san-kum/mechsim/internal/physics"
)

const (
	DefaultModel      = "projectile"
	DefaultIntegrator = "rk4"
	DefaultDt         = 0.01
	DefaultDuration   = 10.0
	DefaultSpeed      = 50.0 // m/s
	DefaultAngle      = 45.0 // degrees
	DefaultTheta      = math.Pi / 2
)

// EnvPrefix prefixes environment overrides, e.g. MECHSIM_PROJECTILE_SPEED.
const EnvPrefix = "MECHSIM"

type Config struct {
	Model       string            `yaml:"model" json:"model" mapstructure:"model"`
	Integrator  string            `yaml:"integrator" json:"integrator" mapstructure:"integrator"`
	Dt          float64           `yaml:"dt" json:"dt" mapstructure:"dt"`
	Duration    float64           `yaml:"duration" json:"duration" mapstructure:"duration"`
	Adaptive    bool              `yaml:"adaptive" json:"adaptive" mapstructure:"adaptive"`
	Tolerance   float64           `yaml:"tolerance" json:"tolerance" mapstructure:"tolerance"`
	MaxDt       float64           `yaml:"max_dt" json:"max_dt" mapstructure:"max_dt"`
	MinDt       float64           `yaml:"min_dt" json:"min_dt" mapstructure:"min_dt"`
	Projectile  ProjectileConfig  `yaml:"projectile" json:"projectile" mapstructure:"projectile"`
	Environment EnvironmentConfig `yaml:"environment" json:"environment" mapstructure:"environment"`
	Pendulum    PendulumConfig    `yaml:"pendulum" json:"pendulum" mapstructure:"pendulum"`
}

type ProjectileConfig struct {
	Mass            float64 `yaml:"mass" json:"mass" mapstructure:"mass"`
	Radius          float64 `yaml:"radius" json:"radius" mapstructure:"radius"`
	SpinRate        float64 `yaml:"spin_rate" json:"spin_rate" mapstructure:"spin_rate"`
	DragCoefficient float64 `yaml:"drag_coefficient" json:"drag_coefficient" mapstructure:"drag_coefficient"`
	LiftCoefficient float64 `yaml:"lift_coefficient" json:"lift_coefficient" mapstructure:"lift_coefficient"`
	Speed           float64 `yaml:"speed" json:"speed" mapstructure:"speed"`
	Angle           float64 `yaml:"angle" json:"angle" mapstructure:"angle"`
}

type EnvironmentConfig struct {
	Gravity              float64 `yaml:"gravity" json:"gravity" mapstructure:"gravity"`
	SeaLevelDensity      float64 `yaml:"sea_level_density" json:"sea_level_density" mapstructure:"sea_level_density"`
	ScaleHeight          float64 `yaml:"scale_height" json:"scale_height" mapstructure:"scale_height"`
	EarthAngularVelocity float64 `yaml:"earth_angular_velocity" json:"earth_angular_velocity" mapstructure:"earth_angular_velocity"`
	Latitude             float64 `yaml:"latitude" json:"latitude" mapstructure:"latitude"`
}

type PendulumConfig struct {
	M1     float64 `yaml:"m1" json:"m1" mapstructure:"m1"`
	M2     float64 `yaml:"m2" json:"m2" mapstructure:"m2"`
	L1     float64 `yaml:"l1" json:"l1" mapstructure:"l1"`
	L2     float64 `yaml:"l2" json:"l2" mapstructure:"l2"`
	Theta1 float64 `yaml:"theta1" json:"theta1" mapstructure:"theta1"`
	Omega1 float64 `yaml:"omega1" json:"omega1" mapstructure:"omega1"`
	Theta2 float64 `yaml:"theta2" json:"theta2" mapstructure:"theta2"`
	Omega2 float64 `yaml:"omega2" json:"omega2" mapstructure:"omega2"`
}

func DefaultConfig() *Config {
	run := dynamo.DefaultConfig()
	body := physics.DefaultBody()
	env := physics.DefaultEnvironment()
	pend := physics.DefaultPendulumParams()

	return &Config{
		Model:      DefaultModel,
		Integrator: DefaultIntegrator,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Tolerance:  run.Tolerance,
		MaxDt:      run.MaxDt,
		MinDt:      run.MinDt,
		Projectile: ProjectileConfig{
			Mass:            body.Mass,
			Radius:          body.Radius,
			SpinRate:        body.SpinRate,
			DragCoefficient: body.DragCoefficient,
			LiftCoefficient: body.LiftCoefficient,
			Speed:           DefaultSpeed,
			Angle:           DefaultAngle,
		},
		Environment: EnvironmentConfig{
			Gravity:              env.Gravity,
			SeaLevelDensity:      env.SeaLevelDensity,
			ScaleHeight:          env.ScaleHeight,
			EarthAngularVelocity: env.EarthAngularVelocity,
			Latitude:             env.Latitude,
		},
		Pendulum: PendulumConfig{
			M1: pend.M1, M2: pend.M2,
			L1: pend.L1, L2: pend.L2,
			Theta1: DefaultTheta, Theta2: DefaultTheta,
		},
	}
}

// Load reads path on top of the defaults and applies MECHSIM_* environment
// overrides. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	if err := registerDefaults(v); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// registerDefaults feeds every leaf of DefaultConfig to viper so that
// environment overrides resolve for keys absent from the file.
func registerDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	tree := map[string]any{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	setDefaults(v, "", tree)
	return nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

func (c *Config) RunConfig() dynamo.Config {
	return dynamo.Config{
		Dt:        c.Dt,
		Duration:  c.Duration,
		Tolerance: c.Tolerance,
		MaxDt:     c.MaxDt,
		MinDt:     c.MinDt,
		Adaptive:  c.Adaptive,
	}
}

func (c *Config) Body() physics.Body {
	return physics.Body{
		Mass:            c.Projectile.Mass,
		Radius:          c.Projectile.Radius,
		SpinRate:        c.Projectile.SpinRate,
		DragCoefficient: c.Projectile.DragCoefficient,
		LiftCoefficient: c.Projectile.LiftCoefficient,
	}
}

func (c *Config) PhysicsEnvironment() physics.Environment {
	return physics.Environment{
		Gravity:              c.Environment.Gravity,
		SeaLevelDensity:      c.Environment.SeaLevelDensity,
		ScaleHeight:          c.Environment.ScaleHeight,
		EarthAngularVelocity: c.Environment.EarthAngularVelocity,
		Latitude:             c.Environment.Latitude,
	}
}

// PendulumParams shares gravity with the projectile environment.
func (c *Config) PendulumParams() physics.PendulumParams {
	return physics.PendulumParams{
		M1:      c.Pendulum.M1,
		M2:      c.Pendulum.M2,
		L1:      c.Pendulum.L1,
		L2:      c.Pendulum.L2,
		Gravity: c.Environment.Gravity,
	}
}

func (c *Config) LaunchState() physics.ProjectileState {
	return physics.LaunchState(c.Projectile.Speed, c.Projectile.Angle)
}

func (c *Config) PendulumState() physics.PendulumState {
	return physics.PendulumState{c.Pendulum.Theta1, c.Pendulum.Omega1, c.Pendulum.Theta2, c.Pendulum.Omega2}
}

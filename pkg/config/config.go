package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/open-teleop/armbridge/domain/teleop"
)

var (
	// ErrValidation is wrapped by every Validate failure.
	ErrValidation  = errors.New("validation failed")
	ErrInvalidYAML = errors.New("invalid YAML format")
)

// Config is the operational configuration of the bridge. It is read once at
// start and fixed for the run.
type Config struct {
	Version       string              `yaml:"version" json:"version"`
	ConfigID      string              `yaml:"config_id" json:"config_id"`
	LastUpdated   string              `yaml:"lastUpdated" json:"lastUpdated"`
	RobotID       string              `yaml:"robot_id" json:"robot_id"`
	Safety        SafetyConfig        `yaml:"safety" json:"safety"`
	Timing        TimingConfig        `yaml:"timing" json:"timing"`
	Cadence       CadenceConfig       `yaml:"cadence" json:"cadence"`
	Interpolation InterpolationConfig `yaml:"interpolation" json:"interpolation"`
	Command       CommandConfig       `yaml:"command" json:"command"`
	Start         StartConfig         `yaml:"start" json:"start"`
}

// SafetyConfig holds the workspace envelope
type SafetyConfig struct {
	MinZ      float64 `yaml:"min_z" json:"min_z"`
	MaxRadius float64 `yaml:"max_radius" json:"max_radius"`
	Strategy  string  `yaml:"strategy" json:"strategy"`
}

// TimingConfig holds pacing constants in seconds
type TimingConfig struct {
	CycleTime     float64 `yaml:"cycle_time" json:"cycle_time"`
	SubInterval   float64 `yaml:"sub_interval" json:"sub_interval"`
	TotalDuration float64 `yaml:"total_duration" json:"total_duration"`
}

// CadenceConfig selects how many cycles one frame drives
type CadenceConfig struct {
	Policy string `yaml:"policy" json:"policy"`
}

// InterpolationConfig controls the reachability search resolution
type InterpolationConfig struct {
	Steps int `yaml:"steps" json:"steps"`
}

// CommandConfig holds velocity command parameters
type CommandConfig struct {
	Acceleration float64 `yaml:"acceleration" json:"acceleration"`
	MaxSpeed     float64 `yaml:"max_speed" json:"max_speed"`
}

// StartConfig is the pose the arm is moved to before the loop starts
type StartConfig struct {
	Pose         []float64 `yaml:"pose" json:"pose"`
	Speed        float64   `yaml:"speed" json:"speed"`
	Acceleration float64   `yaml:"acceleration" json:"acceleration"`
}

// Default returns the configuration the bridge runs with when a field is
// left out.
func Default() Config {
	return Config{
		Version: "1.0",
		Safety: SafetyConfig{
			MinZ:      0.05,
			MaxRadius: 0.5,
			Strategy:  teleop.StrategyGeometric,
		},
		Timing: TimingConfig{
			CycleTime:     0.05,
			SubInterval:   0.05,
			TotalDuration: 1.0,
		},
		Cadence:       CadenceConfig{Policy: teleop.PolicySubInterval},
		Interpolation: InterpolationConfig{Steps: teleop.DefaultInterpolationSteps},
		Command:       CommandConfig{Acceleration: teleop.DefaultAcceleration},
		Start: StartConfig{
			Pose:         []float64{0.02, -0.3, 0.375, 1.39, 2.314, -0.36},
			Speed:        0.3,
			Acceleration: 0.3,
		},
	}
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	cfg.Start.Pose = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if cfg.Start.Pose == nil {
		cfg.Start.Pose = Default().Start.Pose
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads the operational configuration from the given file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file '%s': %w", path, err)
	}
	return cfg, nil
}

// Validate checks the semantic constraints between fields.
func (c *Config) Validate() error {
	var problems []string
	if c.Safety.MinZ >= c.Safety.MaxRadius {
		problems = append(problems, "safety.min_z must be below safety.max_radius")
	}
	if c.Safety.MaxRadius <= 0 {
		problems = append(problems, "safety.max_radius must be positive")
	}
	switch c.Safety.Strategy {
	case teleop.StrategyGeometric, teleop.StrategyActuator:
	default:
		problems = append(problems, fmt.Sprintf("unknown safety.strategy '%s'", c.Safety.Strategy))
	}
	if c.Timing.CycleTime <= 0 || c.Timing.SubInterval <= 0 || c.Timing.TotalDuration <= 0 {
		problems = append(problems, "timing values must be positive")
	}
	if c.Timing.SubInterval > c.Timing.TotalDuration {
		problems = append(problems, "timing.sub_interval must not exceed timing.total_duration")
	}
	switch c.Cadence.Policy {
	case teleop.PolicySingleShot, teleop.PolicySubInterval:
	default:
		problems = append(problems, fmt.Sprintf("unknown cadence.policy '%s'", c.Cadence.Policy))
	}
	if c.Interpolation.Steps < 1 {
		problems = append(problems, "interpolation.steps must be at least 1")
	}
	if c.Command.Acceleration <= 0 {
		problems = append(problems, "command.acceleration must be positive")
	}
	if c.Command.MaxSpeed < 0 {
		problems = append(problems, "command.max_speed must not be negative")
	}
	if len(c.Start.Pose) != 6 {
		problems = append(problems, fmt.Sprintf("start.pose needs 6 values, got %d", len(c.Start.Pose)))
	}
	if c.Start.Speed <= 0 || c.Start.Acceleration <= 0 {
		problems = append(problems, "start.speed and start.acceleration must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// Limits returns the envelope limits.
func (c *Config) Limits() teleop.SafetyLimits {
	return teleop.SafetyLimits{MinZ: c.Safety.MinZ, MaxRadius: c.Safety.MaxRadius}
}

// CycleTiming returns the pacing constants.
func (c *Config) CycleTiming() teleop.CycleTiming {
	return teleop.CycleTiming{
		CycleTime:     c.Timing.CycleTime,
		SubInterval:   c.Timing.SubInterval,
		TotalDuration: c.Timing.TotalDuration,
	}
}

// StartPose returns the configured start pose.
func (c *Config) StartPose() (teleop.Pose, error) {
	return teleop.PoseFromSlice(c.Start.Pose)
}

// Synthesizer returns the command synthesizer settings.
func (c *Config) Synthesizer() teleop.Synthesizer {
	return teleop.Synthesizer{Acceleration: c.Command.Acceleration, MaxSpeed: c.Command.MaxSpeed}
}

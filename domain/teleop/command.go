package teleop

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultAcceleration is the tool acceleration passed with velocity commands,
// in m/s^2.
const DefaultAcceleration = 0.25

// VelocityCommand is a tool-space velocity command for the actuator's
// velocity mode: [vx vy vz wx wy wz], an acceleration and how long the
// command stays active, in seconds.
type VelocityCommand struct {
	Vector       [6]float64
	Acceleration float64
	Duration     float64
}

// Linear returns the translational part of the command.
func (c VelocityCommand) Linear() r3.Vec {
	return r3.Vec{X: c.Vector[0], Y: c.Vector[1], Z: c.Vector[2]}
}

// Synthesizer turns an admissible pose delta into a velocity command.
type Synthesizer struct {
	Acceleration float64
	// MaxSpeed caps the translational speed when positive.
	MaxSpeed float64
}

// Synthesize computes (target - current) / cycleTime on the positional axes.
// Rotational components are always zero.
func (s Synthesizer) Synthesize(current, target Pose, cycleTime float64) VelocityCommand {
	lin := r3.Scale(1/cycleTime, r3.Sub(target.Position(), current.Position()))
	if s.MaxSpeed > 0 {
		if speed := r3.Norm(lin); speed > s.MaxSpeed {
			lin = r3.Scale(s.MaxSpeed/speed, lin)
		}
	}

	acc := s.Acceleration
	if acc <= 0 {
		acc = DefaultAcceleration
	}
	return VelocityCommand{
		Vector:       [6]float64{lin.X, lin.Y, lin.Z, 0, 0, 0},
		Acceleration: acc,
		Duration:     cycleTime,
	}
}

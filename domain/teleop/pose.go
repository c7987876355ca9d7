package teleop

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// Velocity is a commanded linear velocity of the end effector in the robot
// base frame, in m/s.
type Velocity struct {
	DX, DY, DZ float64
}

// Vec returns v as a gonum vector.
func (v Velocity) Vec() r3.Vec {
	return r3.Vec{X: v.DX, Y: v.DY, Z: v.DZ}
}

// Finite reports whether every component is a finite number.
func (v Velocity) Finite() bool {
	for _, c := range [3]float64{v.DX, v.DY, v.DZ} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (v Velocity) String() string {
	return fmt.Sprintf("dx=%.4f, dy=%.4f, dz=%.4f", v.DX, v.DY, v.DZ)
}

// Pose is an end effector pose. X, Y, Z are meters; RX, RY, RZ are in the
// actuator's native rotation representation and are only carried, never
// interpreted.
type Pose struct {
	X, Y, Z    float64
	RX, RY, RZ float64
}

// PoseFromArray builds a Pose from the actuator's [x y z rx ry rz] layout.
func PoseFromArray(a [6]float64) Pose {
	return Pose{X: a[0], Y: a[1], Z: a[2], RX: a[3], RY: a[4], RZ: a[5]}
}

// PoseFromSlice is PoseFromArray for slices; it fails unless len(s) == 6.
func PoseFromSlice(s []float64) (Pose, error) {
	if len(s) != 6 {
		return Pose{}, fmt.Errorf("pose needs 6 components, got %d", len(s))
	}
	var a [6]float64
	copy(a[:], s)
	return PoseFromArray(a), nil
}

// Array returns p in [x y z rx ry rz] layout.
func (p Pose) Array() [6]float64 {
	return [6]float64{p.X, p.Y, p.Z, p.RX, p.RY, p.RZ}
}

// Position returns the positional part of p.
func (p Pose) Position() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// WithPosition returns a copy of p with its positional part replaced.
func (p Pose) WithPosition(v r3.Vec) Pose {
	p.X, p.Y, p.Z = v.X, v.Y, v.Z
	return p
}

// Radius is the distance of the position from the base origin.
func (p Pose) Radius() float64 {
	return r3.Norm(p.Position())
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f | %.4f, %.4f, %.4f)", p.X, p.Y, p.Z, p.RX, p.RY, p.RZ)
}

// SafetyLimits bound the workspace: a floor height and a reach radius.
type SafetyLimits struct {
	MinZ      float64
	MaxRadius float64
}

// CycleTiming holds the pacing constants, all in seconds.
type CycleTiming struct {
	CycleTime     float64
	SubInterval   float64
	TotalDuration float64
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

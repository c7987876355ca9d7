package teleop

import (
	"context"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultInterpolationSteps gives a 0.1 step along the current to target path.
const DefaultInterpolationSteps = 10

// Interpolation is the outcome of one reachability search.
type Interpolation struct {
	// Pose is the farthest admissible pose found, or the current pose when
	// Found is false.
	Pose Pose
	// Target is the unconstrained pose the velocity would reach.
	Target Pose
	// Fraction is the path parameter of Pose, in [0, 1].
	Fraction float64
	Found    bool
}

// Projector searches the straight line from the current pose towards the pose
// a velocity would reach, and keeps the farthest admissible point.
//
// The search assumes admissibility along the line is a prefix of [0, 1]: it
// stops at the first rejected sample and never looks past it. For a
// non-convex envelope the result can therefore be shorter than the true
// maximum.
type Projector struct {
	Envelope Envelope
	Steps    int
}

// NewProjector returns a projector sampling the path in steps equal parts.
func NewProjector(env Envelope, steps int) *Projector {
	if steps <= 0 {
		steps = DefaultInterpolationSteps
	}
	return &Projector{Envelope: env, Steps: steps}
}

// Target returns current displaced by v over horizon seconds. Rotation is
// copied unchanged.
func Target(current Pose, v Velocity, horizon float64) Pose {
	return current.WithPosition(r3.Add(current.Position(), r3.Scale(horizon, v.Vec())))
}

// Project runs the search. It only reads from the envelope.
//
// Admissibility is assumed monotonic along the ray: the search stops at the
// first inadmissible step and keeps the step before it, even when a later
// step would be admitted again.
func (p *Projector) Project(ctx context.Context, current Pose, v Velocity, horizon float64) (Interpolation, error) {
	target := Target(current, v, horizon)
	res := Interpolation{Pose: current, Target: target}

	// A start outside the envelope means the admissible prefix is empty.
	ok, err := p.Envelope.Admits(ctx, current)
	if err != nil {
		return Interpolation{}, err
	}
	if !ok {
		return res, nil
	}

	from := current.Position()
	delta := r3.Sub(target.Position(), from)

	for i := 1; i <= p.Steps; i++ {
		t := float64(i) / float64(p.Steps)
		candidate := target
		if i < p.Steps {
			candidate = current.WithPosition(r3.Add(from, r3.Scale(t, delta)))
		}

		ok, err := p.Envelope.Admits(ctx, candidate)
		if err != nil {
			return Interpolation{}, err
		}
		if !ok {
			break
		}
		res.Pose = candidate
		res.Fraction = t
		res.Found = true
	}
	return res, nil
}

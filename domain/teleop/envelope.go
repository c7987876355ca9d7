package teleop

import (
	"context"
	"fmt"
)

// Envelope decides whether a candidate pose is safe to command into. It is
// queried once per interpolation step and must not have side effects.
type Envelope interface {
	Admits(ctx context.Context, p Pose) (bool, error)
}

// PoseValidator is the actuator's own pose-validity oracle.
type PoseValidator interface {
	IsPoseAdmissible(ctx context.Context, p Pose) (bool, error)
}

// Envelope strategy names, as used in configuration.
const (
	StrategyGeometric = "geometric"
	StrategyActuator  = "actuator"
)

// GeometricEnvelope admits poses at or above MinZ and within MaxRadius of the
// base origin.
type GeometricEnvelope struct {
	Limits SafetyLimits
}

// Admits never fails.
func (e GeometricEnvelope) Admits(_ context.Context, p Pose) (bool, error) {
	return p.Z >= e.Limits.MinZ && p.Radius() <= e.Limits.MaxRadius, nil
}

// DelegatedEnvelope defers the verdict to the actuator. The actuator is treated
// as an opaque, possibly conservative, authority.
type DelegatedEnvelope struct {
	Validator PoseValidator
}

// Admits asks the validator. A validator failure is returned as an
// *ActuatorFault.
func (e DelegatedEnvelope) Admits(ctx context.Context, p Pose) (bool, error) {
	ok, err := e.Validator.IsPoseAdmissible(ctx, p)
	if err != nil {
		return false, &ActuatorFault{Op: "is_pose_admissible", Err: err}
	}
	return ok, nil
}

// NewEnvelope builds the envelope for a configured strategy name. validator
// is only used by the actuator strategy.
func NewEnvelope(strategy string, limits SafetyLimits, validator PoseValidator) (Envelope, error) {
	switch strategy {
	case StrategyGeometric, "":
		return GeometricEnvelope{Limits: limits}, nil
	case StrategyActuator:
		if validator == nil {
			return nil, fmt.Errorf("envelope strategy %q needs a pose validator", strategy)
		}
		return DelegatedEnvelope{Validator: validator}, nil
	default:
		return nil, fmt.Errorf("unknown envelope strategy %q", strategy)
	}
}

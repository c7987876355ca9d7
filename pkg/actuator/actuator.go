// Package actuator describes the manipulator interface the bridge drives and
// provides an in-memory simulated arm.
package actuator

import (
	"context"

	"github.com/open-teleop/armbridge/domain/teleop"
)

// Arm is the full manipulator interface: per-cycle telemetry and velocity
// mode, the pose-validity oracle, and the startup and shutdown primitives.
type Arm interface {
	teleop.Actuator
	teleop.PoseValidator

	// MoveToPose performs a blocking linear move, used once at startup.
	MoveToPose(ctx context.Context, pose teleop.Pose, speed, acceleration float64) error
	// StopProgram ends the arm's control program. Called once at shutdown.
	StopProgram(ctx context.Context) error
}

package actuator

import (
	"context"
	"errors"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/open-teleop/armbridge/domain/teleop"
	customlog "github.com/open-teleop/armbridge/pkg/log"
)

// ErrProgramStopped is returned by a SimArm after StopProgram.
var ErrProgramStopped = errors.New("arm program stopped")

// SimStats counts calls made on a SimArm.
type SimStats struct {
	PoseReads        int
	VelocityCommands int
	Stops            int
	Moves            int
	ValidityQueries  int
}

// SimArm is an in-memory manipulator. A velocity command moves the tool by
// velocity*duration in one step; there is no dynamics model. The reachability
// oracle is a sphere around the base above a floor, which may be tighter than
// the bridge's own limits.
type SimArm struct {
	mu      sync.Mutex
	pose    teleop.Pose
	reach   teleop.SafetyLimits
	active  teleop.VelocityCommand
	moving  bool
	stopped bool
	stats   SimStats
	logger  customlog.Logger
}

var _ Arm = (*SimArm)(nil)

// NewSimArm returns a simulated arm resting at start.
func NewSimArm(start teleop.Pose, reach teleop.SafetyLimits, logger customlog.Logger) *SimArm {
	if logger == nil {
		logger = customlog.Nop()
	}
	return &SimArm{pose: start, reach: reach, logger: logger}
}

func (a *SimArm) CurrentPose(context.Context) (teleop.Pose, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.PoseReads++
	if a.stopped {
		return teleop.Pose{}, ErrProgramStopped
	}
	return a.pose, nil
}

func (a *SimArm) SendVelocity(_ context.Context, cmd teleop.VelocityCommand) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return ErrProgramStopped
	}
	a.stats.VelocityCommands++
	step := r3.Scale(cmd.Duration, cmd.Linear())
	a.pose = a.pose.WithPosition(r3.Add(a.pose.Position(), step))
	a.active = cmd
	a.moving = true
	a.logger.Debugf("sim speedL %v -> pose %s", cmd.Vector, a.pose)
	return nil
}

func (a *SimArm) Stop(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return ErrProgramStopped
	}
	a.stats.Stops++
	a.active = teleop.VelocityCommand{}
	a.moving = false
	return nil
}

// IsPoseAdmissible accepts poses inside the arm's reach sphere and above its
// floor. A zero MaxRadius disables the sphere.
func (a *SimArm) IsPoseAdmissible(_ context.Context, p teleop.Pose) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return false, ErrProgramStopped
	}
	a.stats.ValidityQueries++
	if p.Z < a.reach.MinZ {
		return false, nil
	}
	if a.reach.MaxRadius > 0 && p.Radius() > a.reach.MaxRadius {
		return false, nil
	}
	return true, nil
}

func (a *SimArm) MoveToPose(_ context.Context, pose teleop.Pose, speed, acceleration float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return ErrProgramStopped
	}
	if speed <= 0 || acceleration <= 0 {
		return errors.New("moveL needs positive speed and acceleration")
	}
	a.stats.Moves++
	a.pose = pose
	a.moving = false
	a.logger.Infof("sim moveL to %s (speed=%.2f, acc=%.2f)", pose, speed, acceleration)
	return nil
}

func (a *SimArm) StopProgram(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	a.moving = false
	return nil
}

// Moving reports whether a velocity command is active.
func (a *SimArm) Moving() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.moving
}

// ActiveCommand returns the last velocity command not yet cancelled by Stop.
func (a *SimArm) ActiveCommand() teleop.VelocityCommand {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Stats returns a copy of the call counters.
func (a *SimArm) Stats() SimStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

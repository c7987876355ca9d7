package teleop

import (
	"context"
	"errors"
	"io"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// recordingArm is an Actuator that integrates commands instantly and records
// every call.
type recordingArm struct {
	pose     Pose
	commands []VelocityCommand
	calls    []string
	stops    int

	poseErr  error
	speedErr error
	stopErr  error
}

func (a *recordingArm) CurrentPose(context.Context) (Pose, error) {
	a.calls = append(a.calls, "get_pose")
	if a.poseErr != nil {
		return Pose{}, a.poseErr
	}
	return a.pose, nil
}

func (a *recordingArm) SendVelocity(_ context.Context, cmd VelocityCommand) error {
	a.calls = append(a.calls, "speed_l")
	if a.speedErr != nil {
		return a.speedErr
	}
	a.commands = append(a.commands, cmd)
	a.pose = a.pose.WithPosition(r3.Add(a.pose.Position(), r3.Scale(cmd.Duration, cmd.Linear())))
	return nil
}

func (a *recordingArm) Stop(context.Context) error {
	a.calls = append(a.calls, "speed_stop")
	a.stops++
	return a.stopErr
}

// scriptedSource replays frames and then fails with end.
type scriptedSource struct {
	frames []Velocity
	end    error
	onNext func(i int)
	i      int
}

func (s *scriptedSource) Next(ctx context.Context) (Velocity, error) {
	if s.onNext != nil {
		s.onNext(s.i)
	}
	if err := ctx.Err(); err != nil {
		return Velocity{}, err
	}
	if s.i >= len(s.frames) {
		if s.end == nil {
			return Velocity{}, io.EOF
		}
		return Velocity{}, s.end
	}
	v := s.frames[s.i]
	s.i++
	return v, nil
}

// fakeClock records pacing instead of sleeping.
type fakeClock struct {
	slept []time.Duration
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.slept = append(c.slept, d)
	return ctx.Err()
}

type recordingObserver struct {
	states  []State
	reports []CycleReport
}

func (o *recordingObserver) StateChanged(s State)         { o.states = append(o.states, s) }
func (o *recordingObserver) CycleCompleted(r CycleReport) { o.reports = append(o.reports, r) }

type countingValidator struct {
	verdict func(Pose) bool
	queries int
	err     error
}

func (v *countingValidator) IsPoseAdmissible(_ context.Context, p Pose) (bool, error) {
	v.queries++
	if v.err != nil {
		return false, v.err
	}
	return v.verdict(p), nil
}

var errBoom = errors.New("boom")

var testLimits = SafetyLimits{MinZ: 0.05, MaxRadius: 0.5}

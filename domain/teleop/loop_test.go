package teleop

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loopFixture struct {
	arm      *recordingArm
	source   *scriptedSource
	clock    *fakeClock
	observer *recordingObserver
	loop     *Loop
}

func newFixture(t *testing.T, start Pose, cadence Cadence, frames ...Velocity) *loopFixture {
	t.Helper()
	f := &loopFixture{
		arm:      &recordingArm{pose: start},
		source:   &scriptedSource{frames: frames},
		clock:    &fakeClock{},
		observer: &recordingObserver{},
	}
	projector := NewProjector(GeometricEnvelope{Limits: testLimits}, DefaultInterpolationSteps)
	loop, err := NewLoop(f.source, f.arm, projector, Synthesizer{Acceleration: 0.25}, cadence, nil, &LoopOptions{
		Session:   "test-session",
		Sleeper:   f.clock.Sleep,
		Observers: []Observer{f.observer},
	})
	require.NoError(t, err)
	f.loop = loop
	return f
}

func TestLoopSingleShotCommandsVelocity(t *testing.T) {
	f := newFixture(t, Pose{Z: 0.3}, SingleShot{CycleTime: 1.0}, Velocity{DX: 0.1})

	err := f.loop.Run(context.Background())

	assert.ErrorIs(t, err, io.EOF)
	require.Len(t, f.arm.commands, 1)
	assert.Equal(t, [6]float64{0.1, 0, 0, 0, 0, 0}, f.arm.commands[0].Vector)
	assert.Equal(t, 1.0, f.arm.commands[0].Duration)
	assert.Equal(t, []time.Duration{time.Second}, f.clock.slept)
	// the only stop is the one on shutdown
	assert.Equal(t, 1, f.arm.stops)
	assert.Equal(t, StateShutdown, f.loop.State())
}

func TestLoopClipsAtFloor(t *testing.T) {
	f := newFixture(t, Pose{Z: 0.3}, SingleShot{CycleTime: 1.0}, Velocity{DZ: -1})

	_ = f.loop.Run(context.Background())

	require.Len(t, f.arm.commands, 1)
	vz := f.arm.commands[0].Vector[2]
	assert.Less(t, vz, 0.0)
	assert.Greater(t, vz, -1.0)
	assert.GreaterOrEqual(t, f.arm.pose.Z, testLimits.MinZ)

	require.Len(t, f.observer.reports, 1)
	r := f.observer.reports[0]
	assert.Equal(t, OutcomeCommanded, r.Outcome)
	assert.InDelta(t, 0.2, r.Fraction, 1e-12)
	assert.Equal(t, "test-session", r.Session)
	assert.Equal(t, uint64(1), r.Seq)
}

func TestLoopHaltsWhenStartIsOutside(t *testing.T) {
	f := newFixture(t, Pose{Z: 0.01}, SingleShot{CycleTime: 0.1}, Velocity{DZ: -0.1}, Velocity{DX: 0.1})

	_ = f.loop.Run(context.Background())

	assert.Empty(t, f.arm.commands)
	// one halt per frame plus the shutdown stop
	assert.Equal(t, 3, f.arm.stops)
	require.Len(t, f.observer.reports, 2)
	for _, r := range f.observer.reports {
		assert.Equal(t, OutcomeHalted, r.Outcome)
		assert.ErrorIs(t, r.Reason, ErrSafetyRejection)
	}
	// the cycle is still paced after a halt
	assert.Len(t, f.clock.slept, 2)
	assert.Contains(t, f.observer.states, StateHaltCycle)
}

func TestLoopShortFrameShutsDown(t *testing.T) {
	shortRead := errors.New("short frame: got 7 of 24 bytes")
	f := newFixture(t, Pose{Z: 0.3}, SingleShot{CycleTime: 0.1})
	f.source.end = shortRead

	err := f.loop.Run(context.Background())

	assert.ErrorIs(t, err, shortRead)
	assert.Equal(t, 1, f.arm.stops)
	assert.Equal(t, []string{"speed_stop"}, f.arm.calls)
	assert.Equal(t, StateShutdown, f.observer.states[len(f.observer.states)-1])
}

func TestLoopStateSequence(t *testing.T) {
	f := newFixture(t, Pose{Z: 0.3}, SingleShot{CycleTime: 0.1}, Velocity{DX: 0.1})

	_ = f.loop.Run(context.Background())

	want := []State{StateAwaitFrame, StateProjectAndValidate, StateCommand, StatePace, StateAwaitFrame, StateShutdown}
	if diff := cmp.Diff(want, f.observer.states); diff != "" {
		t.Errorf("state sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestLoopSubIntervalRepeatsFrame(t *testing.T) {
	cadence := SubInterval{SubInterval: 0.05, TotalDuration: 0.2}
	f := newFixture(t, Pose{Z: 0.3}, cadence, Velocity{DX: 0.1})

	_ = f.loop.Run(context.Background())

	require.Len(t, f.arm.commands, 4)
	for _, c := range f.arm.commands {
		assert.InDelta(t, 0.1, c.Vector[0], 1e-9)
		assert.Equal(t, 0.05, c.Duration)
	}
	assert.InDelta(t, 0.02, f.arm.pose.X, 1e-9)
	assert.Len(t, f.clock.slept, 4)
	// stop after the repetition and on shutdown
	assert.Equal(t, 2, f.arm.stops)
	assert.Equal(t, "speed_stop", f.arm.calls[len(f.arm.calls)-2])
}

func TestLoopSubIntervalStopsOnRejection(t *testing.T) {
	// Each repetition moves 0.05 down; the floor is reached after a few.
	cadence := SubInterval{SubInterval: 0.05, TotalDuration: 1.0}
	f := newFixture(t, Pose{Z: 0.2}, cadence, Velocity{DZ: -1})

	_ = f.loop.Run(context.Background())

	assert.Less(t, len(f.arm.commands), cadence.Repetitions())
	assert.NotEmpty(t, f.arm.commands)
	assert.GreaterOrEqual(t, f.arm.pose.Z, testLimits.MinZ-1e-9)

	last := f.observer.reports[len(f.observer.reports)-1]
	assert.Equal(t, OutcomeHalted, last.Outcome)
	// stop on rejection, none after the aborted repetition, one on shutdown
	assert.Equal(t, 2, f.arm.stops)
}

func TestLoopNonFiniteVelocityHalts(t *testing.T) {
	nan := Velocity{DX: 0}
	nan.DY = nan.DX / zero()
	f := newFixture(t, Pose{Z: 0.3}, SingleShot{CycleTime: 0.1}, nan)

	_ = f.loop.Run(context.Background())

	assert.Empty(t, f.arm.commands)
	require.Len(t, f.observer.reports, 1)
	assert.ErrorIs(t, f.observer.reports[0].Reason, ErrSafetyRejection)
}

func zero() float64 { return 0 }

func TestLoopActuatorFault(t *testing.T) {
	f := newFixture(t, Pose{Z: 0.3}, SingleShot{CycleTime: 0.1}, Velocity{DX: 0.1}, Velocity{DX: 0.1})
	f.arm.speedErr = errBoom

	err := f.loop.Run(context.Background())

	var fault *ActuatorFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "speed_l", fault.Op)
	// best-effort stop still attempted
	assert.Equal(t, 1, f.arm.stops)
	assert.Equal(t, 1, f.source.i)
}

func TestLoopPoseFault(t *testing.T) {
	f := newFixture(t, Pose{Z: 0.3}, SingleShot{CycleTime: 0.1}, Velocity{DX: 0.1})
	f.arm.poseErr = errBoom

	err := f.loop.Run(context.Background())

	assert.True(t, IsActuatorFault(err))
	assert.ErrorIs(t, err, errBoom)
}

func TestLoopStopFaultOnShutdown(t *testing.T) {
	f := newFixture(t, Pose{Z: 0.3}, SingleShot{CycleTime: 0.1})
	f.arm.stopErr = errBoom

	err := f.loop.Run(context.Background())

	assert.True(t, IsActuatorFault(err))
}

func TestLoopCancellationFinishesCycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := newFixture(t, Pose{Z: 0.3}, SingleShot{CycleTime: 0.1}, Velocity{DX: 0.1}, Velocity{DX: 0.1})
	f.arm.calls = nil
	f.source.onNext = func(i int) {
		if i == 1 {
			cancel()
		}
	}

	err := f.loop.Run(ctx)

	assert.NoError(t, err)
	assert.Len(t, f.arm.commands, 1)
	assert.Equal(t, 1, f.arm.stops)
}

func TestLoopCancelledDuringPace(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := newFixture(t, Pose{Z: 0.3}, SingleShot{CycleTime: 0.1}, Velocity{DX: 0.1}, Velocity{DX: 0.1})
	f.loop.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	err := f.loop.Run(ctx)

	assert.NoError(t, err)
	assert.Len(t, f.arm.commands, 1)
	assert.Equal(t, 1, f.arm.stops)
}

func TestNewLoopRequiresCollaborators(t *testing.T) {
	_, err := NewLoop(nil, &recordingArm{}, NewProjector(GeometricEnvelope{}, 0), Synthesizer{}, SingleShot{CycleTime: 1}, nil, nil)
	assert.Error(t, err)
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
}

package teleop

import (
	"context"
	"errors"
	"fmt"
	"time"

	customlog "github.com/open-teleop/armbridge/pkg/log"
)

// FrameSource delivers velocity frames. Next blocks until a full frame has
// arrived; it is where the loop waits for the remote operator. Any error is
// terminal for the session.
type FrameSource interface {
	Next(ctx context.Context) (Velocity, error)
}

// Actuator is the part of the manipulator interface used every cycle.
type Actuator interface {
	CurrentPose(ctx context.Context) (Pose, error)
	SendVelocity(ctx context.Context, cmd VelocityCommand) error
	Stop(ctx context.Context) error
}

// Observer is told about state changes and completed cycles. It is called
// synchronously from the loop and must not block.
type Observer interface {
	StateChanged(s State)
	CycleCompleted(r CycleReport)
}

// CycleReport describes one finished control cycle.
type CycleReport struct {
	Session    string
	Seq        uint64
	Repetition int
	Outcome    Outcome
	Velocity   Velocity
	Current    Pose
	Pose       Pose
	Fraction   float64
	Command    VelocityCommand
	Reason     error
	Time       time.Time
}

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// LoopOptions holds optional collaborators of the loop.
type LoopOptions struct {
	Session   string
	Sleeper   Sleeper
	Observers []Observer
}

// Loop turns received velocity frames into bounded motion commands. It runs
// on a single goroutine; the frame source and actuator are owned by it for
// the duration of Run.
type Loop struct {
	source    FrameSource
	actuator  Actuator
	projector *Projector
	synth     Synthesizer
	cadence   Cadence
	sleep     Sleeper
	observers []Observer
	session   string
	logger    customlog.Logger

	state State
	seq   uint64
}

// NewLoop wires a control loop. options may be nil.
func NewLoop(
	source FrameSource,
	actuator Actuator,
	projector *Projector,
	synth Synthesizer,
	cadence Cadence,
	logger customlog.Logger,
	options *LoopOptions,
) (*Loop, error) {
	if source == nil || actuator == nil || projector == nil || cadence == nil {
		return nil, errors.New("control loop needs a frame source, actuator, projector and cadence")
	}
	if options == nil {
		options = &LoopOptions{}
	}
	sleep := options.Sleeper
	if sleep == nil {
		sleep = Sleep
	}
	if logger == nil {
		logger = customlog.Nop()
	}
	if options.Session != "" {
		logger = logger.WithField("session", options.Session)
	}

	return &Loop{
		source:    source,
		actuator:  actuator,
		projector: projector,
		synth:     synth,
		cadence:   cadence,
		sleep:     sleep,
		observers: options.Observers,
		session:   options.Session,
		logger:    logger,
		state:     StateIdle,
	}, nil
}

// State returns the state the loop is in. Only meaningful on the loop's own
// goroutine or after Run returned; other goroutines should use an Observer.
func (l *Loop) State() State {
	return l.state
}

// Run processes frames until the source fails or ctx is cancelled. The
// actuator is always sent a stop before Run returns normally.
//
// Run returns nil after a cancellation, the frame source error after the
// session ended, or an *ActuatorFault.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Infof("Control loop started (cadence=%s)", l.cadence)

	for {
		l.setState(StateAwaitFrame)
		v, err := l.source.Next(ctx)
		if err != nil {
			return l.shutdown(ctx, err)
		}
		l.logger.Debugf("Received velocity: %s", v)

		if err := l.cadence.drive(ctx, l, v); err != nil {
			if IsActuatorFault(err) || ctx.Err() == nil {
				return l.abort(ctx, err)
			}
			return l.shutdown(ctx, err)
		}
		if ctx.Err() != nil {
			return l.shutdown(ctx, ctx.Err())
		}
	}
}

func (l *Loop) cycle(ctx context.Context, v Velocity, horizon float64, repetition int) (bool, error) {
	// Actuator calls of a started cycle are not cut short by cancellation.
	cctx := context.WithoutCancel(ctx)

	l.setState(StateProjectAndValidate)
	current, err := l.actuator.CurrentPose(cctx)
	if err != nil {
		return false, &ActuatorFault{Op: "get_pose", Err: err}
	}

	l.seq++
	report := CycleReport{
		Session:    l.session,
		Seq:        l.seq,
		Repetition: repetition,
		Velocity:   v,
		Current:    current,
		Pose:       current,
	}

	var interp Interpolation
	if v.Finite() {
		interp, err = l.projector.Project(cctx, current, v, horizon)
		if err != nil {
			if IsActuatorFault(err) {
				return false, err
			}
			return false, fmt.Errorf("project: %w", err)
		}
	} else {
		report.Reason = fmt.Errorf("%w: non-finite velocity (%s)", ErrSafetyRejection, v)
	}

	if !interp.Found {
		l.setState(StateHaltCycle)
		if report.Reason == nil {
			target := interp.Target
			report.Reason = fmt.Errorf("%w: first step towards %s inadmissible (z=%.4f, radius=%.4f)",
				ErrSafetyRejection, target, target.Z, target.Radius())
		}
		l.logger.Warnf("[STOP] %v", report.Reason)

		if err := l.actuator.Stop(cctx); err != nil {
			return false, &ActuatorFault{Op: "speed_stop", Err: err}
		}
		report.Outcome = OutcomeHalted
		l.emit(report)
		return false, nil
	}

	l.setState(StateCommand)
	cmd := l.synth.Synthesize(current, interp.Pose, horizon)
	if err := l.actuator.SendVelocity(cctx, cmd); err != nil {
		return false, &ActuatorFault{Op: "speed_l", Err: err}
	}
	if interp.Fraction < 1 {
		l.logger.Infof("Motion clipped to %.0f%% of requested path (target %s)", interp.Fraction*100, interp.Target)
	}

	report.Outcome = OutcomeCommanded
	report.Pose = interp.Pose
	report.Fraction = interp.Fraction
	report.Command = cmd
	l.emit(report)
	return true, nil
}

func (l *Loop) halt(ctx context.Context) error {
	if err := l.actuator.Stop(context.WithoutCancel(ctx)); err != nil {
		return &ActuatorFault{Op: "speed_stop", Err: err}
	}
	return nil
}

func (l *Loop) pace(ctx context.Context, secs float64) error {
	l.setState(StatePace)
	return l.sleep(ctx, seconds(secs))
}

// shutdown ends the session cleanly with a stop command.
func (l *Loop) shutdown(ctx context.Context, cause error) error {
	l.setState(StateShutdown)

	cancelled := ctx.Err() != nil
	if cancelled {
		l.logger.Infof("Shutdown requested, stopping arm")
	} else {
		l.logger.Infof("Frame source ended (%v), stopping arm", cause)
	}

	if err := l.halt(ctx); err != nil {
		l.logger.Errorf("Stop on shutdown failed: %v", err)
		return err
	}
	l.logger.Infof("Control loop stopped after %d cycles", l.seq)

	if cancelled {
		return nil
	}
	return fmt.Errorf("frame source: %w", cause)
}

// abort ends the loop on a fault. A stop is still attempted but may fail.
func (l *Loop) abort(ctx context.Context, cause error) error {
	l.setState(StateShutdown)
	l.logger.Errorf("Control loop aborted: %v", cause)
	if err := l.halt(ctx); err != nil {
		l.logger.Errorf("Best-effort stop after fault failed: %v", err)
	}
	return cause
}

func (l *Loop) setState(s State) {
	if l.state == s {
		return
	}
	l.state = s
	for _, o := range l.observers {
		o.StateChanged(s)
	}
}

func (l *Loop) emit(r CycleReport) {
	r.Time = time.Now()
	for _, o := range l.observers {
		o.CycleCompleted(r)
	}
}

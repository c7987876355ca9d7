package teleop

import (
	"context"
	"fmt"
	"math"
)

// Cadence policy names, as used in configuration.
const (
	PolicySingleShot  = "single_shot"
	PolicySubInterval = "sub_interval"
)

// cycler is the part of the loop a cadence drives.
type cycler interface {
	// cycle validates and commands one step, or halts. It reports whether a
	// motion command was issued.
	cycle(ctx context.Context, v Velocity, horizon float64, repetition int) (bool, error)
	halt(ctx context.Context) error
	pace(ctx context.Context, secs float64) error
}

// Cadence decides how many control cycles one received frame drives. The
// only implementations are SingleShot and SubInterval.
type Cadence interface {
	drive(ctx context.Context, c cycler, v Velocity) error
	String() string
}

// SingleShot runs exactly one cycle per frame, projecting and commanding over
// CycleTime, then paces for CycleTime.
type SingleShot struct {
	CycleTime float64
}

func (s SingleShot) String() string { return PolicySingleShot }

func (s SingleShot) drive(ctx context.Context, c cycler, v Velocity) error {
	if _, err := c.cycle(ctx, v, s.CycleTime, 0); err != nil {
		return err
	}
	return c.pace(ctx, s.CycleTime)
}

// SubInterval re-validates and re-commands one frame every SubInterval until
// TotalDuration has elapsed or the envelope rejects. A stop is issued on
// rejection and again once the repetition completes.
type SubInterval struct {
	SubInterval   float64
	TotalDuration float64
}

func (s SubInterval) String() string { return PolicySubInterval }

// Repetitions is the number of cycles a frame drives when nothing is
// rejected.
func (s SubInterval) Repetitions() int {
	n := int(math.Ceil(s.TotalDuration/s.SubInterval - 1e-9))
	if n < 1 {
		n = 1
	}
	return n
}

func (s SubInterval) drive(ctx context.Context, c cycler, v Velocity) error {
	for i := 0; i < s.Repetitions(); i++ {
		commanded, err := c.cycle(ctx, v, s.SubInterval, i)
		if err != nil {
			return err
		}
		if !commanded {
			// cycle already stopped the arm
			return nil
		}
		if err := c.pace(ctx, s.SubInterval); err != nil {
			return err
		}
	}
	return c.halt(ctx)
}

// NewCadence returns the cadence for a policy name.
func NewCadence(policy string, timing CycleTiming) (Cadence, error) {
	switch policy {
	case PolicySingleShot, "":
		if timing.CycleTime <= 0 {
			return nil, fmt.Errorf("cadence %s: cycle time must be positive", PolicySingleShot)
		}
		return SingleShot{CycleTime: timing.CycleTime}, nil
	case PolicySubInterval:
		if timing.SubInterval <= 0 || timing.TotalDuration <= 0 {
			return nil, fmt.Errorf("cadence %s: sub interval and total duration must be positive", PolicySubInterval)
		}
		return SubInterval{SubInterval: timing.SubInterval, TotalDuration: timing.TotalDuration}, nil
	default:
		return nil, fmt.Errorf("unknown cadence policy %q", policy)
	}
}

package teleop

import (
	"errors"
	"fmt"
)

// ErrSafetyRejection marks a cycle skipped because no admissible pose was
// found. It is never fatal.
var ErrSafetyRejection = errors.New("safety envelope rejected motion")

// ActuatorFault wraps a failure reported by the actuator interface. It ends
// the loop.
type ActuatorFault struct {
	Op  string
	Err error
}

func (e *ActuatorFault) Error() string {
	return fmt.Sprintf("actuator fault during %s: %v", e.Op, e.Err)
}

func (e *ActuatorFault) Unwrap() error { return e.Err }

// IsActuatorFault reports whether err is (or wraps) an *ActuatorFault.
func IsActuatorFault(err error) bool {
	var fault *ActuatorFault
	return errors.As(err, &fault)
}

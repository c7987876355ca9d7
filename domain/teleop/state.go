package teleop

// State is a control loop state.
type State int32

const (
	StateIdle State = iota
	StateAwaitFrame
	StateProjectAndValidate
	StateCommand
	StateHaltCycle
	StatePace
	StateShutdown
)

var stateNames = map[State]string{
	StateIdle:               "IDLE",
	StateAwaitFrame:         "AWAIT_FRAME",
	StateProjectAndValidate: "PROJECT_AND_VALIDATE",
	StateCommand:            "COMMAND",
	StateHaltCycle:          "HALT_CYCLE",
	StatePace:               "PACE",
	StateShutdown:           "SHUTDOWN",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Outcome is how a single control cycle ended.
type Outcome int8

const (
	OutcomeCommanded Outcome = iota
	OutcomeHalted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommanded:
		return "commanded"
	case OutcomeHalted:
		return "halted"
	default:
		return "unknown"
	}
}

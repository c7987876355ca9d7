package driver

import (
	"context"
	"errors"

	"github.com/open-teleop/armbridge/domain/teleop"
	"github.com/open-teleop/armbridge/pkg/actuator"
	customlog "github.com/open-teleop/armbridge/pkg/log"
)

// ArmHandlers serves a local arm through the driver protocol.
type ArmHandlers struct {
	arm    actuator.Arm
	logger customlog.Logger
}

// NewArmHandlers returns the handlers for arm.
func NewArmHandlers(arm actuator.Arm, logger customlog.Logger) *ArmHandlers {
	if logger == nil {
		logger = customlog.Nop()
	}
	return &ArmHandlers{arm: arm, logger: logger}
}

// Register installs every request type on d.
func (h *ArmHandlers) Register(d *Dispatcher) {
	d.RegisterHandlerFunc(MsgTypeGetPose, h.getPose)
	d.RegisterHandlerFunc(MsgTypeSpeedL, h.speedL)
	d.RegisterHandlerFunc(MsgTypeSpeedStop, h.speedStop)
	d.RegisterHandlerFunc(MsgTypeMoveL, h.moveL)
	d.RegisterHandlerFunc(MsgTypeStopScript, h.stopScript)
	d.RegisterHandlerFunc(MsgTypeIsPoseAdmissible, h.isPoseAdmissible)
}

func (h *ArmHandlers) getPose(ctx context.Context, _ Message) ([]byte, error) {
	pose, err := h.arm.CurrentPose(ctx)
	if err != nil {
		return nil, armError(err)
	}
	return Encode(MsgTypePose, PoseData{Pose: pose.Array()})
}

func (h *ArmHandlers) speedL(ctx context.Context, msg Message) ([]byte, error) {
	var req SpeedLData
	if err := msg.Payload(&req); err != nil {
		return nil, err
	}
	cmd := teleop.VelocityCommand{
		Vector:       req.Velocity,
		Acceleration: req.Acceleration,
		Duration:     req.Duration,
	}
	if err := h.arm.SendVelocity(ctx, cmd); err != nil {
		return nil, armError(err)
	}
	return Encode(MsgTypeAck, nil)
}

func (h *ArmHandlers) speedStop(ctx context.Context, _ Message) ([]byte, error) {
	if err := h.arm.Stop(ctx); err != nil {
		return nil, armError(err)
	}
	return Encode(MsgTypeAck, nil)
}

func (h *ArmHandlers) moveL(ctx context.Context, msg Message) ([]byte, error) {
	var req MoveLData
	if err := msg.Payload(&req); err != nil {
		return nil, err
	}
	h.logger.Infof("moveL to %s", teleop.PoseFromArray(req.Pose))
	if err := h.arm.MoveToPose(ctx, teleop.PoseFromArray(req.Pose), req.Speed, req.Acceleration); err != nil {
		return nil, armError(err)
	}
	return Encode(MsgTypeAck, nil)
}

func (h *ArmHandlers) stopScript(ctx context.Context, _ Message) ([]byte, error) {
	if err := h.arm.StopProgram(ctx); err != nil {
		return nil, armError(err)
	}
	return Encode(MsgTypeAck, nil)
}

func (h *ArmHandlers) isPoseAdmissible(ctx context.Context, msg Message) ([]byte, error) {
	var req PoseData
	if err := msg.Payload(&req); err != nil {
		return nil, err
	}
	ok, err := h.arm.IsPoseAdmissible(ctx, teleop.PoseFromArray(req.Pose))
	if err != nil {
		return nil, armError(err)
	}
	return Encode(MsgTypeAdmissible, AdmissibleData{OK: ok})
}

func armError(err error) error {
	if errors.Is(err, actuator.ErrProgramStopped) {
		return &CodedError{Code: CodeProgramStopped, Err: err}
	}
	return &CodedError{Code: CodeDriverFailure, Err: err}
}

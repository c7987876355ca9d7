package driver

import (
	"context"
	"fmt"

	"github.com/open-teleop/armbridge/domain/teleop"
	"github.com/open-teleop/armbridge/pkg/actuator"
	customlog "github.com/open-teleop/armbridge/pkg/log"
)

// RoundTripper sends one request and waits for its reply.
type RoundTripper interface {
	RoundTrip(ctx context.Context, request []byte) ([]byte, error)
}

// Client drives a remote arm through a RoundTripper. It is not safe for
// concurrent use; the control loop is its only caller.
type Client struct {
	rt     RoundTripper
	logger customlog.Logger
}

var _ actuator.Arm = (*Client)(nil)

// NewClient creates a driver client over rt.
func NewClient(rt RoundTripper, logger customlog.Logger) *Client {
	if logger == nil {
		logger = customlog.Nop()
	}
	return &Client{rt: rt, logger: logger}
}

func (c *Client) call(ctx context.Context, reqType string, payload interface{}, wantType string, out interface{}) error {
	req, err := Encode(reqType, payload)
	if err != nil {
		return err
	}
	raw, err := c.rt.RoundTrip(ctx, req)
	if err != nil {
		return fmt.Errorf("%s: %w", reqType, err)
	}
	reply, err := Decode(raw)
	if err != nil {
		return fmt.Errorf("%s reply: %w", reqType, err)
	}

	if reply.Type == MsgTypeError {
		var e ErrorResponse
		if err := reply.Payload(&e); err != nil {
			return fmt.Errorf("%s reply: %w", reqType, err)
		}
		return &RemoteError{Message: e.Message, Code: e.Code}
	}
	if reply.Type != wantType {
		return fmt.Errorf("%s reply: %w: expected %s, got %s", reqType, ErrInvalidMessage, wantType, reply.Type)
	}
	if out != nil {
		return reply.Payload(out)
	}
	return nil
}

// CurrentPose requests the tool pose.
func (c *Client) CurrentPose(ctx context.Context) (teleop.Pose, error) {
	var data PoseData
	if err := c.call(ctx, MsgTypeGetPose, nil, MsgTypePose, &data); err != nil {
		return teleop.Pose{}, err
	}
	return teleop.PoseFromArray(data.Pose), nil
}

// SendVelocity issues speedL.
func (c *Client) SendVelocity(ctx context.Context, cmd teleop.VelocityCommand) error {
	return c.call(ctx, MsgTypeSpeedL, SpeedLData{
		Velocity:     cmd.Vector,
		Acceleration: cmd.Acceleration,
		Duration:     cmd.Duration,
	}, MsgTypeAck, nil)
}

// Stop issues speedStop.
func (c *Client) Stop(ctx context.Context) error {
	return c.call(ctx, MsgTypeSpeedStop, nil, MsgTypeAck, nil)
}

// IsPoseAdmissible asks the driver's reachability oracle.
func (c *Client) IsPoseAdmissible(ctx context.Context, p teleop.Pose) (bool, error) {
	var data AdmissibleData
	if err := c.call(ctx, MsgTypeIsPoseAdmissible, PoseData{Pose: p.Array()}, MsgTypeAdmissible, &data); err != nil {
		return false, err
	}
	return data.OK, nil
}

// MoveToPose issues a blocking moveL.
func (c *Client) MoveToPose(ctx context.Context, p teleop.Pose, speed, acceleration float64) error {
	return c.call(ctx, MsgTypeMoveL, MoveLData{Pose: p.Array(), Speed: speed, Acceleration: acceleration}, MsgTypeAck, nil)
}

// StopProgram ends the driver's control program.
func (c *Client) StopProgram(ctx context.Context) error {
	return c.call(ctx, MsgTypeStopScript, nil, MsgTypeAck, nil)
}

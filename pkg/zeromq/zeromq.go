// Package zeromq carries the driver protocol and the telemetry bus over
// ZeroMQ sockets.
package zeromq

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pebbe/zmq4"
)

// Common errors
var (
	ErrServiceClosed = errors.New("zeromq service is closed")
	ErrTimeout       = errors.New("zeromq request timed out")
)

// Topics published on the telemetry bus
const (
	TopicCycleReport        = "bridge.cycle"
	TopicConfigNotification = "configuration.notification"
)

// MsgTypeConfigUpdated is the JSON message type sent on TopicConfigNotification.
const MsgTypeConfigUpdated = "CONFIG_UPDATED"

// ZeroMQMessage is the JSON envelope used for notifications on the bus.
type ZeroMQMessage struct {
	Type      string      `json:"type"`
	Timestamp float64     `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// NewContext creates a ZeroMQ context shared by the sockets of one process.
func NewContext() (*zmq4.Context, error) {
	ctx, err := zmq4.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create ZMQ context: %w", err)
	}
	return ctx, nil
}

// newSocket creates a socket with linger disabled and optional timeouts.
func newSocket(ctx *zmq4.Context, t zmq4.Type, timeout time.Duration) (*zmq4.Socket, error) {
	socket, err := ctx.NewSocket(t)
	if err != nil {
		return nil, fmt.Errorf("failed to create %v socket: %w", t, err)
	}
	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}
	if timeout > 0 {
		if err := socket.SetRcvtimeo(timeout); err != nil {
			socket.Close()
			return nil, fmt.Errorf("failed to set receive timeout: %w", err)
		}
		if err := socket.SetSndtimeo(timeout); err != nil {
			socket.Close()
			return nil, fmt.Errorf("failed to set send timeout: %w", err)
		}
	}
	return socket, nil
}

func marshalNotification(msgType string, data interface{}) ([]byte, error) {
	msg := ZeroMQMessage{
		Type:      msgType,
		Timestamp: float64(time.Now().Unix()),
		Data:      data,
	}
	out, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return out, nil
}

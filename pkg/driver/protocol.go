// Package driver defines the request/reply protocol spoken between the
// bridge and a remote arm driver, and the dispatcher and client built on it.
// It is transport-agnostic; pkg/zeromq carries the bytes.
package driver

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Request types
const (
	MsgTypeGetPose          = "GET_POSE"
	MsgTypeSpeedL           = "SPEED_L"
	MsgTypeSpeedStop        = "SPEED_STOP"
	MsgTypeMoveL            = "MOVE_L"
	MsgTypeStopScript       = "STOP_SCRIPT"
	MsgTypeIsPoseAdmissible = "IS_POSE_ADMISSIBLE"
)

// Response types
const (
	MsgTypePose       = "POSE"
	MsgTypeAck        = "ACK"
	MsgTypeAdmissible = "ADMISSIBLE"
	MsgTypeError      = "ERROR"
)

// Error codes carried in ERROR responses
const (
	CodeBadRequest     = 400
	CodeUnknownType    = 404
	CodeProgramStopped = 409
	CodeDriverFailure  = 500
)

var (
	ErrInvalidMessage     = errors.New("invalid message format")
	ErrUnknownMessageType = errors.New("unknown message type")
)

// Message is the envelope of every request and response.
type Message struct {
	Type      string          `json:"type"`
	Timestamp float64         `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// PoseData carries a pose as [x y z rx ry rz].
type PoseData struct {
	Pose [6]float64 `json:"pose"`
}

// SpeedLData is the payload of SPEED_L.
type SpeedLData struct {
	Velocity     [6]float64 `json:"velocity"`
	Acceleration float64    `json:"acceleration"`
	Duration     float64    `json:"duration"`
}

// MoveLData is the payload of MOVE_L.
type MoveLData struct {
	Pose         [6]float64 `json:"pose"`
	Speed        float64    `json:"speed"`
	Acceleration float64    `json:"acceleration"`
}

// AdmissibleData is the payload of ADMISSIBLE.
type AdmissibleData struct {
	OK bool `json:"ok"`
}

// ErrorResponse is the payload of ERROR.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// RemoteError is an ERROR response received from the driver.
type RemoteError struct {
	Message string
	Code    int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("driver error %d: %s", e.Code, e.Message)
}

// NewMessage builds an envelope stamped with the current time. data may be nil.
func NewMessage(msgType string, data interface{}) (Message, error) {
	msg := Message{
		Type:      msgType,
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Message{}, fmt.Errorf("failed to marshal %s payload: %w", msgType, err)
		}
		msg.Data = raw
	}
	return msg, nil
}

// Encode marshals a message with the given payload.
func Encode(msgType string, data interface{}) ([]byte, error) {
	msg, err := NewMessage(msgType, data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(msg)
}

// Decode parses an envelope.
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.Type == "" {
		return Message{}, fmt.Errorf("%w: missing type", ErrInvalidMessage)
	}
	return msg, nil
}

// Payload unmarshals the message data into out.
func (m Message) Payload(out interface{}) error {
	if len(m.Data) == 0 {
		return fmt.Errorf("%w: %s without data", ErrInvalidMessage, m.Type)
	}
	if err := json.Unmarshal(m.Data, out); err != nil {
		return fmt.Errorf("%w: %s payload: %v", ErrInvalidMessage, m.Type, err)
	}
	return nil
}

// ErrorReply encodes err as an ERROR response.
func ErrorReply(err error, code int) []byte {
	data, mErr := Encode(MsgTypeError, ErrorResponse{Message: err.Error(), Code: code})
	if mErr != nil {
		return []byte(`{"type":"ERROR","timestamp":0,"data":{"message":"internal error","code":500}}`)
	}
	return data
}

package driver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	customlog "github.com/open-teleop/armbridge/pkg/log"
)

// MessageHandler processes one request type and returns the encoded reply.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message) ([]byte, error)
}

// HandlerFunc is a function type that implements MessageHandler
type HandlerFunc func(ctx context.Context, msg Message) ([]byte, error)

// HandleMessage calls the function
func (f HandlerFunc) HandleMessage(ctx context.Context, msg Message) ([]byte, error) {
	return f(ctx, msg)
}

// CodedError attaches an ERROR code to a handler failure.
type CodedError struct {
	Code int
	Err  error
}

func (e *CodedError) Error() string { return e.Err.Error() }

func (e *CodedError) Unwrap() error { return e.Err }

// Dispatcher routes requests to the handler registered for their type.
type Dispatcher struct {
	handlers map[string]MessageHandler
	logger   customlog.Logger
	mu       sync.RWMutex
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger customlog.Logger) *Dispatcher {
	if logger == nil {
		logger = customlog.Nop()
	}
	return &Dispatcher{
		handlers: make(map[string]MessageHandler),
		logger:   logger,
	}
}

// RegisterHandler adds a handler for a specific message type
func (d *Dispatcher) RegisterHandler(messageType string, handler MessageHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[messageType] = handler
	d.logger.Debugf("Registered handler for message type: %s", messageType)
}

// RegisterHandlerFunc adds a handler function for a specific message type
func (d *Dispatcher) RegisterHandlerFunc(messageType string, handler func(context.Context, Message) ([]byte, error)) {
	d.RegisterHandler(messageType, HandlerFunc(handler))
}

// Dispatch decodes a request and runs its handler.
func (d *Dispatcher) Dispatch(ctx context.Context, data []byte) ([]byte, error) {
	msg, err := Decode(data)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	handler, exists := d.handlers[msg.Type]
	d.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMessageType, msg.Type)
	}

	d.logger.Debugf("Dispatching message of type: %s", msg.Type)
	return handler.HandleMessage(ctx, msg)
}

// Serve always produces a reply: the handler's response, or an ERROR
// response describing why there is none.
func (d *Dispatcher) Serve(ctx context.Context, data []byte) []byte {
	reply, err := d.Dispatch(ctx, data)
	if err == nil {
		return reply
	}

	d.logger.Warnf("Request failed: %v", err)
	return ErrorReply(err, ErrorCode(err))
}

// ErrorCode maps a dispatch failure to the code sent to the caller.
func ErrorCode(err error) int {
	var coded *CodedError
	switch {
	case errors.As(err, &coded):
		return coded.Code
	case errors.Is(err, ErrInvalidMessage):
		return CodeBadRequest
	case errors.Is(err, ErrUnknownMessageType):
		return CodeUnknownType
	default:
		return CodeDriverFailure
	}
}

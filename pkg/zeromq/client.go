package zeromq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pebbe/zmq4"

	"github.com/open-teleop/armbridge/pkg/driver"
	customlog "github.com/open-teleop/armbridge/pkg/log"
)

// ReqTransport is a driver.RoundTripper over a REQ socket. A request that
// times out leaves a REQ socket unusable, so the socket is replaced.
type ReqTransport struct {
	zctx    *zmq4.Context
	address string
	timeout time.Duration
	logger  customlog.Logger

	mu     sync.Mutex
	socket *zmq4.Socket
}

var _ driver.RoundTripper = (*ReqTransport)(nil)

// NewReqTransport connects a REQ socket to address.
func NewReqTransport(zctx *zmq4.Context, address string, timeout time.Duration, logger customlog.Logger) (*ReqTransport, error) {
	if logger == nil {
		logger = customlog.Nop()
	}
	t := &ReqTransport{zctx: zctx, address: address, timeout: timeout, logger: logger}
	if err := t.connect(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *ReqTransport) connect() error {
	socket, err := newSocket(t.zctx, zmq4.REQ, t.timeout)
	if err != nil {
		return err
	}
	if err := socket.Connect(t.address); err != nil {
		socket.Close()
		return fmt.Errorf("failed to connect to %s: %w", t.address, err)
	}
	t.socket = socket
	return nil
}

// RoundTrip sends request and waits for the reply until the socket timeout.
func (t *ReqTransport) RoundTrip(ctx context.Context, request []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.socket == nil {
		return nil, ErrServiceClosed
	}
	if _, err := t.socket.SendBytes(request, 0); err != nil {
		t.reset()
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	reply, err := t.socket.RecvBytes(0)
	if err != nil {
		t.logger.Warnf("No reply from %s within %s, reconnecting", t.address, t.timeout)
		t.reset()
		return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return reply, nil
}

func (t *ReqTransport) reset() {
	t.socket.Close()
	t.socket = nil
	if err := t.connect(); err != nil {
		t.logger.Errorf("Reconnect to %s failed: %v", t.address, err)
	}
}

// Close releases the socket.
func (t *ReqTransport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.socket != nil {
		t.socket.Close()
		t.socket = nil
	}
}

// ArmClient is a remote arm reached through a driver server.
type ArmClient struct {
	*driver.Client
	transport *ReqTransport
}

// NewArmClient connects to the driver at address.
func NewArmClient(zctx *zmq4.Context, address string, timeout time.Duration, logger customlog.Logger) (*ArmClient, error) {
	transport, err := NewReqTransport(zctx, address, timeout, logger)
	if err != nil {
		return nil, err
	}
	return &ArmClient{
		Client:    driver.NewClient(transport, logger),
		transport: transport,
	}, nil
}

// Close releases the connection.
func (c *ArmClient) Close() {
	c.transport.Close()
}

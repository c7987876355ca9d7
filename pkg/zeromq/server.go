package zeromq

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pebbe/zmq4"

	"github.com/open-teleop/armbridge/pkg/driver"
	customlog "github.com/open-teleop/armbridge/pkg/log"
)

// DriverServer answers driver protocol requests on a REP socket.
type DriverServer struct {
	socket     *zmq4.Socket
	dispatcher *driver.Dispatcher
	poller     *zmq4.Poller
	logger     customlog.Logger
	address    string
	running    atomic.Bool
	wg         sync.WaitGroup
}

// NewDriverServer binds a REP socket on address.
func NewDriverServer(zctx *zmq4.Context, address string, dispatcher *driver.Dispatcher, logger customlog.Logger) (*DriverServer, error) {
	if logger == nil {
		logger = customlog.Nop()
	}

	// Timeouts keep a half-finished exchange from blocking shutdown.
	socket, err := newSocket(zctx, zmq4.REP, time.Second)
	if err != nil {
		return nil, err
	}
	if err := socket.Bind(address); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to bind to %s: %w", address, err)
	}

	poller := zmq4.NewPoller()
	poller.Add(socket, zmq4.POLLIN)

	logger.Infof("DriverServer initialized on %s", address)
	return &DriverServer{
		socket:     socket,
		dispatcher: dispatcher,
		poller:     poller,
		logger:     logger,
		address:    address,
	}, nil
}

// Start begins the request loop on its own goroutine.
func (s *DriverServer) Start(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Infof("DriverServer started")

		for s.running.Load() {
			// Poll with timeout to allow for clean shutdown
			sockets, err := s.poller.Poll(500 * time.Millisecond)
			if err != nil {
				if s.running.Load() {
					s.logger.Warnf("Error polling socket: %v", err)
				}
				continue
			}
			if len(sockets) == 0 {
				continue
			}

			msg, err := s.socket.RecvBytes(0)
			if err != nil {
				if s.running.Load() {
					s.logger.Warnf("Error receiving message: %v", err)
				}
				continue
			}

			reply := s.dispatcher.Serve(ctx, msg)
			if _, err := s.socket.SendBytes(reply, 0); err != nil && s.running.Load() {
				s.logger.Errorf("Error sending response: %v", err)
			}
		}
	}()
}

// Stop ends the request loop and closes the socket.
func (s *DriverServer) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		s.socket.Close()
		return
	}
	s.wg.Wait()
	s.socket.Close()
	s.logger.Infof("DriverServer on %s stopped", s.address)
}

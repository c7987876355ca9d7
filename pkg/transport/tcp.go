package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	customlog "github.com/open-teleop/armbridge/pkg/log"
)

// TCPListener accepts operator connections on a TCP port.
type TCPListener struct {
	ln     net.Listener
	logger customlog.Logger
}

// Listen binds address, e.g. ":9999".
func Listen(address string, logger customlog.Logger) (*TCPListener, error) {
	if logger == nil {
		logger = customlog.Nop()
	}
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: listen on %s: %v", ErrTransportSetup, address, err)
	}
	logger.Infof("Waiting for a connection on %s", ln.Addr())
	return &TCPListener{ln: ln, logger: logger}, nil
}

// Addr returns the bound address.
func (l *TCPListener) Addr() net.Addr {
	return l.ln.Addr()
}

// Accept waits for one client. Nagle's algorithm is disabled on the
// connection so frames are not held back.
func (l *TCPListener) Accept(ctx context.Context) (*Session, error) {
	stop := context.AfterFunc(ctx, func() {
		if tl, ok := l.ln.(*net.TCPListener); ok {
			_ = tl.SetDeadline(time.Now())
		}
	})
	defer stop()

	conn, err := l.ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: accept: %v", ErrTransportSetup, err)
	}

	if tc, ok := conn.(*net.TCPConn); ok {
		if err := tc.SetNoDelay(true); err != nil {
			l.logger.Warnf("Failed to disable Nagle on %s: %v", conn.RemoteAddr(), err)
		}
	}

	interrupt := func() { _ = conn.SetReadDeadline(time.Now()) }
	s := newSession(conn.RemoteAddr().String(), conn, interrupt, nil)
	l.logger.WithField("session", s.ID).Infof("Connection accepted from %s", s.Remote)
	return s, nil
}

// Close stops listening.
func (l *TCPListener) Close() error {
	return l.ln.Close()
}

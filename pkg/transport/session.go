// Package transport accepts the operator connection and turns its byte
// stream into velocity frames for the control loop.
package transport

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/open-teleop/armbridge/domain/teleop"
	"github.com/open-teleop/armbridge/pkg/frame"
)

// ErrTransportSetup is wrapped by failures to open the listening endpoint.
// It is fatal at startup.
var ErrTransportSetup = errors.New("transport setup failed")

// ErrBusy is returned to a second client while a session is active.
var ErrBusy = errors.New("a client session is already active")

// Session is one connected client. It implements teleop.FrameSource.
type Session struct {
	ID     string
	Remote string

	rc        io.ReadCloser
	interrupt func()
	dec       *frame.Decoder
	closeOnce sync.Once
	onClose   func()
}

var _ teleop.FrameSource = (*Session)(nil)

func newSession(remote string, rc io.ReadCloser, interrupt func(), onClose func()) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Remote:    remote,
		rc:        rc,
		interrupt: interrupt,
		dec:       frame.NewDecoder(rc),
		onClose:   onClose,
	}
}

// Next blocks until a full frame has arrived. It returns io.EOF when the
// client closed cleanly between frames, a *frame.Error for a truncated frame
// or a failed read, and ctx.Err() once ctx is done.
func (s *Session) Next(ctx context.Context) (teleop.Velocity, error) {
	if err := ctx.Err(); err != nil {
		return teleop.Velocity{}, err
	}
	stop := context.AfterFunc(ctx, s.interrupt)
	defer stop()

	v, err := s.dec.Next()
	if err != nil {
		if ctx.Err() != nil {
			return teleop.Velocity{}, ctx.Err()
		}
		return teleop.Velocity{}, err
	}
	return teleop.Velocity{DX: v.DX, DY: v.DY, DZ: v.DZ}, nil
}

// Close releases the connection.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.rc.Close()
		if s.onClose != nil {
			s.onClose()
		}
	})
	return err
}

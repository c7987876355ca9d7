package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-teleop/armbridge/domain/teleop"
	"github.com/open-teleop/armbridge/pkg/frame"
)

func acceptOne(t *testing.T) (*Session, net.Conn) {
	t.Helper()
	l, err := Listen("127.0.0.1:0", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	accepted := make(chan *Session, 1)
	go func() {
		s, err := l.Accept(context.Background())
		if err == nil {
			accepted <- s
		}
		close(accepted)
	}()

	client, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	select {
	case s := <-accepted:
		require.NotNil(t, s)
		t.Cleanup(func() { _ = s.Close() })
		return s, client
	case <-time.After(2 * time.Second):
		t.Fatal("no connection accepted")
		return nil, nil
	}
}

func TestSessionDeliversFrames(t *testing.T) {
	s, client := acceptOne(t)
	assert.NotEmpty(t, s.ID)

	_, err := client.Write(append(frame.Marshal(frame.Velocity{DX: 0.1}), frame.Marshal(frame.Velocity{DY: -0.2, DZ: 0.3})...))
	require.NoError(t, err)

	ctx := context.Background()
	v, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, teleop.Velocity{DX: 0.1}, v)

	v, err = s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, teleop.Velocity{DY: -0.2, DZ: 0.3}, v)

	require.NoError(t, client.Close())
	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSessionShortFrame(t *testing.T) {
	s, client := acceptOne(t)

	_, err := client.Write(frame.Marshal(frame.Velocity{DX: 1})[:10])
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = s.Next(context.Background())
	var fe *frame.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 10, fe.Read)
}

func TestSessionNextCancelled(t *testing.T) {
	s, _ := acceptOne(t)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := s.Next(ctx)
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not return after cancellation")
	}
}

func TestAcceptCancelled(t *testing.T) {
	l, err := Listen("127.0.0.1:0", nil)
	require.NoError(t, err)
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = l.Accept(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestListenFailure(t *testing.T) {
	l, err := Listen("127.0.0.1:0", nil)
	require.NoError(t, err)
	defer l.Close()

	_, err = Listen(l.Addr().String(), nil)
	assert.ErrorIs(t, err, ErrTransportSetup)
}

// Package frame implements the velocity wire format: three IEEE-754 doubles
// (dx, dy, dz in m/s) in network byte order, 24 bytes per frame, no header.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Size is the number of bytes in one frame.
const Size = 3 * 8

// Velocity is one decoded frame.
type Velocity struct {
	DX, DY, DZ float64
}

// Error reports a frame that could not be read in full. Read is the number of
// bytes of the frame that arrived before the stream ended; zero means the peer
// closed cleanly on a frame boundary.
type Error struct {
	Read int
	Err  error
}

func (e *Error) Error() string {
	if e.Read == 0 {
		return fmt.Sprintf("frame stream closed: %v", e.Err)
	}
	return fmt.Sprintf("short frame: got %d of %d bytes: %v", e.Read, Size, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Partial reports whether the stream ended mid-frame.
func (e *Error) Partial() bool { return e.Read > 0 }

// IsFrameError reports whether err is (or wraps) a frame *Error.
func IsFrameError(err error) bool {
	var fe *Error
	return errors.As(err, &fe)
}

// Encode writes v into buf, which must be at least Size bytes.
func Encode(buf []byte, v Velocity) {
	binary.BigEndian.PutUint64(buf[0:8], math.Float64bits(v.DX))
	binary.BigEndian.PutUint64(buf[8:16], math.Float64bits(v.DY))
	binary.BigEndian.PutUint64(buf[16:24], math.Float64bits(v.DZ))
}

// Marshal returns the wire encoding of v.
func Marshal(v Velocity) []byte {
	buf := make([]byte, Size)
	Encode(buf, v)
	return buf
}

// Decode parses one frame from buf, which must be at least Size bytes.
func Decode(buf []byte) Velocity {
	return Velocity{
		DX: math.Float64frombits(binary.BigEndian.Uint64(buf[0:8])),
		DY: math.Float64frombits(binary.BigEndian.Uint64(buf[8:16])),
		DZ: math.Float64frombits(binary.BigEndian.Uint64(buf[16:24])),
	}
}

// Decoder reads consecutive frames from a byte stream. It keeps no state
// between calls: a short read is terminal and is never retried.
type Decoder struct {
	r   io.Reader
	buf [Size]byte
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Next blocks until a full frame is available and returns it. Any failure is
// returned as *Error.
func (d *Decoder) Next() (Velocity, error) {
	n, err := io.ReadFull(d.r, d.buf[:])
	if err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return Velocity{}, &Error{Read: n, Err: err}
	}
	return Decode(d.buf[:]), nil
}

package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/jessevdk/go-flags"

	"github.com/open-teleop/armbridge/pkg/frame"
)

type Options struct {
	Address   string  `long:"address" default:"localhost:9999" description:"Bridge TCP address"`
	WebSocket string  `long:"ws" description:"Bridge WebSocket URL, e.g. ws://localhost:8080/ws/velocity (overrides --address)"`
	DX        float64 `long:"dx" description:"Velocity along x in m/s"`
	DY        float64 `long:"dy" description:"Velocity along y in m/s"`
	DZ        float64 `long:"dz" description:"Velocity along z in m/s"`
	Count     int     `long:"count" default:"1" description:"Number of frames to send"`
	Interval  float64 `long:"interval" default:"1.0" description:"Seconds between frames"`
	Short     bool    `long:"short" description:"Send a truncated final frame before closing"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "Streams big-endian velocity frames to an arm bridge"

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if err := send(opts); err != nil {
		fmt.Fprintf(os.Stderr, "velocity-send: %v\n", err)
		os.Exit(1)
	}
}

func send(opts Options) error {
	w, err := dial(opts)
	if err != nil {
		return err
	}
	defer w.Close()

	v := frame.Velocity{DX: opts.DX, DY: opts.DY, DZ: opts.DZ}
	buf := frame.Marshal(v)
	for i := 0; i < opts.Count; i++ {
		if i > 0 {
			time.Sleep(time.Duration(opts.Interval * float64(time.Second)))
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("send frame %d: %w", i+1, err)
		}
		fmt.Printf("sent (%.4f, %.4f, %.4f)\n", v.DX, v.DY, v.DZ)
	}
	if opts.Short {
		if _, err := w.Write(buf[:frame.Size/2]); err != nil {
			return err
		}
	}
	return nil
}

func dial(opts Options) (io.WriteCloser, error) {
	if opts.WebSocket != "" {
		conn, _, err := websocket.DefaultDialer.Dial(opts.WebSocket, nil)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", opts.WebSocket, err)
		}
		return &wsWriter{conn: conn}, nil
	}
	conn, err := net.Dial("tcp", opts.Address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", opts.Address, err)
	}
	return conn, nil
}

// wsWriter sends each write as one binary message.
type wsWriter struct {
	conn *websocket.Conn
}

func (w *wsWriter) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsWriter) Close() error {
	_ = w.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return w.conn.Close()
}

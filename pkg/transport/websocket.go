package transport

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	customlog "github.com/open-teleop/armbridge/pkg/log"
)

// WebSocketSource accepts one operator over a WebSocket. Binary messages are
// concatenated into the same big-endian frame stream the TCP transport
// carries, so a frame may span messages.
type WebSocketSource struct {
	logger   customlog.Logger
	sessions chan *Session

	mu     sync.Mutex
	active bool
}

// NewWebSocketSource creates the source; mount Handler on a fiber route.
func NewWebSocketSource(logger customlog.Logger) *WebSocketSource {
	if logger == nil {
		logger = customlog.Nop()
	}
	return &WebSocketSource{
		logger:   logger,
		sessions: make(chan *Session, 1),
	}
}

// Register mounts the upgrade check and the handler on path.
func (w *WebSocketSource) Register(app fiber.Router, path string) {
	app.Use(path, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get(path, websocket.New(w.Handler))
}

// Accept waits for a client to connect. A client that connects before
// Accept is called is held until then.
func (w *WebSocketSource) Accept(ctx context.Context) (*Session, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case s := <-w.sessions:
		return s, nil
	}
}

// Handler serves one WebSocket connection for as long as it is open.
func (w *WebSocketSource) Handler(conn *websocket.Conn) {
	remote := conn.RemoteAddr().String()
	if !w.claim() {
		w.logger.Warnf("Rejecting WebSocket client %s: %v", remote, ErrBusy)
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, ErrBusy.Error()))
		return
	}
	defer w.release()

	pr, pw := io.Pipe()
	done := make(chan struct{})
	interrupt := func() { _ = pr.CloseWithError(context.Canceled) }
	session := newSession(remote, pr, interrupt, func() {
		close(done)
		_ = conn.Close()
	})

	select {
	case w.sessions <- session:
	default:
		w.logger.Warnf("Session queue full, rejecting WebSocket client %s", remote)
		return
	}
	sessionLog := w.logger.WithField("session", session.ID)
	sessionLog.Infof("WebSocket client connected from %s", remote)

	go func() {
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					sessionLog.Warnf("WebSocket read error: %v", err)
					_ = pw.CloseWithError(err)
				} else {
					_ = pw.Close()
				}
				return
			}
			if mt != websocket.BinaryMessage {
				sessionLog.Debugf("Ignoring non-binary WebSocket message type %d", mt)
				continue
			}
			if _, err := pw.Write(msg); err != nil {
				if !errors.Is(err, io.ErrClosedPipe) && !errors.Is(err, context.Canceled) {
					sessionLog.Warnf("Dropping WebSocket data: %v", err)
				}
				return
			}
		}
	}()

	<-done
	sessionLog.Infof("WebSocket client %s disconnected", remote)
}

func (w *WebSocketSource) claim() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active {
		return false
	}
	w.active = true
	return true
}

func (w *WebSocketSource) release() {
	w.mu.Lock()
	w.active = false
	w.mu.Unlock()
}

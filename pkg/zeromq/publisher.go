package zeromq

import (
	"fmt"
	"sync"

	"github.com/pebbe/zmq4"

	customlog "github.com/open-teleop/armbridge/pkg/log"
)

// ReportPublisher publishes telemetry on a PUB socket. Each message is a
// topic frame followed by the payload frame.
type ReportPublisher struct {
	socket  *zmq4.Socket
	logger  customlog.Logger
	running bool
	mu      sync.Mutex
}

// NewReportPublisher binds a PUB socket on address.
func NewReportPublisher(zctx *zmq4.Context, address string, logger customlog.Logger) (*ReportPublisher, error) {
	if logger == nil {
		logger = customlog.Nop()
	}
	socket, err := newSocket(zctx, zmq4.PUB, 0)
	if err != nil {
		return nil, err
	}
	if err := socket.Bind(address); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to bind to %s: %w", address, err)
	}

	logger.Infof("ReportPublisher initialized on %s", address)
	return &ReportPublisher{
		socket:  socket,
		logger:  logger,
		running: true,
	}, nil
}

// PublishMessage sends a message with the given topic
func (p *ReportPublisher) PublishMessage(topic string, message []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return ErrServiceClosed
	}

	if _, err := p.socket.Send(topic, zmq4.SNDMORE); err != nil {
		return fmt.Errorf("failed to send topic: %w", err)
	}
	if _, err := p.socket.SendBytes(message, 0); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// PublishJSON publishes a JSON-serializable message with the given topic
func (p *ReportPublisher) PublishJSON(topic string, messageType string, data interface{}) error {
	msg, err := marshalNotification(messageType, data)
	if err != nil {
		return err
	}
	return p.PublishMessage(topic, msg)
}

// PublishConfigUpdatedNotification announces a stored configuration.
func (p *ReportPublisher) PublishConfigUpdatedNotification(configID string) error {
	p.logger.Infof("Publishing configuration update notification (ID: %s)", configID)
	return p.PublishJSON(TopicConfigNotification, MsgTypeConfigUpdated, map[string]interface{}{
		"config_id": configID,
	})
}

// Close cleans up resources
func (p *ReportPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.running = false
	if p.socket != nil {
		p.socket.Close()
		p.socket = nil
	}
}

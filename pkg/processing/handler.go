package processing

import (
	customlog "github.com/open-teleop/armbridge/pkg/log"
)

// MessagePublisher defines the interface for publishing messages
type MessagePublisher interface {
	PublishMessage(topic string, data []byte) error
}

// PublishingResultHandler publishes encoded reports and logs failures.
type PublishingResultHandler struct {
	logger    customlog.Logger
	publisher MessagePublisher
}

// NewPublishingResultHandler creates a handler for publisher. A nil
// publisher only logs.
func NewPublishingResultHandler(logger customlog.Logger, publisher MessagePublisher) *PublishingResultHandler {
	if logger == nil {
		logger = customlog.Nop()
	}
	return &PublishingResultHandler{
		logger:    logger,
		publisher: publisher,
	}
}

// HandleResult handles a processed report
func (h *PublishingResultHandler) HandleResult(result *ProcessResult) {
	if result.Error != nil {
		h.logger.Errorf("Error processing report %d for topic '%s': %v", result.Seq, result.Topic, result.Error)
		return
	}
	if h.publisher == nil || len(result.Payload) == 0 {
		return
	}

	if err := h.publisher.PublishMessage(result.Topic, result.Payload); err != nil {
		h.logger.Errorf("Failed to publish report %d for topic '%s': %v", result.Seq, result.Topic, err)
		return
	}
	h.logger.Debugf("Published report %d on '%s' (%d bytes)", result.Seq, result.Topic, len(result.Payload))
}

// CreateHandlerFunc creates a ResultHandler function for the ReportPool
func (h *PublishingResultHandler) CreateHandlerFunc() ResultHandler {
	return func(processResult *ProcessResult) {
		if processResult == nil {
			h.logger.Errorf("Received nil ProcessResult")
			return
		}
		h.HandleResult(processResult)
	}
}

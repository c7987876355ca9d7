package processing

import (
	"sync"
	"time"

	"github.com/open-teleop/armbridge/domain/teleop"
	customlog "github.com/open-teleop/armbridge/pkg/log"
)

// ProcessResult is the result of processing one cycle report
type ProcessResult struct {
	Topic     string
	Payload   []byte
	Seq       uint64
	Timestamp int64
	Error     error
}

// ResultHandler is a function that handles processed results
type ResultHandler func(result *ProcessResult)

// ReportProcessor turns a cycle report into a wire payload
type ReportProcessor func(report teleop.CycleReport) ([]byte, error)

// ReportPool moves cycle reports off the control goroutine. Submission never
// blocks: when the queue is full the report is dropped and counted.
type ReportPool struct {
	name          string
	topic         string
	workerCount   int
	logger        customlog.Logger
	queue         chan teleop.CycleReport
	running       bool
	wg            sync.WaitGroup
	mu            sync.RWMutex
	processor     ReportProcessor
	resultHandler ResultHandler
	queueSize     int
	metrics       *PoolMetrics
}

var _ teleop.Observer = (*ReportPool)(nil)

// PoolMetrics tracks metrics for a report pool
type PoolMetrics struct {
	ProcessedCount    int64
	ErrorCount        int64
	QueuedCount       int64
	DroppedCount      int64
	LastProcessedTime int64
	ProcessingTimeAvg int64 // in microseconds
	ProcessingTimeMax int64 // in microseconds
	mu                sync.Mutex
}

// NewReportPool creates a pool whose results carry topic.
func NewReportPool(name, topic string, workerCount, queueSize int, logger customlog.Logger) *ReportPool {
	if logger == nil {
		logger = customlog.Nop()
	}
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &ReportPool{
		name:        name,
		topic:       topic,
		workerCount: workerCount,
		queueSize:   queueSize,
		logger:      logger.WithField("pool", name),
		queue:       make(chan teleop.CycleReport, queueSize),
		metrics:     &PoolMetrics{},
	}
}

// SetProcessor sets the report processor function
func (p *ReportPool) SetProcessor(processor ReportProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processor = processor
}

// SetResultHandler sets the result handler function
func (p *ReportPool) SetResultHandler(handler ResultHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resultHandler = handler
}

// Submit queues a report. It returns false when the pool is stopped or full.
func (p *ReportPool) Submit(report teleop.CycleReport) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.running {
		return false
	}

	p.metrics.mu.Lock()
	p.metrics.QueuedCount++
	p.metrics.mu.Unlock()

	select {
	case p.queue <- report:
		return true
	default:
		p.metrics.mu.Lock()
		p.metrics.DroppedCount++
		p.metrics.mu.Unlock()
		p.logger.Debugf("%s pool queue is full, dropping report %d", p.name, report.Seq)
		return false
	}
}

// StateChanged ignores loop state changes.
func (p *ReportPool) StateChanged(teleop.State) {}

// CycleCompleted submits the report.
func (p *ReportPool) CycleCompleted(r teleop.CycleReport) {
	p.Submit(r)
}

// Start starts the pool workers
func (p *ReportPool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}

	p.running = true
	p.logger.Infof("Starting %s pool with %d workers", p.name, p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop drains the queue and waits for the workers.
func (p *ReportPool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Infof("%s pool stopped", p.name)
	p.logMetrics()
}

func (p *ReportPool) worker(id int) {
	defer p.wg.Done()
	p.logger.Debugf("%s pool worker %d started", p.name, id)

	for report := range p.queue {
		p.mu.RLock()
		processor := p.processor
		resultHandler := p.resultHandler
		p.mu.RUnlock()

		if processor == nil {
			p.logger.Errorf("No report processor set for %s pool", p.name)
			continue
		}

		startTime := time.Now()
		payload, err := processor(report)
		processingTime := time.Since(startTime).Microseconds()

		p.metrics.mu.Lock()
		p.metrics.ProcessedCount++
		p.metrics.LastProcessedTime = time.Now().UnixNano()
		if p.metrics.ProcessingTimeAvg == 0 {
			p.metrics.ProcessingTimeAvg = processingTime
		} else {
			// Simple moving average
			p.metrics.ProcessingTimeAvg = (p.metrics.ProcessingTimeAvg + processingTime) / 2
		}
		if processingTime > p.metrics.ProcessingTimeMax {
			p.metrics.ProcessingTimeMax = processingTime
		}
		if err != nil {
			p.metrics.ErrorCount++
		}
		p.metrics.mu.Unlock()

		if err != nil {
			p.logger.Errorf("Error processing report %d in %s pool: %v", report.Seq, p.name, err)
		}

		if resultHandler != nil {
			resultHandler(&ProcessResult{
				Topic:     p.topic,
				Payload:   payload,
				Seq:       report.Seq,
				Timestamp: report.Time.UnixNano(),
				Error:     err,
			})
		}
	}

	p.logger.Debugf("%s pool worker %d stopped", p.name, id)
}

// GetMetrics returns a copy of the current metrics
func (p *ReportPool) GetMetrics() PoolMetrics {
	p.metrics.mu.Lock()
	defer p.metrics.mu.Unlock()

	return PoolMetrics{
		ProcessedCount:    p.metrics.ProcessedCount,
		ErrorCount:        p.metrics.ErrorCount,
		QueuedCount:       p.metrics.QueuedCount,
		DroppedCount:      p.metrics.DroppedCount,
		LastProcessedTime: p.metrics.LastProcessedTime,
		ProcessingTimeAvg: p.metrics.ProcessingTimeAvg,
		ProcessingTimeMax: p.metrics.ProcessingTimeMax,
	}
}

func (p *ReportPool) logMetrics() {
	metrics := p.GetMetrics()
	p.logger.Infof("%s pool metrics: processed=%d, errors=%d, dropped=%d, avg_time=%dµs, max_time=%dµs",
		p.name, metrics.ProcessedCount, metrics.ErrorCount, metrics.DroppedCount,
		metrics.ProcessingTimeAvg, metrics.ProcessingTimeMax)
}

// GetName returns the pool name
func (p *ReportPool) GetName() string {
	return p.name
}

// GetQueueLength returns the current length of the report queue
func (p *ReportPool) GetQueueLength() int {
	return len(p.queue)
}

// GetQueueCapacity returns the capacity of the report queue
func (p *ReportPool) GetQueueCapacity() int {
	return p.queueSize
}

package diagnostic

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/open-teleop/armbridge/domain/teleop"
)

// BridgeStatus is a snapshot of the control loop as seen by its observer.
type BridgeStatus struct {
	Timestamp     time.Time  `json:"timestamp"`
	RobotID       string     `json:"robot_id"`
	Cadence       string     `json:"cadence"`
	State         string     `json:"state"`
	SessionID     string     `json:"session_id,omitempty"`
	ClientAddress string     `json:"client_address,omitempty"`
	Connected     bool       `json:"connected"`
	Frames        uint64     `json:"frames"`
	Cycles        uint64     `json:"cycles"`
	Commanded     uint64     `json:"commanded"`
	Halted        uint64     `json:"halted"`
	Clipped       uint64     `json:"clipped"`
	LastFraction  float64    `json:"last_fraction"`
	LastPose      [6]float64 `json:"last_pose"`
	LastReason    string     `json:"last_reason,omitempty"`
	LastCycleAt   *time.Time `json:"last_cycle_at,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
}

// BridgeService keeps counters about the control loop. It is a
// teleop.Observer and must stay cheap: it is called on the loop goroutine.
type BridgeService struct {
	mu     sync.RWMutex
	status BridgeStatus
}

var _ teleop.Observer = (*BridgeService)(nil)

// NewBridgeService creates a new diagnostic service instance
func NewBridgeService(robotID, cadence string) *BridgeService {
	return &BridgeService{
		status: BridgeStatus{
			RobotID:   robotID,
			Cadence:   cadence,
			State:     teleop.StateIdle.String(),
			StartedAt: time.Now(),
		},
	}
}

// SessionStarted records the connected client.
func (s *BridgeService) SessionStarted(id, remote string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.SessionID = id
	s.status.ClientAddress = remote
	s.status.Connected = true
}

// SessionEnded marks the client as gone.
func (s *BridgeService) SessionEnded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Connected = false
}

// StateChanged records the loop state.
func (s *BridgeService) StateChanged(state teleop.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.State = state.String()
}

// CycleCompleted updates the counters.
func (s *BridgeService) CycleCompleted(r teleop.CycleReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Cycles++
	if r.Repetition == 0 {
		s.status.Frames++
	}
	switch r.Outcome {
	case teleop.OutcomeCommanded:
		s.status.Commanded++
		if r.Fraction < 1 {
			s.status.Clipped++
		}
		s.status.LastReason = ""
	case teleop.OutcomeHalted:
		s.status.Halted++
		if r.Reason != nil {
			s.status.LastReason = r.Reason.Error()
		}
	}
	s.status.LastFraction = r.Fraction
	s.status.LastPose = r.Pose.Array()
	at := r.Time
	s.status.LastCycleAt = &at
}

// GetStatus returns the current status
func (s *BridgeService) GetStatus() BridgeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := s.status
	status.Timestamp = time.Now()
	return status
}

// GetStatusHandler handles API requests for the bridge status
func (s *BridgeService) GetStatusHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "success",
		"bridge": s.GetStatus(),
	})
}

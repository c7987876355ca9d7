package processing

import (
	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/open-teleop/armbridge/domain/teleop"
	fb "github.com/open-teleop/armbridge/pkg/flatbuffers/open_teleop/bridge"
)

// EncodeCycleReport serializes a report as a bridge.CycleReport flatbuffer.
func EncodeCycleReport(r teleop.CycleReport) ([]byte, error) {
	builder := flatbuffers.NewBuilder(256)

	session := builder.CreateString(r.Session)
	var reason flatbuffers.UOffsetT
	if r.Reason != nil {
		reason = builder.CreateString(r.Reason.Error())
	}

	velocity := r.Velocity
	velocityVec := float64Vector(builder, fb.CycleReportStartVelocityVector, []float64{velocity.DX, velocity.DY, velocity.DZ})
	pose := r.Pose.Array()
	poseVec := float64Vector(builder, fb.CycleReportStartPoseVector, pose[:])
	var commandVec flatbuffers.UOffsetT
	if r.Outcome == teleop.OutcomeCommanded {
		commandVec = float64Vector(builder, fb.CycleReportStartCommandVector, r.Command.Vector[:])
	}

	fb.CycleReportStart(builder)
	fb.CycleReportAddSessionId(builder, session)
	fb.CycleReportAddSeq(builder, r.Seq)
	fb.CycleReportAddRepetition(builder, int32(r.Repetition))
	fb.CycleReportAddOutcome(builder, outcomeToWire(r.Outcome))
	fb.CycleReportAddVelocity(builder, velocityVec)
	fb.CycleReportAddPose(builder, poseVec)
	fb.CycleReportAddFraction(builder, r.Fraction)
	if commandVec != 0 {
		fb.CycleReportAddCommand(builder, commandVec)
	}
	if reason != 0 {
		fb.CycleReportAddReason(builder, reason)
	}
	fb.CycleReportAddTimestampNs(builder, r.Time.UnixNano())
	root := fb.CycleReportEnd(builder)
	fb.FinishCycleReportBuffer(builder, root)

	return builder.FinishedBytes(), nil
}

func float64Vector(b *flatbuffers.Builder, start func(*flatbuffers.Builder, int) flatbuffers.UOffsetT, values []float64) flatbuffers.UOffsetT {
	start(b, len(values))
	for i := len(values) - 1; i >= 0; i-- {
		b.PrependFloat64(values[i])
	}
	return b.EndVector(len(values))
}

func outcomeToWire(o teleop.Outcome) fb.CycleOutcome {
	if o == teleop.OutcomeHalted {
		return fb.CycleOutcomeHalted
	}
	return fb.CycleOutcomeCommanded
}

package netsim

//
// Metrics recording hook
//

import "time"

// DropReason classifies why a packet was dropped, for [Recorder.PacketDropped].
type DropReason int

const (
	// DropReasonQueueOverflow means a link's bounded queue was full.
	DropReasonQueueOverflow DropReason = iota

	// DropReasonRandomLoss means the link's independent loss roll fired.
	DropReasonRandomLoss

	// DropReasonForced means a [DropPredicate] forced the drop.
	DropReasonForced
)

// String renders a human-readable drop reason.
func (r DropReason) String() string {
	switch r {
	case DropReasonQueueOverflow:
		return "queue_overflow"
	case DropReasonRandomLoss:
		return "random_loss"
	case DropReasonForced:
		return "forced"
	default:
		return "unknown"
	}
}

// Recorder observes simulation-level events for external metrics
// export. The core only depends on this interface; concrete
// implementations (e.g. netsim/metrics.Prometheus) live outside the
// core and are wired in by collaborators.
type Recorder interface {
	// PacketSent is called each time a link starts transmitting a packet.
	PacketSent()

	// PacketDropped is called each time a link drops a packet.
	PacketDropped(reason DropReason)

	// PacketRetransmitted is called each time a TCP connection
	// retransmits a segment, whether by timeout or fast retransmit.
	PacketRetransmitted()

	// CongestionWindowSample is called whenever a connection's
	// congestion window changes.
	CongestionWindowSample(bytes int)

	// RTTSample is called for every accepted (non-Karn-suppressed)
	// RTT measurement.
	RTTSample(d time.Duration)
}

// NoopRecorder is a [Recorder] that does nothing. It is the default
// when no recorder is supplied.
type NoopRecorder struct{}

var _ Recorder = NoopRecorder{}

func (NoopRecorder) PacketSent()                        {}
func (NoopRecorder) PacketDropped(DropReason)            {}
func (NoopRecorder) PacketRetransmitted()                {}
func (NoopRecorder) CongestionWindowSample(int)          {}
func (NoopRecorder) RTTSample(time.Duration)             {}

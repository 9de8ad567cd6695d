package netsim

//
// Link transmission and queueing model
//

import "math/rand"

// DropPredicate decides whether a packet about to enter a [Link]'s
// queue should be dropped, beyond the link's own random-loss roll.
// This is the pluggable hook the spec calls for to express test
// instrumentation like "force-drop sequence 32000 once" without
// baking a one-off condition into the core transmission path.
type DropPredicate func(p *Packet) bool

// LinkConfig configures a [Link].
type LinkConfig struct {
	// Address is the node-local identifier of this link.
	Address string

	// Bandwidth is in bits per second and must be > 0.
	Bandwidth float64

	// Propagation is the one-way propagation delay in seconds, >= 0.
	Propagation float64

	// QueueSize bounds the number of packets the queue may hold.
	// A value <= 0 means unbounded.
	QueueSize int

	// Loss is the independent per-packet drop probability, in [0,1].
	Loss float64

	// Drop, if non-nil, is consulted after the random-loss roll and
	// can force a drop regardless of Loss (see [DropPredicate]).
	Drop DropPredicate

	// Recorder receives packet-level metrics events. A nil Recorder
	// is treated as [NoopRecorder].
	Recorder Recorder

	// Logger receives trace output. A nil Logger is treated as
	// [NullLogger].
	Logger Logger
}

// Link is a one-way transmission pipe from Startpoint to Endpoint with
// bandwidth, propagation delay, a bounded FIFO queue, and independent
// random loss. The zero value is invalid; use [NewLink].
//
// Invariant: at most one packet is "on the wire" at a time — a strict
// serial-transmission model in which queueing delay fully accounts for
// the serialization wait behind earlier packets.
type Link struct {
	cfg       LinkConfig
	scheduler *Scheduler

	startpoint *Node
	endpoint   *Node

	running bool
	busy    bool
	queue   []*Packet

	rnd   *rand.Rand
	trace *SequenceTraceWriter
}

// NewLink creates a running [Link] between startpoint and endpoint,
// driven by scheduler. Pass a deterministic source via [Link.SetRand]
// in tests that need reproducible loss decisions.
func NewLink(scheduler *Scheduler, startpoint, endpoint *Node, cfg LinkConfig) *Link {
	if cfg.Recorder == nil {
		cfg.Recorder = NoopRecorder{}
	}
	if cfg.Logger == nil {
		cfg.Logger = &NullLogger{}
	}
	return &Link{
		cfg:        cfg,
		scheduler:  scheduler,
		startpoint: startpoint,
		endpoint:   endpoint,
		running:    true,
		queue:      []*Packet{},
		rnd:        rand.New(rand.NewSource(1)),
	}
}

// SetRand overrides the random source used for loss decisions.
func (l *Link) SetRand(rnd *rand.Rand) {
	l.rnd = rnd
}

// SetTrace attaches a [SequenceTraceWriter] that records every send,
// drop, and transmission on this link in the canonical trace format.
func (l *Link) SetTrace(w *SequenceTraceWriter) {
	l.trace = w
}

// Up marks the link as running. Already-scheduled arrivals for
// packets in flight are unaffected.
func (l *Link) Up() {
	l.running = true
}

// Down marks the link as not running. Packets already in transit at
// the moment of Down still arrive; SendPacket becomes a no-op until
// the next Up.
func (l *Link) Down() {
	l.running = false
}

// SendPacket attempts to enqueue p for transmission. Not-running is a
// silent drop; queue overflow, the probabilistic loss roll, and a
// forced drop are logged, counted, and traced. Otherwise the packet
// either starts transmitting immediately (idle link) or joins the
// queue.
func (l *Link) SendPacket(p *Packet) {
	if !l.running {
		return
	}
	if l.cfg.QueueSize > 0 && len(l.queue) >= l.cfg.QueueSize {
		l.cfg.Logger.Debugf("netsim: [Queue] x")
		l.cfg.Recorder.PacketDropped(DropReasonQueueOverflow)
		l.recordDrop(p)
		return
	}
	if l.cfg.Loss > 0 && l.rnd.Float64() < l.cfg.Loss {
		l.cfg.Logger.Debugf("netsim: [Link] dropped seq=%d on %s", p.Sequence, l.cfg.Address)
		l.cfg.Recorder.PacketDropped(DropReasonRandomLoss)
		l.recordDrop(p)
		return
	}
	if l.cfg.Drop != nil && l.cfg.Drop(p) {
		l.cfg.Logger.Debugf("netsim: [Link] forced drop seq=%d on %s", p.Sequence, l.cfg.Address)
		l.cfg.Recorder.PacketDropped(DropReasonForced)
		l.recordDrop(p)
		return
	}

	p.enterQueue = l.scheduler.CurrentTime()

	if len(l.queue) == 0 && !l.busy {
		l.busy = true
		l.transmit(p)
	} else {
		l.queue = append(l.queue, p)
		l.cfg.Logger.Debugf("netsim: [Queue] %d", len(l.queue))
	}
}

// recordDrop emits the dropped=1 trace line for p, keyed on whatever
// sequence number is meaningful (data sequence, or ack number for a
// dropped pure ACK).
func (l *Link) recordDrop(p *Packet) {
	seq := p.Sequence
	if !p.IsData() && p.IsAck() {
		seq = p.AckNumber
	}
	l.trace.Record(l.scheduler.CurrentTime(), seq, true, false)
}

// transmit puts p "on the wire": accounts queueing delay, computes
// serialization delay from Bandwidth, schedules the endpoint's
// arrival at tx+propagation, and schedules an internal completion
// event at tx that starts the next queued packet (or clears busy).
func (l *Link) transmit(p *Packet) {
	p.QueueingDelay += l.scheduler.CurrentTime() - p.enterQueue
	tx := 8.0 * float64(p.Length()) / l.cfg.Bandwidth
	p.TransmissionDelay += tx
	p.PropagationDelay += l.cfg.Propagation

	l.cfg.Recorder.PacketSent()
	if p.IsData() {
		l.trace.Record(l.scheduler.CurrentTime(), p.Sequence, false, false)
	} else if p.IsAck() {
		l.trace.Record(l.scheduler.CurrentTime(), p.AckNumber, false, true)
	}

	endpoint := l.endpoint
	deliver := p
	l.scheduler.Add(tx+l.cfg.Propagation, deliver, func(*Event) {
		endpoint.ReceivePacket(deliver)
	})
	l.scheduler.Add(tx, nil, func(*Event) {
		l.next()
	})
}

// next fires when the current on-wire transmission completes: it
// pops the queue head and transmits it, or clears busy if empty.
func (l *Link) next() {
	if len(l.queue) > 0 {
		p := l.queue[0]
		l.queue = l.queue[1:]
		l.cfg.Logger.Debugf("netsim: [Queue] %d", len(l.queue))
		l.transmit(p)
	} else {
		l.busy = false
	}
}

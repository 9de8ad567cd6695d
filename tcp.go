package netsim

//
// TCP connection: sender, receiver, ACK handling, retransmission,
// congestion control, and RTT estimation
//

import "time"

// State names one of the four states in the connection's lifecycle
// (§4.4.8): IDLE (nothing outstanding, no timer), SENDING (data
// outstanding, timer armed), RETRANSMITTING (one retransmission in
// flight, duplicate-ACK suppression active), CLOSED (simulation-level
// terminal once all data is ACKed and the application reached
// end-of-stream; the core never models a FIN handshake).
type State int

const (
	StateIdle State = iota
	StateSending
	StateRetransmitting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateSending:
		return "SENDING"
	case StateRetransmitting:
		return "RETRANSMITTING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// TCPConfig configures a new [TCP] connection.
type TCPConfig struct {
	// Node is the local host this connection sends through.
	Node *Node

	// SourceAddress/SourcePort identify this connection's local endpoint.
	SourceAddress string
	SourcePort    int

	// DestinationAddress/DestinationPort identify the remote endpoint.
	DestinationAddress string
	DestinationPort    int

	// App receives delivered bytes. May be nil (bytes are dropped).
	App Application

	// MSS is the maximum segment size in bytes. Defaults to 1000.
	MSS int

	// InitialWindow seeds the congestion window. Defaults to MSS, the
	// standard slow-start entry point.
	InitialWindow int

	// InitialThreshold seeds ssthresh. Defaults to 64<<10.
	InitialThreshold int

	// RTOMin/RTOMax bound the retransmission timeout. Zero selects the
	// RFC 6298 defaults (1s / 60s).
	RTOMin float64
	RTOMax float64

	// Recorder receives metrics events. Defaults to [NoopRecorder].
	Recorder Recorder

	// Logger receives trace output. Defaults to [NullLogger].
	Logger Logger
}

// TCP is a single TCP-Reno-style flow: a sender half (SendBuffer,
// congestion control, RTO timer) and a receiver half (ReceiveBuffer),
// demultiplexed by a shared [Transport]. The zero value is not ready
// to use; construct with [NewTCP].
type TCP struct {
	cfg TCPConfig

	node      *Node
	transport *Transport
	app       Application
	scheduler *Scheduler
	recorder  Recorder
	logger    Logger

	mss int
	cc  *congestionController
	rtt *rttEstimator

	sendBuffer    SendBuffer
	receiveBuffer ReceiveBuffer

	// sequence is the highest ACK received so far (the cumulative ACK
	// boundary); ack is the next in-order byte expected, placed in
	// outgoing ACKs.
	sequence int
	ack      int

	dupAcks       []int
	retransmitting bool
	state         State

	timer      Handle
	timerArmed bool
}

// NewTCP creates a [TCP] connection, registers it with
// cfg.Node.Transport(), and returns it. Both endpoints of a flow must
// be constructed before the first byte is sent.
func NewTCP(scheduler *Scheduler, cfg TCPConfig) *TCP {
	if cfg.MSS <= 0 {
		cfg.MSS = 1000
	}
	if cfg.InitialWindow <= 0 {
		cfg.InitialWindow = cfg.MSS
	}
	if cfg.InitialThreshold <= 0 {
		cfg.InitialThreshold = 64 << 10
	}
	if cfg.Recorder == nil {
		cfg.Recorder = NoopRecorder{}
	}
	if cfg.Logger == nil {
		cfg.Logger = &NullLogger{}
	}

	conn := &TCP{
		cfg:       cfg,
		node:      cfg.Node,
		transport: cfg.Node.Transport(),
		app:       cfg.App,
		scheduler: scheduler,
		recorder:  cfg.Recorder,
		logger:    cfg.Logger,
		mss:       cfg.MSS,
		rtt:       newRTTEstimator(cfg.RTOMin, cfg.RTOMax),
		state:     StateIdle,
	}
	conn.cc = &congestionController{mss: cfg.MSS, window: cfg.InitialWindow, threshold: cfg.InitialThreshold}
	conn.transport.Register(conn)
	return conn
}

// Window returns the current congestion window, in bytes.
func (c *TCP) Window() int { return c.cc.window }

// Threshold returns the current ssthresh, in bytes.
func (c *TCP) Threshold() int { return c.cc.threshold }

// Sequence returns the cumulative-ACK boundary (highest ACK received).
func (c *TCP) Sequence() int { return c.sequence }

// State returns the connection's current lifecycle state (§4.4.8).
func (c *TCP) State() State { return c.state }

//
// Sender
//

// Send appends data to the send buffer and attempts to emit it
// immediately, fragmenting into MSS-sized segments.
func (c *TCP) Send(data []byte) {
	c.sendBuffer.Put(data)
	c.sendNextIfPossible()
}

// sendNextIfPossible is the emission loop: while bytes are available
// and outstanding < window, draw up to mss bytes and send them.
func (c *TCP) sendNextIfPossible() {
	for c.sendBuffer.Available() > 0 && c.sendBuffer.Outstanding() < c.cc.window {
		data, seq := c.sendBuffer.Get(c.mss)
		if len(data) == 0 {
			break
		}
		c.sendSegment(data, seq)
		if c.state == StateIdle {
			c.state = StateSending
		}
	}
	c.restartTimer(false)
}

// sendSegment constructs and transmits one data segment carrying the
// piggybacked ack field.
func (c *TCP) sendSegment(data []byte, sequence int) {
	p := &Packet{
		SourceAddress:      c.cfg.SourceAddress,
		SourcePort:         c.cfg.SourcePort,
		DestinationAddress: c.cfg.DestinationAddress,
		DestinationPort:    c.cfg.DestinationPort,
		Body:               data,
		Sequence:           sequence,
		AckNumber:          c.ack,
		SentTime:           c.scheduler.CurrentTime(),
	}
	c.logger.Debugf("netsim: [TCP] %s:%d sending segment seq=%d len=%d", c.cfg.SourceAddress, c.cfg.SourcePort, sequence, len(data))
	c.node.Send(p)
}

//
// Receiver
//

// ReceivePacket is called by the [Transport] when a packet addressed
// to this connection arrives. ACK fields and data bodies are handled
// independently, matching the wire format where a segment may carry
// both.
func (c *TCP) ReceivePacket(p *Packet) {
	if p.IsAck() {
		c.handleAck(p)
	}
	if p.IsData() {
		c.handleData(p)
	}
}

// handleData delivers an in-order prefix to the application, advances
// ack to the new in-order head, and replies with an ACK that echoes
// the triggering packet's SentTime so the sender's RTT sample spans
// the true round trip. No ACK is sent while the in-order head is
// still zero.
func (c *TCP) handleData(p *Packet) {
	c.logger.Debugf("netsim: [TCP] %s:%d received segment seq=%d len=%d", c.cfg.SourceAddress, c.cfg.SourcePort, p.Sequence, p.Length())
	c.receiveBuffer.Put(p.Body, p.Sequence)

	data, head := c.receiveBuffer.Get()
	c.ack = head
	if c.app != nil && len(data) > 0 {
		c.app.ReceiveData(data)
	}
	if c.ack > 0 {
		c.sendAck(p.SentTime)
	}
}

// sendAck transmits a pure-ACK packet echoing sentTime.
func (c *TCP) sendAck(sentTime float64) {
	p := &Packet{
		SourceAddress:      c.cfg.SourceAddress,
		SourcePort:         c.cfg.SourcePort,
		DestinationAddress: c.cfg.DestinationAddress,
		DestinationPort:    c.cfg.DestinationPort,
		Sequence:           c.sequence,
		AckNumber:          c.ack,
		SentTime:           sentTime,
	}
	c.node.Send(p)
}

//
// ACK handling
//

// handleAck implements §4.4.3 end to end.
func (c *TCP) handleAck(p *Packet) {
	rttSample := c.scheduler.CurrentTime() - p.SentTime
	eligibleForRTT := !c.retransmitting

	c.sendBuffer.Slide(p.AckNumber)
	acked := p.AckNumber - c.sequence
	c.sequence = p.AckNumber

	if c.retransmitting && acked > 0 {
		// first ACK whose number advances sequence: RETRANSMITTING -> SENDING
		c.retransmitting = false
		c.state = StateSending
	}

	if c.sendBuffer.Outstanding() == 0 && c.sendBuffer.Available() == 0 {
		c.cancelTimer()
		if c.state != StateClosed {
			c.state = StateIdle
		}
		return
	}

	c.dupAcks = append(c.dupAcks, p.AckNumber)
	if len(c.dupAcks) > 3 {
		c.dupAcks = c.dupAcks[len(c.dupAcks)-3:]
	}
	if !c.retransmitting && len(c.dupAcks) == 3 &&
		c.dupAcks[0] == c.dupAcks[1] && c.dupAcks[1] == c.dupAcks[2] {
		c.logger.Debugf("netsim: [TCP] %s:%d fast retransmit on ack=%d", c.cfg.SourceAddress, c.cfg.SourcePort, p.AckNumber)
		c.fastRetransmit()
		return
	}

	if acked == 0 && c.retransmitting {
		return
	}

	c.cc.onAck(acked)
	c.recorder.CongestionWindowSample(c.cc.window)

	c.sendNextIfPossible()
	if eligibleForRTT && rttSample >= 0 {
		c.rtt.sample(rttSample)
		c.recorder.RTTSample(time.Duration(rttSample * float64(time.Second)))
	}
	c.restartTimer(false)
}

//
// Retransmission timer
//

// restartTimer (re)arms the retransmission timer when bytes are
// outstanding, or cancels it when nothing is outstanding and nothing
// is available to send.
func (c *TCP) restartTimer(timerExpired bool) {
	if c.sendBuffer.Available() == 0 && c.sendBuffer.Outstanding() == 0 {
		c.cancelTimer()
		return
	}
	c.startTimer(timerExpired)
}

// startTimer arms the retransmission timer at the current RTO. Unless
// timerExpired is set (the caller is the expiring timer's own
// handler), any previously armed timer is canceled first.
func (c *TCP) startTimer(timerExpired bool) {
	if !timerExpired {
		c.cancelTimer()
	}
	h, _ := c.scheduler.Add(c.rtt.rtoSeconds(), nil, func(*Event) {
		c.onTimerExpired()
	})
	c.timer = h
	c.timerArmed = true
}

// cancelTimer disarms the retransmission timer, if armed.
func (c *TCP) cancelTimer() {
	if !c.timerArmed {
		return
	}
	c.scheduler.Cancel(c.timer)
	c.timerArmed = false
}

// onTimerExpired is invoked when the RTO fires. It performs
// exponential backoff and then the same retransmission recipe as a
// fast retransmit.
func (c *TCP) onTimerExpired() {
	c.logger.Warnf("netsim: [TCP] %s:%d retransmission timer expired, rto was %.3fs", c.cfg.SourceAddress, c.cfg.SourcePort, c.rtt.rtoSeconds())
	c.rtt.backoff()
	c.state = StateRetransmitting
	c.retransmitting = true
	c.retransmitSegment(true)
}

// fastRetransmit performs §4.4.5 in response to the third consecutive
// duplicate ACK, without the RTO backoff a timeout applies.
func (c *TCP) fastRetransmit() {
	c.state = StateRetransmitting
	c.retransmitting = true
	c.retransmitSegment(false)
}

// retransmitSegment implements the shared body of §4.4.5: restart the
// timer (permitting the handler to re-arm itself when called from
// onTimerExpired), resend the segment at Base, and execute the loss
// event.
func (c *TCP) retransmitSegment(fromTimerHandler bool) {
	c.restartTimer(fromTimerHandler)
	data, seq := c.sendBuffer.Resend(c.mss)
	c.sendSegment(data, seq)
	c.recorder.PacketRetransmitted()
	c.cc.onLoss()
	c.recorder.CongestionWindowSample(c.cc.window)
	c.dupAcks = nil
}

package netsim

//
// Packet data model
//

// Packet is an immutable header-plus-body record carried end to end
// by the simulated network. Only the trailing transit counters may
// change once a [Packet] is in flight; everything else is set once by
// the sender.
type Packet struct {
	// SourceAddress is the sender's node address.
	SourceAddress string

	// SourcePort identifies the sending connection at SourceAddress.
	SourcePort int

	// DestinationAddress is the receiver's node address.
	DestinationAddress string

	// DestinationPort identifies the receiving connection.
	DestinationPort int

	// Sequence is the absolute byte offset of Body's first byte.
	Sequence int

	// AckNumber is the next byte the receiver expects, or zero if this
	// packet carries no ACK field. A pure ACK (Body empty) is never
	// sent with AckNumber == 0; see [TCP].
	AckNumber int

	// Body is the opaque payload. May be empty (pure ACK).
	Body []byte

	// SentTime is the simulated time the sender posted this packet.
	// ACKs echo the SentTime of the data packet that triggered them,
	// so the sender's RTT sample spans the true round trip.
	SentTime float64

	// QueueingDelay accumulates time spent waiting in link queues.
	QueueingDelay float64

	// TransmissionDelay accumulates serialization delay (8*len/bandwidth).
	TransmissionDelay float64

	// PropagationDelay accumulates per-hop propagation delay.
	PropagationDelay float64

	// enterQueue is the simulated time this packet entered a link's
	// queue, used to compute QueueingDelay when it starts transmitting.
	enterQueue float64
}

// Length returns len(Body).
func (p *Packet) Length() int {
	return len(p.Body)
}

// IsAck reports whether this packet carries an ACK field.
func (p *Packet) IsAck() bool {
	return p.AckNumber > 0
}

// IsData reports whether this packet carries a non-empty body.
func (p *Packet) IsData() bool {
	return len(p.Body) > 0
}

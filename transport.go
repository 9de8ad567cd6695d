package netsim

//
// Connection demultiplexing
//

import "fmt"

// connKey identifies one TCP connection from the Transport's point of
// view: the local port the packet's destination port must match, and
// the remote (address, port) the packet's source must match.
type connKey struct {
	localPort   int
	remoteAddr  string
	remotePort  int
}

// Transport demultiplexes inbound packets to the [TCP] connection that
// owns (destination port, source port, source address). The zero
// value is not ready to use; construct with [NewTransport].
type Transport struct {
	conns  map[connKey]*TCP
	logger Logger
}

// NewTransport creates an empty [Transport].
func NewTransport(logger Logger) *Transport {
	if logger == nil {
		logger = &NullLogger{}
	}
	return &Transport{conns: map[connKey]*TCP{}, logger: logger}
}

// Register associates conn with its (source port, destination
// address, destination port) tuple so inbound packets matching that
// tuple reach it. A [TCP] connection registers itself when constructed.
func (t *Transport) Register(conn *TCP) {
	key := connKey{
		localPort:  conn.cfg.SourcePort,
		remoteAddr: conn.cfg.DestinationAddress,
		remotePort: conn.cfg.DestinationPort,
	}
	t.conns[key] = conn
}

// Send hands p to node for outbound delivery. The [TCP] connections in
// this package call [Node.Send] directly and do not use this method.
func (t *Transport) Send(node *Node, p *Packet) {
	node.Send(p)
}

// Demux dispatches an inbound packet to its owning [TCP] connection by
// matching the packet's destination port to the connection's source
// port and the packet's source address/port to the connection's
// destination address/port.
func (t *Transport) Demux(p *Packet) {
	key := connKey{
		localPort:  p.DestinationPort,
		remoteAddr: p.SourceAddress,
		remotePort: p.SourcePort,
	}
	conn, ok := t.conns[key]
	if !ok {
		t.logger.Warnf("netsim: transport: %s", fmt.Sprintf(
			"no connection for dst_port=%d src=%s:%d", p.DestinationPort, p.SourceAddress, p.SourcePort))
		return
	}
	conn.ReceivePacket(p)
}

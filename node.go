package netsim

//
// Addressable hosts and static forwarding
//

// Node is an addressable host with a forwarding table mapping
// destination address to outgoing [Link], plus the set of local
// addresses the [Transport] should accept packets for. The zero value
// is not ready to use; construct with [NewNode].
type Node struct {
	// Hostname is this node's human-readable name (for traces).
	Hostname string

	forwarding map[string]*Link
	links      []*Link
	localAddrs map[string]bool
	transport  *Transport
	logger     Logger
}

// NewNode creates an empty [Node] with no links and no routes.
func NewNode(hostname string, logger Logger) *Node {
	if logger == nil {
		logger = &NullLogger{}
	}
	return &Node{
		Hostname:   hostname,
		forwarding: map[string]*Link{},
		links:      []*Link{},
		localAddrs: map[string]bool{},
		transport:  NewTransport(logger),
		logger:     logger,
	}
}

// Transport returns this node's [Transport], the demultiplexer
// TCP connections register with.
func (n *Node) Transport() *Transport {
	return n.transport
}

// AttachLink records lnk as one of this node's outgoing links.
func (n *Node) AttachLink(lnk *Link) {
	n.links = append(n.links, lnk)
}

// AddLocalAddress marks addr as an address this node owns: inbound
// packets destined to addr are handed to the local [Transport]
// instead of being forwarded.
func (n *Node) AddLocalAddress(addr string) {
	n.localAddrs[addr] = true
}

// AddForwardingEntry routes packets addressed to destAddr out lnk.
func (n *Node) AddForwardingEntry(destAddr string, lnk *Link) {
	n.forwarding[destAddr] = lnk
}

// Send looks up p.DestinationAddress in the forwarding table and hands
// p to the resulting [Link]. A miss is a drop logged at Warn level;
// retransmission at the TCP layer is the recovery mechanism,
// not link-layer retry.
func (n *Node) Send(p *Packet) {
	lnk, ok := n.forwarding[p.DestinationAddress]
	if !ok {
		n.logger.Warnf("netsim: %s: no route to %s", n.Hostname, p.DestinationAddress)
		return
	}
	lnk.SendPacket(p)
}

// ReceivePacket is called by a [Link] when a packet arrives at this
// node. Packets addressed to a local address are handed to the
// Transport for demultiplexing; everything else is forwarded again,
// supporting multi-hop static routing (the reference topology is a
// single hop).
func (n *Node) ReceivePacket(p *Packet) {
	if n.localAddrs[p.DestinationAddress] {
		n.transport.Demux(p)
		return
	}
	n.Send(p)
}

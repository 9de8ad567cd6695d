// Package topology loads a simulated network from a small
// whitespace-separated text grammar and wires the corresponding
// [netsim.Node] and [netsim.Link] values.
package topology

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kbpontius/lab4-CS460"
)

// ErrParse is the sentinel wrapped by every error [Load] returns.
var ErrParse = errors.New("topology: parse error")

// Topology holds every node and link constructed from a topology file,
// plus the address tables declared by "address" lines.
type Topology struct {
	Nodes     map[string]*netsim.Node
	Links     []*netsim.Link
	Addresses map[string]map[string]string // hostname -> peer hostname -> address
}

// linkRequest defers forwarding-table wiring until every "address" line
// has been read, since addresses may be declared after the links that
// need them.
type linkRequest struct {
	leftName, rightName string
	left, right          *netsim.Node
	forward, backward    *netsim.Link
}

// Load parses r line by line with a Scanner — a five-keyword
// whitespace grammar has no business pulling in a parser-combinator
// library, so this is a deliberate stdlib choice (see DESIGN.md).
//
// Grammar:
//
//	node <hostname>
//	link <hostname-a> <hostname-b> [bandwidth=<bps>] [propagation=<s>] [queue_size=<n>] [loss=<p>]
//	address <hostname> <link-hostname-peer> <address>
//	# line comment
func Load(r io.Reader, scheduler *netsim.Scheduler) (*Topology, error) {
	t := &Topology{
		Nodes:     map[string]*netsim.Node{},
		Addresses: map[string]map[string]string{},
	}
	var requests []linkRequest

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		switch fields[0] {
		case "node":
			if err := t.parseNode(fields, line); err != nil {
				return nil, err
			}
		case "link":
			req, err := t.parseLink(fields, line, scheduler)
			if err != nil {
				return nil, err
			}
			requests = append(requests, req)
		case "address":
			if err := t.parseAddress(fields, line); err != nil {
				return nil, err
			}
		default:
			return nil, parseErrorf(line, "unknown directive %q", fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: line %d: %v", ErrParse, line, err)
	}

	// Forwarding entries depend on every node's full address set, so
	// they're wired only once the whole file has been read: a node
	// routes to a peer's addresses, not to the peer's hostname.
	for _, req := range requests {
		req.left.AttachLink(req.forward)
		req.right.AttachLink(req.backward)
		if addr, ok := t.Addresses[req.rightName][req.leftName]; ok {
			req.left.AddForwardingEntry(addr, req.forward)
		}
		if addr, ok := t.Addresses[req.leftName][req.rightName]; ok {
			req.right.AddForwardingEntry(addr, req.backward)
		}
	}
	return t, nil
}

func parseErrorf(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrParse, line, fmt.Sprintf(format, args...))
}

func (t *Topology) parseNode(fields []string, line int) error {
	if len(fields) != 2 {
		return parseErrorf(line, "node: want 1 argument, got %d", len(fields)-1)
	}
	hostname := fields[1]
	if _, exists := t.Nodes[hostname]; exists {
		return parseErrorf(line, "node %q declared twice", hostname)
	}
	t.Nodes[hostname] = netsim.NewNode(hostname, nil)
	return nil
}

func (t *Topology) parseLink(fields []string, line int, scheduler *netsim.Scheduler) (linkRequest, error) {
	if len(fields) < 3 {
		return linkRequest{}, parseErrorf(line, "link: want at least 2 arguments, got %d", len(fields)-1)
	}
	left, ok := t.Nodes[fields[1]]
	if !ok {
		return linkRequest{}, parseErrorf(line, "link: unknown node %q", fields[1])
	}
	right, ok := t.Nodes[fields[2]]
	if !ok {
		return linkRequest{}, parseErrorf(line, "link: unknown node %q", fields[2])
	}

	cfg := netsim.LinkConfig{Bandwidth: 1e6, Propagation: 0.01, QueueSize: 64}
	for _, kv := range fields[3:] {
		k, v, found := strings.Cut(kv, "=")
		if !found {
			return linkRequest{}, parseErrorf(line, "link: malformed option %q", kv)
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return linkRequest{}, parseErrorf(line, "link: option %q: %v", kv, err)
		}
		switch k {
		case "bandwidth":
			cfg.Bandwidth = f
		case "propagation":
			cfg.Propagation = f
		case "queue_size":
			cfg.QueueSize = int(f)
		case "loss":
			cfg.Loss = f
		default:
			return linkRequest{}, parseErrorf(line, "link: unknown option %q", k)
		}
	}

	forward := netsim.NewLink(scheduler, left, right, cfg)
	backward := netsim.NewLink(scheduler, right, left, cfg)
	t.Links = append(t.Links, forward, backward)
	return linkRequest{
		leftName: fields[1], rightName: fields[2],
		left: left, right: right,
		forward: forward, backward: backward,
	}, nil
}

func (t *Topology) parseAddress(fields []string, line int) error {
	if len(fields) != 4 {
		return parseErrorf(line, "address: want 3 arguments, got %d", len(fields)-1)
	}
	hostname, peer, addr := fields[1], fields[2], fields[3]
	node, ok := t.Nodes[hostname]
	if !ok {
		return parseErrorf(line, "address: unknown node %q", hostname)
	}
	if _, ok := t.Nodes[peer]; !ok {
		return parseErrorf(line, "address: unknown peer node %q", peer)
	}
	node.AddLocalAddress(addr)
	if t.Addresses[hostname] == nil {
		t.Addresses[hostname] = map[string]string{}
	}
	t.Addresses[hostname][peer] = addr
	return nil
}

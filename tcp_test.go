package netsim

import (
	"bufio"
	"bytes"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTopology wires two nodes with a symmetric pair of one-hop links,
// the reference topology used throughout spec.md §8's scenarios.
type testTopology struct {
	scheduler *Scheduler
	a, b      *Node
	ab, ba    *Link
}

func newTestTopology(t *testing.T, cfg LinkConfig) *testTopology {
	t.Helper()
	s := NewScheduler()
	a := NewNode("a", nil)
	b := NewNode("b", nil)
	a.AddLocalAddress("a")
	b.AddLocalAddress("b")

	ab := NewLink(s, a, b, cfg)
	ba := NewLink(s, b, a, cfg)
	a.AttachLink(ab)
	b.AttachLink(ba)
	a.AddForwardingEntry("b", ab)
	b.AddForwardingEntry("a", ba)

	return &testTopology{scheduler: s, a: a, b: b, ab: ab, ba: ba}
}

type collectingApp struct {
	buf bytes.Buffer
}

func (c *collectingApp) ReceiveData(data []byte) { c.buf.Write(data) }

// countTraceKind counts lines in a canonical sequence trace matching
// the given (dropped, ack) flags.
func countTraceKind(trace string, dropped, ack bool) int {
	want := " " + boolDigit(dropped) + " " + boolDigit(ack)
	n := 0
	sc := bufio.NewScanner(strings.NewReader(trace))
	for sc.Scan() {
		line := sc.Text()
		if strings.HasSuffix(line, want) {
			n++
		}
	}
	return n
}

// TestCleanTransfer covers scenario 1 in §8.
func TestCleanTransfer(t *testing.T) {
	top := newTestTopology(t, LinkConfig{Bandwidth: 1e6, Propagation: 0.001})
	var trace bytes.Buffer
	top.ab.SetTrace(NewSequenceTraceWriter(&trace))

	app := &collectingApp{}
	NewTCP(top.scheduler, TCPConfig{
		Node: top.b, SourceAddress: "b", SourcePort: 1,
		DestinationAddress: "a", DestinationPort: 1,
		App: app,
	})
	client := NewTCP(top.scheduler, TCPConfig{
		Node: top.a, SourceAddress: "a", SourcePort: 1,
		DestinationAddress: "b", DestinationPort: 1,
	})

	payload := bytes.Repeat([]byte("x"), 5000)
	client.Send(payload)
	top.scheduler.Run()

	assert.Equal(t, payload, app.buf.Bytes())
	assert.Equal(t, 5000, client.Sequence())
	assert.Equal(t, 5, countTraceKind(trace.String(), false, false))
}

// TestFastRetransmit covers scenario 2 in §8: drop the segment at
// sequence=2000 exactly once, expect the 3rd duplicate ACK to trigger
// a fast retransmit that halves ssthresh and resets window to MSS.
func TestFastRetransmit(t *testing.T) {
	dropped := false
	top := newTestTopology(t, LinkConfig{
		Bandwidth: 1e6, Propagation: 0.001,
		Drop: func(p *Packet) bool {
			if !dropped && p.IsData() && p.Sequence == 2000 {
				dropped = true
				return true
			}
			return false
		},
	})

	app := &collectingApp{}
	NewTCP(top.scheduler, TCPConfig{
		Node: top.b, SourceAddress: "b", SourcePort: 1,
		DestinationAddress: "a", DestinationPort: 1,
		App: app,
	})
	client := NewTCP(top.scheduler, TCPConfig{
		Node: top.a, SourceAddress: "a", SourcePort: 1,
		DestinationAddress: "b", DestinationPort: 1,
		InitialWindow: 5000, InitialThreshold: 100000,
	})

	payload := bytes.Repeat([]byte("y"), 5000)
	client.Send(payload)
	top.scheduler.Run()

	require.True(t, dropped)
	assert.Equal(t, payload, app.buf.Bytes())
	assert.Equal(t, 5000, client.Sequence())
	// a loss event must have fired at least once: ssthresh can never
	// exceed the window that was in flight when the loss occurred.
	assert.LessOrEqual(t, client.Threshold(), 5000)
}

// TestTimeoutDrivenRetransmission covers scenario 3 in §8: the segment
// at sequence=0 is dropped indefinitely until two timeouts occur, then
// let through; RTO must have doubled at least once.
func TestTimeoutDrivenRetransmission(t *testing.T) {
	attempts := 0
	top := newTestTopology(t, LinkConfig{
		Bandwidth: 1e6, Propagation: 0.001,
		Drop: func(p *Packet) bool {
			if p.IsData() && p.Sequence == 0 {
				attempts++
				return attempts <= 2
			}
			return false
		},
	})

	app := &collectingApp{}
	NewTCP(top.scheduler, TCPConfig{
		Node: top.b, SourceAddress: "b", SourcePort: 1,
		DestinationAddress: "a", DestinationPort: 1,
		App: app,
	})
	client := NewTCP(top.scheduler, TCPConfig{
		Node: top.a, SourceAddress: "a", SourcePort: 1,
		DestinationAddress: "b", DestinationPort: 1,
	})

	client.Send([]byte("abcd"))
	top.scheduler.Run()

	assert.Equal(t, []byte("abcd"), app.buf.Bytes())
	assert.GreaterOrEqual(t, attempts, 3)
	assert.Greater(t, client.rtt.rto, initialRTO)
}

// TestConcurrentFlows covers scenario 4 in §8: five TCP connections
// between the same node pair, staggered start delays, small loss rate;
// all five must arrive byte-identical and the scheduler must terminate.
func TestConcurrentFlows(t *testing.T) {
	top := newTestTopology(t, LinkConfig{Bandwidth: 1e6, Propagation: 0.001, Loss: 0.01})
	top.ab.SetRand(rand.New(rand.NewSource(1)))
	top.ba.SetRand(rand.New(rand.NewSource(2)))

	const flows = 5
	payload := bytes.Repeat([]byte("z"), 10000)
	apps := make([]*collectingApp, flows)
	clients := make([]*TCP, flows)

	for i := 0; i < flows; i++ {
		apps[i] = &collectingApp{}
		NewTCP(top.scheduler, TCPConfig{
			Node: top.b, SourceAddress: "b", SourcePort: i + 1,
			DestinationAddress: "a", DestinationPort: i + 1,
			App: apps[i],
		})
		clients[i] = NewTCP(top.scheduler, TCPConfig{
			Node: top.a, SourceAddress: "a", SourcePort: i + 1,
			DestinationAddress: "b", DestinationPort: i + 1,
		})
	}

	for i, c := range clients {
		c := c
		top.scheduler.Add(float64(i)*0.1, nil, func(*Event) { c.Send(payload) })
	}
	top.scheduler.Run()

	for i := 0; i < flows; i++ {
		assert.Equal(t, payload, apps[i].buf.Bytes(), "flow "+strconv.Itoa(i))
	}
}

// TestQueueOverflowRecovers covers scenario 5 in §8: a slow, small
// queue with two senders pushing segments back to back drops some
// segments to queue overflow, and retransmission recovers them all.
func TestQueueOverflowRecovers(t *testing.T) {
	top := newTestTopology(t, LinkConfig{Bandwidth: 100_000, Propagation: 0.001, QueueSize: 3})

	appA := &collectingApp{}
	appB := &collectingApp{}
	NewTCP(top.scheduler, TCPConfig{
		Node: top.b, SourceAddress: "b", SourcePort: 1,
		DestinationAddress: "a", DestinationPort: 1, App: appA,
	})
	client1 := NewTCP(top.scheduler, TCPConfig{
		Node: top.a, SourceAddress: "a", SourcePort: 1,
		DestinationAddress: "b", DestinationPort: 1,
	})
	NewTCP(top.scheduler, TCPConfig{
		Node: top.b, SourceAddress: "b", SourcePort: 2,
		DestinationAddress: "a", DestinationPort: 2, App: appB,
	})
	client2 := NewTCP(top.scheduler, TCPConfig{
		Node: top.a, SourceAddress: "a", SourcePort: 2,
		DestinationAddress: "b", DestinationPort: 2,
	})

	p1 := bytes.Repeat([]byte("1"), 20000)
	p2 := bytes.Repeat([]byte("2"), 20000)
	client1.Send(p1)
	client2.Send(p2)
	top.scheduler.Run()

	assert.Equal(t, p1, appA.buf.Bytes())
	assert.Equal(t, p2, appB.buf.Bytes())
}

package topology

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbpontius/lab4-CS460"
)

const sample = `
# reference two-node topology
node a
node b
link a b bandwidth=1000000 propagation=0.01 queue_size=32 loss=0.02
address a b 10.0.0.1
address b a 10.0.0.2
`

func TestLoadWiresForwardingAndAddresses(t *testing.T) {
	s := netsim.NewScheduler()
	top, err := Load(strings.NewReader(sample), s)
	require.NoError(t, err)

	require.Contains(t, top.Nodes, "a")
	require.Contains(t, top.Nodes, "b")
	assert.Len(t, top.Links, 2)

	p := &netsim.Packet{DestinationAddress: "10.0.0.2", Sequence: 0, Body: []byte("x")}
	top.Nodes["a"].Send(p) // must not warn "no route": forwarding was wired from the address lines
}

func TestLoadRejectsUnknownDirective(t *testing.T) {
	s := netsim.NewScheduler()
	_, err := Load(strings.NewReader("bogus line\n"), s)
	require.ErrorIs(t, err, ErrParse)
}

func TestLoadRejectsDuplicateNode(t *testing.T) {
	s := netsim.NewScheduler()
	_, err := Load(strings.NewReader("node a\nnode a\n"), s)
	require.ErrorIs(t, err, ErrParse)
}

func TestLoadRejectsLinkToUnknownNode(t *testing.T) {
	s := netsim.NewScheduler()
	_, err := Load(strings.NewReader("node a\nlink a b\n"), s)
	require.ErrorIs(t, err, ErrParse)
}

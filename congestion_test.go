package netsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCongestionControllerSlowStartAddsBytesPerAck(t *testing.T) {
	c := newCongestionController(1000, 100000)
	c.onAck(1000)
	assert.Equal(t, 2000, c.window)
	c.onAck(1000)
	assert.Equal(t, 3000, c.window)
}

func TestCongestionControllerAvoidanceIsApproximatelyOnePerRTT(t *testing.T) {
	c := newCongestionController(1000, 2000)
	c.window = 2000 // at threshold: congestion avoidance
	for i := 0; i < 2; i++ {
		c.onAck(1000) // two 1000-byte acks at window=2000 -> fraction reaches mss once
	}
	assert.Equal(t, 3000, c.window)
}

func TestCongestionControllerLossEventHalvesAndResets(t *testing.T) {
	c := newCongestionController(1000, 2000)
	c.window = 8000
	c.fraction = 500
	c.onLoss()

	assert.Equal(t, 4000, c.threshold)
	assert.Equal(t, 1000, c.window)
	assert.Equal(t, 0.0, c.fraction)
}

func TestCongestionControllerLossEventFloorsAtMSS(t *testing.T) {
	c := newCongestionController(1000, 2000)
	c.window = 1500 // window/2 == 750 < mss
	c.onLoss()

	assert.Equal(t, 1000, c.threshold)
	assert.Equal(t, 1000, c.window)
}

package netsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRTTEstimatorFirstSample covers scenario 6 in §8: a first RTT
// sample of 0.2s yields srtt=0.2, rttvar=0.1, rto=0.6, clamped to
// [1,60] -> 1.
func TestRTTEstimatorFirstSample(t *testing.T) {
	e := newRTTEstimator(0, 0)
	e.sample(0.2)

	assert.InDelta(t, 0.2, e.srtt, 1e-9)
	assert.InDelta(t, 0.1, e.rttvar, 1e-9)
	assert.Equal(t, 1.0, e.rto)
}

func TestRTTEstimatorSubsequentSample(t *testing.T) {
	e := newRTTEstimator(0, 0)
	e.sample(0.2)
	e.sample(0.3)

	wantRTTVar := 0.75*0.1 + 0.25*0.1
	wantSRTT := 0.875*0.2 + 0.125*0.3
	assert.InDelta(t, wantRTTVar, e.rttvar, 1e-9)
	assert.InDelta(t, wantSRTT, e.srtt, 1e-9)
	assert.InDelta(t, wantSRTT+4*wantRTTVar, e.rto, 1e-9)
}

func TestRTTEstimatorBackoffDoublesAndClamps(t *testing.T) {
	e := newRTTEstimator(1, 60)
	e.rto = 40
	e.backoff()
	assert.Equal(t, 60.0, e.rto) // 80 clamped to 60

	e.rto = 0.6
	e.backoff()
	assert.Equal(t, 1.2, e.rto)
}

func TestRTTEstimatorRespectsBounds(t *testing.T) {
	e := newRTTEstimator(2, 10)
	e.sample(0.01)
	assert.Equal(t, 2.0, e.rto)
}

package netsim

//
// RFC 6298-style round-trip time estimator
//

import "time"

const (
	// rttK is the RFC 6298 RTO multiplier applied to RTTVAR.
	rttK = 4.0

	// rttAlpha is the SRTT smoothing factor.
	rttAlpha = 0.125

	// rttBeta is the RTTVAR smoothing factor.
	rttBeta = 0.25

	// defaultRTOMin is the floor applied to RTO after every update.
	defaultRTOMin = 1.0

	// defaultRTOMax is the ceiling applied to RTO after every update.
	defaultRTOMax = 60.0

	// initialRTO is the RTO used before the first sample is taken.
	initialRTO = 3.0
)

// rttEstimator tracks SRTT, RTTVAR, and RTO per RFC 6298. The zero
// value is not ready to use; construct with newRTTEstimator.
type rttEstimator struct {
	initialized bool
	srtt        float64
	rttvar      float64
	rto         float64
	rtoMin      float64
	rtoMax      float64
}

// newRTTEstimator creates an estimator with the initial RTO and the
// given bounds. Passing zero for either bound uses the RFC 6298
// defaults (1s / 60s).
func newRTTEstimator(rtoMin, rtoMax float64) *rttEstimator {
	if rtoMin <= 0 {
		rtoMin = defaultRTOMin
	}
	if rtoMax <= 0 {
		rtoMax = defaultRTOMax
	}
	return &rttEstimator{
		rto:    initialRTO,
		rtoMin: rtoMin,
		rtoMax: rtoMax,
	}
}

// sample feeds a new RTT measurement R, in seconds, into the
// estimator. Callers must not invoke this for segments covered by
// Karn's algorithm (retransmitted segments); see [TCP].
func (e *rttEstimator) sample(r float64) {
	if !e.initialized {
		e.srtt = r
		e.rttvar = r / 2
		e.initialized = true
	} else {
		e.rttvar = (1-rttBeta)*e.rttvar + rttBeta*absFloat(e.srtt-r)
		e.srtt = (1-rttAlpha)*e.srtt + rttAlpha*r
	}
	e.rto = e.srtt + rttK*e.rttvar
	e.clamp()
}

// backoff doubles RTO (exponential backoff on retransmission) and
// clamps it to [rtoMin, rtoMax].
func (e *rttEstimator) backoff() {
	e.rto *= 2
	e.clamp()
}

func (e *rttEstimator) clamp() {
	if e.rto < e.rtoMin {
		e.rto = e.rtoMin
	} else if e.rto > e.rtoMax {
		e.rto = e.rtoMax
	}
}

// rtoSeconds returns the current RTO in seconds, for scheduling.
func (e *rttEstimator) rtoSeconds() float64 {
	return e.rto
}

// rtoDuration returns the current RTO as a [time.Duration], for
// metrics export.
func (e *rttEstimator) rtoDuration() time.Duration {
	return time.Duration(e.rto * float64(time.Second))
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

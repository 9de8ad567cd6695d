package netsim

//
// Reno-style congestion control
//

// congestionController tracks the sender's congestion window (cwnd),
// slow-start threshold (ssthresh), and the fractional byte-increase
// accumulator used to approximate "one MSS per RTT" during congestion
// avoidance without floating-point window sizes. The zero value is not
// ready to use; construct with newCongestionController.
type congestionController struct {
	mss       int
	window    int
	threshold int
	fraction  float64
}

// newCongestionController creates a controller with window == mss
// (standard slow-start entry point) and the given initial threshold.
func newCongestionController(mss, threshold int) *congestionController {
	return &congestionController{
		mss:       mss,
		window:    mss,
		threshold: threshold,
	}
}

// onAck updates cwnd for ackedBytes newly confirmed bytes, applying
// slow start while window < threshold and congestion avoidance
// otherwise.
func (c *congestionController) onAck(ackedBytes int) {
	if c.window < c.threshold {
		c.window += ackedBytes
		return
	}
	c.fraction += float64(c.mss) * float64(ackedBytes) / float64(c.window)
	for c.fraction >= float64(c.mss) {
		c.fraction -= float64(c.mss)
		c.window += c.mss
	}
}

// onLoss executes a loss event (timeout or three duplicate ACKs):
// ssthresh := max(window/2, mss); window := mss; the fractional
// accumulator is cleared.
func (c *congestionController) onLoss() {
	half := c.window / 2
	if half < c.mss {
		half = c.mss
	}
	c.threshold = half
	c.window = c.mss
	c.fraction = 0
}

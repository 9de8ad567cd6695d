// Package metrics implements [netsim.Recorder] with Prometheus
// counters and gauges, served over /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kbpontius/lab4-CS460"
)

// Prometheus implements [netsim.Recorder] and registers its own
// collectors, mirroring the exporter wiring in the pack's
// go-tcpinfo-derived exporter command.
type Prometheus struct {
	packetsSent         prometheus.Counter
	packetsDropped      *prometheus.CounterVec
	packetsRetransmitted prometheus.Counter
	congestionWindow    prometheus.Gauge
	rttSeconds          prometheus.Histogram
}

// NewPrometheus constructs and registers a [Prometheus] recorder
// against reg. Pass prometheus.DefaultRegisterer for process-global
// registration.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		packetsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netsim_packets_sent_total",
			Help: "Packets handed to a link for transmission.",
		}),
		packetsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netsim_packets_dropped_total",
			Help: "Packets dropped by a link, labeled by reason.",
		}, []string{"reason"}),
		packetsRetransmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netsim_packets_retransmitted_total",
			Help: "Segments retransmitted by a TCP connection.",
		}),
		congestionWindow: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netsim_congestion_window_bytes",
			Help: "Most recent congestion window sample, in bytes.",
		}),
		rttSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "netsim_rtt_seconds",
			Help:    "Observed round-trip-time samples.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(p.packetsSent, p.packetsDropped, p.packetsRetransmitted,
		p.congestionWindow, p.rttSeconds)
	return p
}

// PacketSent implements [netsim.Recorder].
func (p *Prometheus) PacketSent() { p.packetsSent.Inc() }

// PacketDropped implements [netsim.Recorder].
func (p *Prometheus) PacketDropped(reason netsim.DropReason) {
	p.packetsDropped.WithLabelValues(reason.String()).Inc()
}

// PacketRetransmitted implements [netsim.Recorder].
func (p *Prometheus) PacketRetransmitted() { p.packetsRetransmitted.Inc() }

// CongestionWindowSample implements [netsim.Recorder].
func (p *Prometheus) CongestionWindowSample(bytes int) {
	p.congestionWindow.Set(float64(bytes))
}

// RTTSample implements [netsim.Recorder].
func (p *Prometheus) RTTSample(d time.Duration) {
	p.rttSeconds.Observe(d.Seconds())
}

// Serve starts an HTTP server exposing /metrics on addr. It blocks
// until the server stops and is meant to be run in its own goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}

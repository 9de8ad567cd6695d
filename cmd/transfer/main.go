// Command transfer drives one or more simulated TCP transfers over a
// lossy link, the Go-native replay of project/examples/transfer.py.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"
	"github.com/spf13/cobra"

	"github.com/kbpontius/lab4-CS460"
	"github.com/kbpontius/lab4-CS460/metrics"
	"github.com/kbpontius/lab4-CS460/sink"
	"github.com/kbpontius/lab4-CS460/topology"
)

func main() {
	log.SetHandler(cli.Default)
	if err := newRootCommand().Execute(); err != nil {
		log.WithError(err).Error("transfer failed")
		os.Exit(1)
	}
}

type options struct {
	filename    string
	loss        float64
	topology    string
	flows       int
	metricsAddr string
	outdir      string
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Simulate one or more TCP transfers over a lossy link",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.filename, "filename", "", "file to transfer (required)")
	flags.Float64Var(&opts.loss, "loss", 0, "independent per-packet loss rate on the link")
	flags.StringVar(&opts.topology, "topology", "", "topology file (defaults to a built-in two-node link)")
	flags.IntVar(&opts.flows, "flows", 1, "number of staggered concurrent flows")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address")
	flags.StringVar(&opts.outdir, "outdir", "received", "directory received files are written to")
	cmd.MarkFlagRequired("filename")
	return cmd
}

// endpoints is the (scheduler, node-pair, address-pair) a transfer runs
// over, built either from --topology or from a built-in default.
type endpoints struct {
	scheduler          *netsim.Scheduler
	a, b               *netsim.Node
	addrA, addrB       string
}

func buildEndpoints(opts *options, recorder netsim.Recorder) (*endpoints, error) {
	scheduler := netsim.NewScheduler()

	if opts.topology == "" {
		a := netsim.NewNode("a", log.Log)
		b := netsim.NewNode("b", log.Log)
		a.AddLocalAddress("a")
		b.AddLocalAddress("b")
		linkCfg := netsim.LinkConfig{
			Bandwidth: 1e6, Propagation: 0.01, QueueSize: 64,
			Loss: opts.loss, Recorder: recorder, Logger: log.Log,
		}
		ab := netsim.NewLink(scheduler, a, b, linkCfg)
		ba := netsim.NewLink(scheduler, b, a, linkCfg)
		ab.SetRand(rand.New(rand.NewSource(1)))
		ba.SetRand(rand.New(rand.NewSource(2)))
		a.AttachLink(ab)
		b.AttachLink(ba)
		a.AddForwardingEntry("b", ab)
		b.AddForwardingEntry("a", ba)
		return &endpoints{scheduler: scheduler, a: a, b: b, addrA: "a", addrB: "b"}, nil
	}

	f, err := os.Open(opts.topology)
	if err != nil {
		return nil, fmt.Errorf("transfer: open topology %s: %w", opts.topology, err)
	}
	defer f.Close()
	top, err := topology.Load(f, scheduler)
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}
	a, ok := top.Nodes["a"]
	if !ok {
		return nil, fmt.Errorf("transfer: topology %s: missing node \"a\"", opts.topology)
	}
	b, ok := top.Nodes["b"]
	if !ok {
		return nil, fmt.Errorf("transfer: topology %s: missing node \"b\"", opts.topology)
	}
	addrA, ok := top.Addresses["a"]["b"]
	if !ok {
		return nil, fmt.Errorf("transfer: topology %s: missing \"address a b ...\"", opts.topology)
	}
	addrB, ok := top.Addresses["b"]["a"]
	if !ok {
		return nil, fmt.Errorf("transfer: topology %s: missing \"address b a ...\"", opts.topology)
	}
	return &endpoints{scheduler: scheduler, a: a, b: b, addrA: addrA, addrB: addrB}, nil
}

func run(opts *options) error {
	payload, err := os.ReadFile(opts.filename)
	if err != nil {
		return fmt.Errorf("transfer: read %s: %w", opts.filename, err)
	}

	var recorder netsim.Recorder = netsim.NoopRecorder{}
	if opts.metricsAddr != "" {
		prom := metrics.NewPrometheus(prometheus.DefaultRegisterer)
		recorder = prom
		go func() {
			if err := metrics.Serve(opts.metricsAddr); err != nil {
				log.WithError(err).Warn("metrics server stopped")
			}
		}()
	}

	ep, err := buildEndpoints(opts, recorder)
	if err != nil {
		return err
	}

	runID := xid.New().String()
	if err := os.MkdirAll(opts.outdir, 0o755); err != nil {
		return fmt.Errorf("transfer: mkdir %s: %w", opts.outdir, err)
	}

	clients := make([]*netsim.TCP, opts.flows)
	for i := 0; i < opts.flows; i++ {
		name := fmt.Sprintf("%s-%d%s", runID, i, filepath.Ext(opts.filename))
		fs, err := sink.NewFileSink(opts.outdir, name, log.Log)
		if err != nil {
			return err
		}
		netsim.NewTCP(ep.scheduler, netsim.TCPConfig{
			Node: ep.b, SourceAddress: ep.addrB, SourcePort: i + 1,
			DestinationAddress: ep.addrA, DestinationPort: i + 1,
			App: fs, Recorder: recorder, Logger: log.Log,
		})
		clients[i] = netsim.NewTCP(ep.scheduler, netsim.TCPConfig{
			Node: ep.a, SourceAddress: ep.addrA, SourcePort: i + 1,
			DestinationAddress: ep.addrB, DestinationPort: i + 1,
			Recorder: recorder, Logger: log.Log,
		})
	}

	for i, c := range clients {
		i, c := i, c
		_, err := ep.scheduler.Add(float64(i)*0.1, nil, func(*netsim.Event) {
			log.Infof("transfer: flow %d: sending %d bytes", i, len(payload))
			c.Send(payload)
		})
		if err != nil {
			return fmt.Errorf("transfer: schedule flow %d: %w", i, err)
		}
	}

	ep.scheduler.Run()
	log.Infof("transfer: completed %d flow(s), run=%s", opts.flows, runID)
	return nil
}

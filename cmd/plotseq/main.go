// Command plotseq renders a sequence-trace file as a scatter plot,
// the Go-native analogue of plot-sequence.py: dropped segments as
// crosses, ACKs as small dots, data sends as squares.
package main

import (
	"bufio"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "plotseq:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var file, out string
	cmd := &cobra.Command{
		Use:   "plotseq",
		Short: "Plot a sequence trace produced by netsim.SequenceTraceWriter",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(file, out)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&file, "file", "", "trace file to plot (required)")
	flags.StringVar(&out, "out", "sequence.png", "output image path")
	cmd.MarkFlagRequired("file")
	return cmd
}

type sample struct {
	time     float64
	sequence float64
}

func run(file, out string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("plotseq: open %s: %w", file, err)
	}
	defer f.Close()

	var sent, dropped, acked plotter.XYs
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 4 {
			continue
		}
		s, err := parseSample(fields)
		if err != nil {
			return fmt.Errorf("plotseq: %s: %w", file, err)
		}
		pt := plotter.XY{X: s.time, Y: s.sequence}
		switch {
		case fields[2] == "1":
			dropped = append(dropped, pt)
		case fields[3] == "1":
			acked = append(acked, pt)
		default:
			sent = append(sent, pt)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("plotseq: %s: %w", file, err)
	}

	p := plot.New()
	p.Title.Text = "Sequence trace"
	p.X.Label.Text = "simulated time (s)"
	p.Y.Label.Text = "sequence number"

	if err := addSeries(p, sent, draw.SquareGlyph{}, color.RGBA{B: 200, A: 255}); err != nil {
		return err
	}
	if err := addSeries(p, acked, draw.CircleGlyph{}, color.RGBA{G: 150, A: 255}); err != nil {
		return err
	}
	if err := addSeries(p, dropped, draw.CrossGlyph{}, color.RGBA{R: 200, A: 255}); err != nil {
		return err
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, out); err != nil {
		return fmt.Errorf("plotseq: save %s: %w", out, err)
	}
	return nil
}

func addSeries(p *plot.Plot, xys plotter.XYs, shape draw.GlyphDrawer, c color.Color) error {
	if len(xys) == 0 {
		return nil
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("plotseq: build scatter: %w", err)
	}
	s.GlyphStyle.Shape = shape
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = vg.Points(2)
	p.Add(s)
	return nil
}

func parseSample(fields []string) (sample, error) {
	t, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return sample{}, fmt.Errorf("bad time %q: %w", fields[0], err)
	}
	seq, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return sample{}, fmt.Errorf("bad sequence %q: %w", fields[1], err)
	}
	return sample{time: t, sequence: seq}, nil
}

// Command compare reads one or more sequence-trace files and prints
// summary statistics for each, the Go-native analogue of the
// per-experiment comparison scripts named in the original project.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/montanaflynn/stats"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "compare:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var traces []string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Summarize and compare sequence-trace files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(traces)
		},
	}
	cmd.Flags().StringArrayVar(&traces, "trace", nil, "trace file to summarize (repeatable)")
	cmd.MarkFlagRequired("trace")
	return cmd
}

type summary struct {
	path                string
	dataSegments        int
	retransmissions     int
	acks                int
	completionTime      float64
	meanInterAckGap     float64
	medianInterAckGap   float64
	stddevInterAckGap   float64
}

func run(paths []string) error {
	summaries := make([]summary, 0, len(paths))
	for _, path := range paths {
		s, err := summarize(path)
		if err != nil {
			return err
		}
		summaries = append(summaries, s)
	}
	printSummaries(summaries)
	return nil
}

func summarize(path string) (summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return summary{}, fmt.Errorf("compare: open %s: %w", path, err)
	}
	defer f.Close()

	s := summary{path: path}
	seen := map[int]bool{}
	var ackTimes []float64

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 4 {
			continue
		}
		t, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return summary{}, fmt.Errorf("compare: %s: bad time %q: %w", path, fields[0], err)
		}
		seq, err := strconv.Atoi(fields[1])
		if err != nil {
			return summary{}, fmt.Errorf("compare: %s: bad sequence %q: %w", path, fields[1], err)
		}
		if t > s.completionTime {
			s.completionTime = t
		}
		switch {
		case fields[2] == "1":
			// dropped: nothing else to tally here.
		case fields[3] == "1":
			s.acks++
			ackTimes = append(ackTimes, t)
		default:
			s.dataSegments++
			if seen[seq] {
				s.retransmissions++
			}
			seen[seq] = true
		}
	}
	if err := sc.Err(); err != nil {
		return summary{}, fmt.Errorf("compare: %s: %w", path, err)
	}

	gaps := interArrivalGaps(ackTimes)
	if len(gaps) > 0 {
		s.meanInterAckGap, _ = stats.Mean(gaps)
		s.medianInterAckGap, _ = stats.Median(gaps)
		s.stddevInterAckGap, _ = stats.StandardDeviation(gaps)
	}
	return s, nil
}

func interArrivalGaps(times []float64) []float64 {
	if len(times) < 2 {
		return nil
	}
	gaps := make([]float64, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		gaps = append(gaps, times[i]-times[i-1])
	}
	return gaps
}

func printSummaries(summaries []summary) {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "trace\tcompletion(s)\tdata segs\tretransmits\tacks\tmean gap\tmedian gap\tstddev gap")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%.4f\t%d\t%d\t%d\t%.4f\t%.4f\t%.4f\n",
			s.path, s.completionTime, s.dataSegments, s.retransmissions, s.acks,
			s.meanInterAckGap, s.medianInterAckGap, s.stddevInterAckGap)
	}
	w.Flush()
}

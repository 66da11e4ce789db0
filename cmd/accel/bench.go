package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/born-ml/accel/internal/samples"
	"github.com/born-ml/accel/workdiv"
)

type benchOptions struct {
	acc         string
	kernel      string
	n           int
	threadElems int
	reps        int
	maxThreads  int
}

func newBenchCmd() *cobra.Command {
	o := &benchOptions{}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time a sample kernel over increasing block sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd)
		},
	}
	cmd.Flags().StringVar(&o.acc, "acc", "threads", "Accelerator variant")
	cmd.Flags().StringVar(&o.kernel, "kernel", "vecadd", "Sample kernel")
	cmd.Flags().IntVar(&o.n, "n", 1<<18, "Problem size")
	cmd.Flags().IntVar(&o.threadElems, "thread-elems", 16, "Elements per thread")
	cmd.Flags().IntVar(&o.reps, "reps", 3, "Repetitions per block size; the fastest is kept")
	cmd.Flags().IntVar(&o.maxThreads, "max-block-threads", 1024, "Largest block thread count tried")
	return cmd
}

// point is the best time for one block size.
type point struct {
	blockThreads int
	elapsed      time.Duration
}

func (o *benchOptions) run(cmd *cobra.Command) error {
	points, err := o.sweep(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	data := make([]float64, len(points))
	for i, p := range points {
		data[i] = float64(p.elapsed.Microseconds())
		fmt.Fprintf(out, "block threads %5d  %10s\n", p.blockThreads, p.elapsed)
	}
	if len(data) > 1 {
		fmt.Fprintln(out, asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("%s/%s: microseconds per launch, block threads 1..%d", o.acc, o.kernel, points[len(points)-1].blockThreads)),
		))
	}
	return nil
}

// sweep doubles the block thread count from 1 until the variant rejects it
// or maxThreads is reached.
func (o *benchOptions) sweep(cmd *cobra.Command) ([]point, error) {
	var points []point
	for bt := 1; bt <= o.maxThreads; bt *= 2 {
		r := samples.Request{Acc: o.acc, Kernel: o.kernel, N: o.n, BlockThreads: bt, ThreadElems: o.threadElems}
		best := time.Duration(0)
		for range max(o.reps, 1) {
			rep, err := samples.Run(cmd.Context(), r)
			if errors.Is(err, workdiv.ErrInvalid) && len(points) > 0 {
				return points, nil
			}
			if err != nil {
				return nil, err
			}
			if !rep.OK {
				return nil, fmt.Errorf("%s: result check failed at %d block threads: %s", o.kernel, bt, rep.Result)
			}
			if best == 0 || rep.Elapsed < best {
				best = rep.Elapsed
			}
		}
		points = append(points, point{blockThreads: bt, elapsed: best})
	}
	return points, nil
}

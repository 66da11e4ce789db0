package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/born-ml/accel/internal/samples"
)

func newRunCmd() *cobra.Command {
	var r samples.Request
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a sample kernel on one accelerator",
		Long: fmt.Sprintf(`Runs a sample kernel and checks its output against a host-side reference.

Accelerators: %s
Kernels:      %s`, strings.Join(samples.Accs, ", "), strings.Join(samples.Kernels, ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep, err := samples.Run(cmd.Context(), r)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s on %s\n", rep.Acc, rep.Device)
			fmt.Fprintf(out, "  work div: %s\n", rep.WorkDiv)
			fmt.Fprintf(out, "  elapsed:  %s\n", rep.Elapsed)
			fmt.Fprintf(out, "  result:   %s\n", rep.Result)
			if !rep.OK {
				return fmt.Errorf("%s: result check failed: %s", r.Kernel, rep.Result)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&r.Acc, "acc", "threads", "Accelerator variant")
	cmd.Flags().StringVar(&r.Kernel, "kernel", "vecadd", "Sample kernel")
	cmd.Flags().IntVar(&r.N, "n", 1<<16, "Problem size")
	cmd.Flags().IntVar(&r.BlockThreads, "block-threads", 0, "Block thread count (0 chooses automatically)")
	cmd.Flags().IntVar(&r.ThreadElems, "thread-elems", 1, "Elements per thread")
	cmd.Flags().Uint64Var(&r.Seed, "seed", 42, "Random seed (pi)")
	return cmd
}

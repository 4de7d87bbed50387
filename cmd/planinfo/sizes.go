package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-dft/dft/transform"
)

func newSizesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sizes N...",
		Short: "Print input and output buffer sizes for each capability",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lengths, err := parseLengths(args)
			if err != nil {
				return err
			}
			return printSizes(cmd.OutOrStdout(), lengths)
		},
	}
}

// capabilityFor returns the capability and input capacity that give a
// transform of length n.
func capabilityFor(kind transform.Kind, n int) (transform.Capability, int) {
	c := transform.NewCapability(kind)
	switch kind {
	case transform.ComplexInverseToComplex, transform.ComplexInverseToReal:
		return c.WithTarget(n), n/2 + 1
	default:
		return c, n
	}
}

func printSizes(w io.Writer, lengths []int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "N\tCapability\tInput\tOutput\n")
	fmt.Fprintf(tw, "-\t----------\t-----\t------\n")

	for _, n := range lengths {
		for _, kind := range transform.Kinds() {
			c, capacity := capabilityFor(kind, n)
			out, err := c.OutputLen(capacity)
			if err != nil {
				return fmt.Errorf("%s n=%d: %w", kind, n, err)
			}
			fmt.Fprintf(tw, "%d\t%s\t%d %s\t%d %s\n",
				n, kind, capacity, c.InputKind(), out, c.OutputKind())
		}
	}
	return tw.Flush()
}

package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"math/rand"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-dft/dft/engine"
	"github.com/cwbudde/algo-dft/dft/transform"
)

// checkTolerance is relative to N, the scale of unnormalised round trips.
const checkTolerance = 1e-9

var errCheckFailed = errors.New("self-check failed")

func newCheckCmd(setup func(*cobra.Command) (*env, error)) *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:   "check N...",
		Short: "Run forward and inverse transforms of each length and compare round trips",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lengths, err := parseLengths(args)
			if err != nil {
				return err
			}
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = e.logger.Sync() }()
			return runCheck(cmd.OutOrStdout(), e, lengths, seed)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 1, "seed for the test signal")
	return cmd
}

type checkResult struct {
	n        int
	realErr  float64
	cmplxErr float64
	fullErr  float64
}

func (r checkResult) worst() float64 {
	return max(r.realErr, r.cmplxErr, r.fullErr)
}

func runCheck(w io.Writer, e *env, lengths []int, seed int64) error {
	rng := rand.New(rand.NewSource(seed))
	opts := []transform.Option{
		transform.WithGateway(e.gateway),
		transform.WithEffort(e.cfg.Effort()),
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "N\tInverse real\tInverse complex\tHermitian\tStatus\n")

	failed := false
	for _, n := range lengths {
		x := make([]float64, n)
		for i := range x {
			x[i] = rng.Float64()*2 - 1
		}
		res, err := checkLength(x, opts)
		if err != nil {
			return fmt.Errorf("n=%d: %w", n, err)
		}

		status := "ok"
		if res.worst() > checkTolerance*float64(max(n, 1)) {
			status = "FAIL"
			failed = true
			e.logger.Warn("round trip out of tolerance",
				zap.Int("length", n), zap.Float64("max_error", res.worst()))
		}
		fmt.Fprintf(tw, "%d\t%.3g\t%.3g\t%.3g\t%s\n", n, res.realErr, res.cmplxErr, res.fullErr, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if err := printMetrics(w, e); err != nil {
		return err
	}
	if stats := e.gateway.Stats(); stats != (engine.Stats{}) {
		return fmt.Errorf("leaked %d buffers and %d plans", stats.LiveBuffers, stats.LivePlans)
	}
	if failed {
		return errCheckFailed
	}
	return nil
}

// checkLength runs x through every capability:
//
//	x -> RealForward -> ComplexInverseToReal         == n*x
//	x -> RealForward -> ComplexInverseToComplex      == n*x
//	x -> ComplexForward                              == Hermitian expansion
func checkLength(x []float64, opts []transform.Option) (checkResult, error) {
	n := len(x)
	res := checkResult{n: n}
	if n == 0 {
		return res, nil
	}

	fwd, err := transform.RealFromSlice(x, opts...)
	if err != nil {
		return res, err
	}
	defer fwd.Close()
	half, ok := fwd.Compute()
	if !ok {
		return res, errors.New("real forward not ready")
	}
	bins := half.Values()

	toReal, err := transform.NewInverseToReal(n, opts...)
	if err != nil {
		return res, err
	}
	defer toReal.Close()
	toReal.MutableInput().PushSlice(bins)
	seq, ok := toReal.Compute()
	if !ok {
		return res, errors.New("inverse to real not ready")
	}
	for i, v := range seq.All() {
		res.realErr = math.Max(res.realErr, math.Abs(v-x[i]*float64(n)))
	}

	toCmplx, err := transform.NewInverseToComplex(len(bins), append(opts, transform.WithTarget(n))...)
	if err != nil {
		return res, err
	}
	defer toCmplx.Close()
	toCmplx.MutableInput().PushSlice(bins)
	cseq, ok := toCmplx.Compute()
	if !ok {
		return res, errors.New("inverse to complex not ready")
	}
	for i, v := range cseq.All() {
		res.cmplxErr = math.Max(res.cmplxErr, cmplx.Abs(v-complex(x[i]*float64(n), 0)))
	}

	cx := make([]complex128, n)
	for i, v := range x {
		cx[i] = complex(v, 0)
	}
	full, err := transform.ComplexFromSlice(cx, opts...)
	if err != nil {
		return res, err
	}
	defer full.Close()
	ref, ok := full.Compute()
	if !ok {
		return res, errors.New("complex forward not ready")
	}
	k := 0
	for v := range transform.Spectrum(fwd) {
		want, _ := ref.At(k)
		res.fullErr = math.Max(res.fullErr, cmplx.Abs(v-want))
		k++
	}
	if k != n {
		return res, fmt.Errorf("hermitian iterator yielded %d of %d bins", k, n)
	}
	return res, nil
}

// printMetrics writes one line per gateway collector, summed over labels.
func printMetrics(w io.Writer, e *env) error {
	families, err := e.registry.Gather()
	if err != nil {
		return err
	}

	lines := make([]string, 0, len(families))
	for _, f := range families {
		total := 0.0
		for _, m := range f.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
		lines = append(lines, fmt.Sprintf("%s %g", f.GetName(), total))
	}
	sort.Strings(lines)

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return nil
}

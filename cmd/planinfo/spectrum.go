package main

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/go-audio/wav"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-dft/dft/spectrum"
	"github.com/cwbudde/algo-dft/dft/transform"
)

var errNotWAV = errors.New("not a valid WAV file")

type spectrumOptions struct {
	size    int
	channel int
	top     int
}

func newSpectrumCmd(setup func(*cobra.Command) (*env, error)) *cobra.Command {
	var opts spectrumOptions

	cmd := &cobra.Command{
		Use:   "spectrum FILE.wav",
		Short: "Print the strongest bins of a WAV file's spectrum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = e.logger.Sync() }()

			clip, err := readWAV(args[0], opts.channel)
			if err != nil {
				return err
			}
			return runSpectrum(cmd.OutOrStdout(), e, clip, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.size, "size", "n", 0, "transform length (0 = whole file)")
	flags.IntVar(&opts.channel, "channel", 0, "channel to analyse")
	flags.IntVarP(&opts.top, "top", "t", 8, "number of bins to print")
	return cmd
}

// clip is one channel of a decoded WAV file, scaled to [-1, 1).
type clip struct {
	samples    []float64
	sampleRate int
}

func readWAV(path string, channel int) (clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return clip{}, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return clip{}, fmt.Errorf("%s: %w", path, errNotWAV)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return clip{}, fmt.Errorf("%s: decode: %w", path, err)
	}

	chans := int(dec.NumChans)
	if chans == 0 || dec.BitDepth == 0 {
		return clip{}, fmt.Errorf("%s: %w", path, errNotWAV)
	}
	if channel < 0 || channel >= chans {
		return clip{}, fmt.Errorf("%s: channel %d out of range, file has %d", path, channel, chans)
	}

	full := float64(int64(1) << (dec.BitDepth - 1))
	frames := len(buf.Data) / chans
	samples := make([]float64, frames)
	for i := range samples {
		samples[i] = float64(buf.Data[i*chans+channel]) / full
	}
	return clip{samples: samples, sampleRate: int(dec.SampleRate)}, nil
}

type bin struct {
	index int
	freq  float64
	mag   float64
}

func runSpectrum(w io.Writer, e *env, c clip, opts spectrumOptions) error {
	n := opts.size
	if n <= 0 || n > len(c.samples) {
		n = len(c.samples)
	}
	if n == 0 {
		return errors.New("no samples to analyse")
	}

	t, err := transform.RealFromSlice(c.samples[:n],
		transform.WithGateway(e.gateway), transform.WithEffort(e.cfg.Effort()))
	if err != nil {
		return err
	}
	defer func() {
		if err := t.Close(); err != nil {
			e.logger.Error("close transform", zap.Error(err))
		}
	}()

	out, ok := t.Compute()
	if !ok {
		return fmt.Errorf("transform of length %d did not compute", n)
	}

	mags := spectrum.Magnitude(out)
	bins := make([]bin, len(mags))
	for k, m := range mags {
		bins[k] = bin{
			index: k,
			freq:  float64(k) * float64(c.sampleRate) / float64(n),
			mag:   m,
		}
	}
	slices.SortStableFunc(bins, func(a, b bin) int { return cmp.Compare(b.mag, a.mag) })

	top := min(max(opts.top, 0), len(bins))
	e.logger.Debug("spectrum computed",
		zap.Int("length", n), zap.Int("sample_rate", c.sampleRate), zap.Int("bins", len(bins)))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Bin\tHz\tMagnitude\n")
	fmt.Fprintf(tw, "---\t--\t---------\n")
	for _, b := range bins[:top] {
		fmt.Fprintf(tw, "%d\t%.1f\t%.4f\n", b.index, b.freq, b.mag)
	}
	return tw.Flush()
}

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-dft/dft/engine"
	"github.com/cwbudde/algo-dft/dft/engine/algoengine"
	"github.com/cwbudde/algo-dft/dft/engine/gonumfft"
	"github.com/cwbudde/algo-dft/internal/config"
	"github.com/cwbudde/algo-dft/internal/logging"
)

type options struct {
	configPath string
	backend    string
	effort     string
	alignment  int
	logLevel   string
	logFormat  string
}

// env is what a subcommand runs against.
type env struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *engine.Metrics
	gateway  *engine.Gateway
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:           "planinfo",
		Short:         "Report DFT buffer sizing, self-check engine backends and analyse WAV files",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVarP(&opts.backend, "backend", "b", "", "engine backend (gonum|algofft)")
	flags.StringVarP(&opts.effort, "effort", "e", "", "planning effort (estimate|measure|patient)")
	flags.IntVar(&opts.alignment, "alignment", 0, "operand alignment in bytes (0 = detect)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format (console|json)")

	setup := func(cmd *cobra.Command) (*env, error) {
		return newEnv(cmd, opts, stderr)
	}
	root.AddCommand(newSizesCmd(), newCheckCmd(setup), newSpectrumCmd(setup))
	return root
}

// loadConfig merges the config file and environment with flags that were
// set explicitly.
func loadConfig(cmd *cobra.Command, opts options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Engine.Backend = opts.backend
	}
	if flags.Changed("effort") {
		cfg.Engine.Effort = opts.effort
	}
	if flags.Changed("alignment") {
		cfg.Engine.Alignment = opts.alignment
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = opts.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newEnv(cmd *cobra.Command, opts options, logOut io.Writer) (*env, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewWithWriter(cfg.Log, logOut)
	if err != nil {
		return nil, err
	}

	eng, err := newEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	metrics := engine.NewMetrics(reg)
	metrics.Init()

	gw := engine.NewGateway(eng, engine.WithLogger(logger), engine.WithMetrics(metrics))
	logger.Debug("gateway ready",
		zap.String("backend", cfg.Engine.Backend),
		zap.Stringer("effort", cfg.Effort()))

	return &env{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		metrics:  metrics,
		gateway:  gw,
	}, nil
}

func newEngine(cfg config.EngineConfig) (engine.Engine, error) {
	switch cfg.Backend {
	case config.BackendGonum:
		return gonumfft.New(gonumfft.WithAlignment(cfg.Alignment)), nil
	case config.BackendAlgoFFT:
		return algoengine.New(algoengine.WithAlignment(cfg.Alignment)), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func parseLengths(args []string) ([]int, error) {
	out := make([]int, 0, len(args))
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid transform length %q", a)
		}
		out = append(out, n)
	}
	return out, nil
}

package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-seq/config"
	"github.com/RyanBlaney/sonido-seq/dataset"
	"github.com/RyanBlaney/sonido-seq/export"
	"github.com/RyanBlaney/sonido-seq/inspect"
	"github.com/RyanBlaney/sonido-seq/logging"
	"github.com/RyanBlaney/sonido-seq/storage"
	"github.com/RyanBlaney/sonido-seq/transcode"
)

var buildFlags struct {
	out        string
	label      string
	blockSize  int
	seqLen     int
	sampleRate int
	plot       bool
}

var buildCmd = &cobra.Command{
	Use:   "build [dir]",
	Short: "Build and export a standardized sequence dataset",
	Long: `Build reads every .wav file directly inside dir (default: the configured
audio_dir), in name order, and writes four artifacts:

  <label>_mean.npy  per-coefficient complex mean of the inputs
  <label>_var.npy   per-coefficient standard deviation of the inputs
  <label>_x.npy     standardized input sequences
  <label>_y.npy     standardized target sequences

Any unreadable file aborts the run before anything is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyBuildFlags(cmd, cfg, args)
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err := newLogger(cmd, cfg)
		if err != nil {
			return err
		}

		ds, err := runBuild(cmd.Context(), cfg, cmd.OutOrStdout(), logger)
		if err != nil {
			return err
		}

		e, s, k := ds.X.Shape()
		logging.Info("Build finished", logging.Fields{
			"label":    cfg.Export.Label,
			"files":    len(ds.Files),
			"examples": e,
		})
		fmt.Fprintf(cmd.OutOrStdout(), "%d files, %d examples of %d x %d coefficients\n",
			len(ds.Files), e, s, k)
		for _, name := range export.ArtifactNames(cfg.Export.Label) {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
		}
		return nil
	},
}

func init() {
	f := buildCmd.Flags()
	f.StringVarP(&buildFlags.out, "out", "o", "", "output directory for the local backend")
	f.StringVarP(&buildFlags.label, "label", "l", "", "artifact base name")
	f.IntVar(&buildFlags.blockSize, "block-size", 0, "samples per block")
	f.IntVar(&buildFlags.seqLen, "seq-len", 0, "blocks per sequence")
	f.IntVar(&buildFlags.sampleRate, "sample-rate", 0, "resample every file to this rate")
	f.BoolVar(&buildFlags.plot, "plot", false, "draw the diagnostic spectra of each file")

	rootCmd.AddCommand(buildCmd)
}

// applyBuildFlags copies explicitly set flags and the directory argument onto cfg
func applyBuildFlags(cmd *cobra.Command, cfg *config.Config, args []string) {
	if len(args) == 1 {
		cfg.AudioDir = args[0]
	}
	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.Export.Dir = buildFlags.out
	}
	if flags.Changed("label") {
		cfg.Export.Label = buildFlags.label
	}
	if flags.Changed("block-size") {
		cfg.BlockSize = buildFlags.blockSize
	}
	if flags.Changed("seq-len") {
		cfg.SeqLen = buildFlags.seqLen
	}
	if flags.Changed("sample-rate") {
		cfg.TargetSampleRate = buildFlags.sampleRate
	}
	if flags.Changed("plot") {
		cfg.Inspect.Enabled = buildFlags.plot
	}
}

// runBuild wires the pipeline described by cfg and exports its result.
// Plots, when enabled, are written to out.
func runBuild(ctx context.Context, cfg *config.Config, out io.Writer, logger logging.Logger) (*dataset.Dataset, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	decoder := transcode.NewWAVDecoder(&transcode.DecoderConfig{
		TargetSampleRate: cfg.TargetSampleRate,
	}, logger)

	opts := []dataset.Option{dataset.WithLogger(logger)}
	if cfg.Inspect.Enabled {
		opts = append(opts, dataset.WithPlotter(inspect.NewTerminalPlotter(out, cfg.Inspect.Width)))
	}

	builder, err := dataset.NewBuilder(dataset.Config{
		BlockSize: cfg.BlockSize,
		SeqLen:    cfg.SeqLen,
		StdFloor:  cfg.StdFloor,
		PadLength: cfg.Inspect.PadLength,
		Decibels:  cfg.Inspect.Decibels,
	}, decoder, opts...)
	if err != nil {
		return nil, err
	}

	ds, err := builder.Build(ctx, cfg.AudioDir)
	if err != nil {
		return nil, err
	}

	exporter := export.NewExporter(store, cfg.Export.Label, logger)
	if err := exporter.Export(ctx, ds.Standardized); err != nil {
		return nil, err
	}
	return ds, nil
}

// newStore opens the export backend named by cfg
func newStore(cfg *config.Config) (storage.FileStore, error) {
	switch cfg.Export.Backend {
	case config.BackendLocal:
		return storage.NewLocal(cfg.Export.Dir)
	case config.BackendS3:
		s3cfg := cfg.Export.S3
		client := storage.NewS3Client(storage.S3Options{
			Region:       s3cfg.Region,
			Endpoint:     s3cfg.Endpoint,
			UsePathStyle: s3cfg.UsePathStyle,
		})
		return storage.NewS3(client, s3cfg.Bucket, s3cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown export backend %q", cfg.Export.Backend)
	}
}

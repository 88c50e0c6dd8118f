package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-seq/inspect"
	"github.com/RyanBlaney/sonido-seq/transcode"
)

var (
	inspectPad int
	inspectDB  bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.wav>",
	Short: "Show a file's waveform and spectra",
	Long: `Inspect decodes one WAV file and draws three curves: the normalized
signal, its power spectrum, and the power spectrum after zero padding.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("pad") {
			cfg.Inspect.PadLength = inspectPad
		}
		if cmd.Flags().Changed("db") {
			cfg.Inspect.Decibels = inspectDB
		}
		logger, err := newLogger(cmd, cfg)
		if err != nil {
			return err
		}

		decoder := transcode.NewWAVDecoder(&transcode.DecoderConfig{
			TargetSampleRate: cfg.TargetSampleRate,
		}, logger)
		w, err := decoder.Decode(cmd.Context(), filepath.Dir(args[0]), filepath.Base(args[0]))
		if err != nil {
			return err
		}

		var opts []inspect.ReportOption
		if cfg.Inspect.Decibels {
			opts = append(opts, inspect.WithDecibels(inspect.DefaultDecibelFloor))
		}
		report, err := inspect.SignalReport(w, cfg.Inspect.PadLength, opts...)
		if err != nil {
			return err
		}
		return report.Show(inspect.NewTerminalPlotter(cmd.OutOrStdout(), cfg.Inspect.Width))
	},
}

func init() {
	inspectCmd.Flags().IntVar(&inspectPad, "pad", 0, "zeros appended before the padded spectrum")
	inspectCmd.Flags().BoolVar(&inspectDB, "db", false, "draw spectra in decibels")
	rootCmd.AddCommand(inspectCmd)
}

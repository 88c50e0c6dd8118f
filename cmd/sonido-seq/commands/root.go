package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-seq/config"
	"github.com/RyanBlaney/sonido-seq/logging"
)

var (
	// Global flags
	configPath string
	logLevel   string
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "sonido-seq",
	Short: "Turn a WAV library into standardized spectral training sequences",
	Long: `sonido-seq - build next-block prediction datasets from raw audio.

Every .wav file in the audio directory is cut into fixed-size blocks, each
block is transformed to the frequency domain, and the blocks are grouped
into sequences whose targets are the same stream shifted by one block.
The sequences are standardized per coefficient and exported as .npy files.

Examples:
  # Build from ./Sample Audio/ with the default constants
  sonido-seq build

  # Custom directory, label and output location
  sonido-seq build ./wavs --label drums --out ./datasets

  # Everything from a config file, overriding the sequence length
  sonido-seq build -c pipeline.yaml --seq-len 20

  # Show the diagnostic spectra of one file
  sonido-seq inspect ./wavs/kick.wav`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. An interrupt cancels the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored log output")
}

// loadConfig returns the configuration file's settings, or the defaults when
// no file was given, with the global flags applied on top.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if noColor {
		cfg.Logging.Color = false
	}
	return cfg, nil
}

// newLogger installs the process logger described by cfg and returns it
// scoped to cmd
func newLogger(cmd *cobra.Command, cfg *config.Config) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	logging.SetGlobalLogger(logging.NewDefaultLogger())
	logging.SetLevel(level)
	if !cfg.Logging.Color {
		logging.DisableColors()
	}

	logging.Debug("Configuration loaded", logging.Fields{
		"config":    configPath,
		"audio_dir": cfg.AudioDir,
		"backend":   cfg.Export.Backend,
	})

	return logging.WithContext(cmd.Context()).WithFields(logging.Fields{
		"command": cmd.Name(),
	}), nil
}

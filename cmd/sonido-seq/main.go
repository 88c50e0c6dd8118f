// Package main provides the sonido-seq CLI.
//
// Usage:
//
//	sonido-seq build [dir] [flags]
//	sonido-seq inspect <file.wav>
//	sonido-seq version
//
// build reads every .wav file directly inside dir, turns it into standardized
// spectral sequences and writes <label>_mean, <label>_var, <label>_x and
// <label>_y as .npy files to the configured backend.
package main

import (
	"os"

	"github.com/RyanBlaney/sonido-seq/cmd/sonido-seq/commands"
	"github.com/RyanBlaney/sonido-seq/logging"
)

func main() {
	if err := commands.Execute(); err != nil {
		logging.Fatal(err, "sonido-seq failed")
		os.Exit(1) // the global logger may be one that does not exit
	}
}

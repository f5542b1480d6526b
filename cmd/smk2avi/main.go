// Command smk2avi converts a Smacker v2 video file to RIFF-AVI.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/floriandotorg/avi2smk"
)

var (
	inputFile  = flag.String("i", "", "input SMK2 file path (required)")
	outputFile = flag.String("o", "output.avi", "output AVI file path")
	quiet      = flag.Bool("q", false, "suppress per-frame progress output")
	version    = flag.Bool("version", false, "print version and exit")
)

const appVersion = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -i <file.smk> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Converts a Smacker v2 video file to RIFF-AVI.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Printf("smk2avi version %s\n", appVersion)
		os.Exit(0)
	}

	if *inputFile == "" {
		fmt.Fprintln(os.Stderr, "Error: input file required (-i)")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*inputFile, *outputFile, *quiet); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(inputFile, outputFile string, quiet bool) error {
	in, err := os.Open(inputFile) //nolint:gosec // path from user input is expected
	if err != nil {
		return fmt.Errorf("open input file: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(outputFile) //nolint:gosec // path from user input is expected
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	var progress avi2smk.Progress
	if !quiet {
		progress = func(n int) { fmt.Printf("\rFrame %d...", n) }
	}

	if err := avi2smk.ConvertSMK2ToAVI(in, out, progress); err != nil {
		return err
	}
	if !quiet {
		fmt.Println()
	}
	return nil
}

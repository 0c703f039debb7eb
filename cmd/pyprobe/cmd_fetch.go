package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ochairo/pyprobe/internal/domain-adapters/gateways"
	"github.com/ochairo/pyprobe/internal/domain/interfaces"
)

func runFetch(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	sf := registerScanFlags(fs, false)
	release := fs.String("release", "", "Release version to download (required)")
	tempDir := fs.String("temp-dir", "", "Parent directory for the download and payload (default: system temp)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: pyprobe fetch [options] [package]

Download one release without dependencies, extract it and print the
directory holding its payload. The directory is left for the caller.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  pyprobe fetch --package Hello-World-Package --release 0.1
  pyprobe fetch --package six --release 1.16.0 --temp-dir ./payloads
`)
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	cfg, err := sf.resolve(fs)
	if err != nil {
		fail(err)
	}
	if cfg.Package == "" || *release == "" {
		fmt.Fprintf(os.Stderr, "Error: --package and --release are required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	logger := sf.logger()
	extractor := gateways.NewArtifactExtractor(gateways.NewCommandRunner(), gateways.ArtifactExtractorConfig{
		Pip:      indexPip(cfg),
		TempRoot: *tempDir,
	}, logger)

	artifact, err := extractor.FetchAndExtract(ctx, cfg.Package, *release, cfg.IndexURL)
	if err != nil {
		fail(err)
	}

	logger.Info("payload ready",
		interfaces.F("format", artifact.Format),
		interfaces.F("source", artifact.SourceFile),
		interfaces.F("sha256", artifact.SHA256))
	fmt.Println(artifact.Path)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ochairo/pyprobe/internal/domain-adapters/gateways"
	"github.com/ochairo/pyprobe/internal/domain/entities"
)

func runProbe(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("probe", flag.ExitOnError)
	sf := registerScanFlags(fs, false)
	release := fs.String("release", "", "Release version to probe (required)")
	python := fs.String("python", "", "Python version as MAJOR.MINOR (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: pyprobe probe [options] [package]

Check whether one release of a package would install under one Python
version. Prints "compatible" or "incompatible".

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  pyprobe probe --package requests --release 2.31.0 --python 3.7
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
	if cfg.Package == "" || *release == "" || *python == "" {
		fmt.Fprintf(os.Stderr, "Error: --package, --release and --python are required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	runtime, err := entities.ParseRuntimeVersion(*python)
	if err != nil {
		fail(err)
	}

	logger := sf.logger()
	prober := gateways.NewPipProber(gateways.NewCommandRunner(), probePip(cfg), cfg.IndexURL, logger)
	ok, err := prober.IsCompatible(ctx, cfg.Package, *release, runtime)
	if err != nil {
		fail(err)
	}

	if ok {
		fmt.Println("compatible")
	} else {
		fmt.Println("incompatible")
	}
}

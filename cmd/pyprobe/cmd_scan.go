package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ochairo/pyprobe/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/pyprobe/internal/domain-orchestrators"
	"github.com/ochairo/pyprobe/internal/domain/entities"
	"github.com/ochairo/pyprobe/internal/domain/interfaces"
	"github.com/ochairo/pyprobe/internal/domain/services"
	yamladapter "github.com/ochairo/pyprobe/internal/external-adapters/yaml"
)

type scanOptions struct {
	format   string
	report   string
	tempDir  string
	failFast bool
	cleanup  bool
}

func runScan(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	sf := registerScanFlags(fs, true)
	var opts scanOptions
	fs.StringVar(&opts.format, "format", yamladapter.FormatJSON, "Output format of the target map (json, yaml)")
	fs.StringVar(&opts.report, "report", "", "Write a YAML run report to this file")
	fs.StringVar(&opts.tempDir, "temp-dir", "", "Parent directory for downloads and payloads (default: system temp)")
	fs.BoolVar(&opts.failFast, "fail-fast", false, "Stop at the first extraction failure")
	fs.BoolVar(&opts.cleanup, "cleanup", false, "Remove extracted payloads after the run")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: pyprobe scan [options] [package]

Find, for every Python version, the newest release of a package that
installs under it, print the result as a map, then download and extract
each selected release.

Performs:
  - Release listing (pip index versions)
  - Compatibility probing (pip install --dry-run --python-version)
  - Download and extraction (pip download)

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  pyprobe scan Hello-World-Package
  pyprobe scan --package requests --minor-max-step 4 --format yaml
  pyprobe scan --config scan.yaml --report report.yaml --cleanup
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
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		fs.Usage()
		os.Exit(1)
	}

	if err := executeScan(ctx, cfg, opts, sf.logger()); err != nil {
		fail(err)
	}
}

func executeScan(ctx context.Context, cfg entities.ScanConfig, opts scanOptions, logger interfaces.Logger) error {
	writer, err := yamladapter.NewReportWriter(opts.format)
	if err != nil {
		return err
	}

	// Layer 1: Gateways (Infrastructure)
	runner := gateways.NewCommandRunner()
	versions := gateways.NewPipVersionSource(runner, indexPip(cfg))
	prober := gateways.NewPipProber(runner, probePip(cfg), cfg.IndexURL, logger)
	extractor := gateways.NewArtifactExtractor(runner, gateways.ArtifactExtractorConfig{
		Pip:      indexPip(cfg),
		TempRoot: opts.tempDir,
	}, logger)

	// Layer 2: Service (Business Logic)
	search := services.NewFrontierSearch(versions, prober, logger)

	// Layer 3: Orchestrator (Use Case)
	matrix := orchestrators.NewMatrixOrchestrator(search, extractor, writer, logger, orchestrators.MatrixOrchestratorConfig{
		Output:   os.Stdout,
		FailFast: opts.failFast,
		Cleanup:  opts.cleanup,
	})

	result, runErr := matrix.Run(ctx, cfg)

	if opts.report != "" && result != nil {
		if err := writer.WriteReport(opts.report, result.Report()); err != nil {
			logger.Error("failed to write report", interfaces.F("path", opts.report), interfaces.F("error", err))
		} else {
			logger.Info("report written", interfaces.F("path", opts.report))
		}
	}

	if result != nil {
		fmt.Fprintf(os.Stderr, "\n%s\n", result.GetSummary())
	}

	return runErr
}

package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/ochairo/pyprobe/internal/domain-adapters/gateways"
	"github.com/ochairo/pyprobe/internal/domain/entities"
	"github.com/ochairo/pyprobe/internal/domain/interfaces"
	yamladapter "github.com/ochairo/pyprobe/internal/external-adapters/yaml"
)

// scanFlags are the flags shared by every command that talks to the index
type scanFlags struct {
	configFile   string
	packageName  string
	indexURL     string
	pip          string
	majorBegin   int
	majorMaxStep int
	minorMaxStep int
	concurrency  int
	probeTimeout time.Duration
	verbose      bool
	noColor      bool
}

func registerScanFlags(fs *flag.FlagSet, withSearch bool) *scanFlags {
	defaults := entities.DefaultScanConfig()
	f := &scanFlags{}

	fs.StringVar(&f.configFile, "config", "", "YAML scan file; flags given explicitly override it")
	fs.StringVar(&f.packageName, "package", "", "Package name (may also be given as the first argument)")
	fs.StringVar(&f.indexURL, "index-url", "", "Package index URL (default: pip's configured index)")
	fs.StringVar(&f.pip, "pip", strings.Join(defaults.PipCommand, " "), "Command used to invoke pip")
	fs.DurationVar(&f.probeTimeout, "probe-timeout", defaults.ProbeTimeout, "Timeout of a single pip invocation")
	fs.BoolVar(&f.verbose, "verbose", false, "Show debug output")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored log output")

	if withSearch {
		fs.IntVar(&f.majorBegin, "major-begin", defaults.MajorBegin, "First major Python version to probe")
		fs.IntVar(&f.majorMaxStep, "major-max-step", defaults.MajorMaxStep, "Consecutive incompatible majors before stopping")
		fs.IntVar(&f.minorMaxStep, "minor-max-step", defaults.MinorMaxStep, "Consecutive incompatible minors before the next major")
		fs.IntVar(&f.concurrency, "concurrency", defaults.Concurrency, "Parallel probes per Python version")
	}

	return f
}

// resolve builds the effective config: defaults, then the YAML file, then
// flags set on the command line, then the positional package name
func (f *scanFlags) resolve(fs *flag.FlagSet) (entities.ScanConfig, error) {
	cfg := entities.DefaultScanConfig()

	if f.configFile != "" {
		parsed, err := yamladapter.NewScanConfigParser().ParseFile(f.configFile, cfg)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = parsed
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "package":
			cfg.Package = f.packageName
		case "index-url":
			cfg.IndexURL = f.indexURL
		case "pip":
			cfg.PipCommand = strings.Fields(f.pip)
		case "probe-timeout":
			cfg.ProbeTimeout = f.probeTimeout
		case "major-begin":
			cfg.MajorBegin = f.majorBegin
		case "major-max-step":
			cfg.MajorMaxStep = f.majorMaxStep
		case "minor-max-step":
			cfg.MinorMaxStep = f.minorMaxStep
		case "concurrency":
			cfg.Concurrency = f.concurrency
		}
	})

	if cfg.Package == "" && fs.NArg() > 0 {
		cfg.Package = fs.Arg(0)
	}

	return cfg, nil
}

func (f *scanFlags) logger() interfaces.Logger {
	return interfaces.NewConsoleLogger(interfaces.ConsoleLoggerConfig{
		Verbose: f.verbose,
		NoColor: f.noColor,
	})
}

// probePip is the pip configuration for dry-run installs
func probePip(cfg entities.ScanConfig) gateways.PipConfig {
	return gateways.PipConfig{Command: cfg.PipCommand, Timeout: cfg.ProbeTimeout}
}

// indexPip is the pip configuration for listing and downloading, which use
// the runner's default timeout
func indexPip(cfg entities.ScanConfig) gateways.PipConfig {
	return gateways.PipConfig{Command: cfg.PipCommand}
}

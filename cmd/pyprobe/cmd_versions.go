package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/ochairo/pyprobe/internal/domain-adapters/gateways"
)

func runVersions(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("versions", flag.ExitOnError)
	sf := registerScanFlags(fs, false)
	asJSON := fs.Bool("json", false, "Print the releases as a JSON array")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: pyprobe versions [options] [package]

List the published releases of a package, oldest first.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  pyprobe versions requests
  pyprobe versions --package numpy --json
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
	if cfg.Package == "" {
		fmt.Fprintf(os.Stderr, "Error: --package is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	source := gateways.NewPipVersionSource(gateways.NewCommandRunner(), indexPip(cfg))
	releases, err := source.ListReleaseVersions(ctx, cfg.Package, cfg.IndexURL)
	if err != nil {
		fail(err)
	}

	if *asJSON {
		if releases == nil {
			releases = []string{}
		}
		data, err := json.MarshalIndent(releases, "", "    ")
		if err != nil {
			fail(err)
		}
		fmt.Println(string(data))
		return
	}

	for _, r := range releases {
		fmt.Println(r)
	}
}

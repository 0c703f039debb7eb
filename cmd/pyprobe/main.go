package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := os.Args[1]

	// Dispatch to subcommand
	switch command {
	case "scan":
		runScan(ctx, os.Args[2:])
	case "versions":
		runVersions(ctx, os.Args[2:])
	case "probe":
		runProbe(ctx, os.Args[2:])
	case "fetch":
		runFetch(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`pyprobe - Python package x interpreter compatibility matrix

Usage:
  pyprobe <command> [options]

Commands:
  scan       Find the newest installable release per Python version and extract it
  versions   List the published releases of a package
  probe      Check whether one release installs under one Python version
  fetch      Download and extract a single release

Use "pyprobe <command> --help" for more information about a command.`)
}

// fail prints err and exits with status 1
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

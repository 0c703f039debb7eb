package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mitchellh/colorstring"

	"github.com/ochairo/pyprobe/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/pyprobe/internal/domain-orchestrators"
	"github.com/ochairo/pyprobe/internal/domain/interfaces"
)

func main() {
	fs := flag.NewFlagSet("pyprobe-smoke", flag.ExitOnError)
	var (
		packageName = fs.String("package", "Hello-World-Package", "Requirement passed to pip install")
		image       = fs.String("image", "python", "Image repository")
		suffix      = fs.String("suffix", orchestrators.DefaultTagSuffix, "Suffix appended to every tag")
		docker      = fs.String("docker", "docker", "Container CLI binary")
		tags        = fs.String("tags", strings.Join(orchestrators.DefaultSmokeTags, ","), "Comma-separated interpreter tags")
		timeout     = fs.Duration("timeout", 30*time.Minute, "Timeout per container run")
		verbose     = fs.Bool("verbose", false, "Show debug output")
		noColor     = fs.Bool("no-color", false, "Disable colored output")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: pyprobe-smoke [options]

Install a package inside a series of throwaway Python container images
and report each exit code. Output of every container is streamed.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  pyprobe-smoke
  pyprobe-smoke --package requests --tags 3.11,3.12
  pyprobe-smoke --docker podman --suffix ""
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	tagList := splitTags(*tags)
	if *packageName == "" || *image == "" || len(tagList) == 0 {
		fmt.Fprintf(os.Stderr, "Error: --package, --image and --tags must not be empty\n\n")
		fs.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := interfaces.NewConsoleLogger(interfaces.ConsoleLoggerConfig{Verbose: *verbose, NoColor: *noColor})
	containers := gateways.NewContainerRunner(gateways.NewCommandRunner(), *docker, *timeout)
	smoke := orchestrators.NewSmokeOrchestrator(containers, logger)

	outcomes := smoke.Run(ctx, orchestrators.SmokeConfig{
		Image:   *image,
		Tags:    tagList,
		Suffix:  *suffix,
		Package: *packageName,
	})

	printOutcomes(outcomes, *noColor)
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// printOutcomes writes one line per image; the exit status stays 0
func printOutcomes(outcomes []orchestrators.SmokeOutcome, noColor bool) {
	color := colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: noColor,
		Reset:   true,
	}

	fmt.Fprintln(os.Stderr)
	for _, o := range outcomes {
		fmt.Fprintln(os.Stderr, formatOutcome(o, color))
	}
}

// formatOutcome colours only the marker; image names and errors are printed verbatim
func formatOutcome(o orchestrators.SmokeOutcome, color colorstring.Colorize) string {
	switch {
	case o.Error != nil:
		return color.Color("[red]✗") + " " + o.Image + ": " + o.Error.Error()
	case o.ExitCode != 0:
		return color.Color("[yellow]✗") + " " + fmt.Sprintf("%s: exit %d", o.Image, o.ExitCode)
	default:
		return color.Color("[green]✓") + " " + o.Image
	}
}

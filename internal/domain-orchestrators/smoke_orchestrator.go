package orchestrators

import (
	"context"
	"io"
	"os"

	"github.com/ochairo/pyprobe/internal/domain/interfaces"
)

// DefaultSmokeTags are the interpreter image tags exercised by the smoke test
var DefaultSmokeTags = []string{
	"2.7",
	"3.2",
	"3.3",
	"3.4",
	"3.5",
	"3.6",
	"3.7",
	"3.8",
	"3.9",
	"3.10",
	"3.11",
	"3.12",
	"3.13",
	"3.14",
}

// DefaultTagSuffix selects the slim image variant
const DefaultTagSuffix = "-slim"

// ContainerRunner interface for running a command in a throwaway container
type ContainerRunner interface {
	RunInImage(ctx context.Context, image string, command []string, stdout, stderr io.Writer) (int, error)
}

// SmokeConfig describes one smoke run
type SmokeConfig struct {
	Image   string   // repository, e.g. "python"
	Tags    []string // defaults to DefaultSmokeTags
	Suffix  string   // appended to every tag
	Package string   // requirement passed to pip install
	Stdout  io.Writer
	Stderr  io.Writer
}

// SmokeOutcome records what happened for one image
type SmokeOutcome struct {
	Image    string
	ExitCode int
	Error    error
}

// SmokeOrchestrator installs a package inside each interpreter image in turn.
// Results are logged per image only; nothing is aggregated.
type SmokeOrchestrator struct {
	containers ContainerRunner
	logger     interfaces.Logger
}

// NewSmokeOrchestrator creates a new smoke orchestrator
func NewSmokeOrchestrator(containers ContainerRunner, logger interfaces.Logger) *SmokeOrchestrator {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &SmokeOrchestrator{containers: containers, logger: logger}
}

// Run walks every tag and stops early only when ctx is cancelled
func (o *SmokeOrchestrator) Run(ctx context.Context, config SmokeConfig) []SmokeOutcome {
	tags := config.Tags
	if len(tags) == 0 {
		tags = DefaultSmokeTags
	}
	stdout, stderr := config.Stdout, config.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	command := []string{"python", "-m", "pip", "install", config.Package}

	outcomes := make([]SmokeOutcome, 0, len(tags))
	for _, tag := range tags {
		if ctx.Err() != nil {
			break
		}

		image := config.Image + ":" + tag + config.Suffix
		o.logger.Info("installing", interfaces.F("image", image), interfaces.F("package", config.Package))

		code, err := o.containers.RunInImage(ctx, image, command, stdout, stderr)
		outcomes = append(outcomes, SmokeOutcome{Image: image, ExitCode: code, Error: err})

		switch {
		case err != nil:
			o.logger.Error("container did not start", interfaces.F("image", image), interfaces.F("error", err))
		case code != 0:
			o.logger.Warn("install exited non-zero", interfaces.F("image", image), interfaces.F("exit_code", code))
		default:
			o.logger.Info("install succeeded", interfaces.F("image", image))
		}
	}

	return outcomes
}

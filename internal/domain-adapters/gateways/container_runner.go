package gateways

import (
	"context"
	"fmt"
	"io"
	"time"
)

// ContainerRunner runs throwaway containers through a docker-compatible CLI
type ContainerRunner struct {
	runner  Runner
	binary  string
	timeout time.Duration
}

// NewContainerRunner creates a container runner. binary defaults to "docker".
func NewContainerRunner(runner Runner, binary string, timeout time.Duration) *ContainerRunner {
	if binary == "" {
		binary = "docker"
	}
	return &ContainerRunner{runner: runner, binary: binary, timeout: timeout}
}

// RunInImage executes command in a fresh container of image, removing the
// container afterwards. Output is copied to stdout and stderr as it arrives.
// The error is set only when the container CLI could not be launched.
func (c *ContainerRunner) RunInImage(ctx context.Context, image string, command []string, stdout, stderr io.Writer) (int, error) {
	args := append([]string{c.binary, "run", "--rm", image}, command...)
	result := c.runner.Run(ctx, CommandSpec{
		Args:    args,
		Timeout: c.timeout,
		Stdout:  stdout,
		Stderr:  stderr,
	})
	if !result.Started {
		return result.ExitCode, fmt.Errorf("failed to run %s: %w", c.binary, result.Error)
	}
	return result.ExitCode, nil
}

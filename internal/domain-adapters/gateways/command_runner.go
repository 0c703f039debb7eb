package gateways

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/ochairo/pyprobe/internal/domain/entities"
)

// CommandRunner executes external commands as argument vectors, never through a shell
type CommandRunner struct {
	defaultTimeout time.Duration
}

// NewCommandRunner creates a new command runner
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{
		defaultTimeout: 30 * time.Minute,
	}
}

// CommandSpec describes one command invocation
type CommandSpec struct {
	Args       []string // Args[0] is the executable
	WorkingDir string
	Env        map[string]string
	Timeout    time.Duration
	Stdout     io.Writer // optional live copy of stdout
	Stderr     io.Writer // optional live copy of stderr
}

// ExecuteResult contains the result of command execution
type ExecuteResult struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	Combined string // stdout and stderr interleaved as written
	Duration time.Duration
	Error    error
	Started  bool // false when the executable could not be launched
}

// Runner is the subprocess surface the pip and container gateways depend on
type Runner interface {
	Run(ctx context.Context, spec CommandSpec) *ExecuteResult
}

// Run executes the command described by spec
func (r *CommandRunner) Run(ctx context.Context, spec CommandSpec) *ExecuteResult {
	startTime := time.Now()
	result := &ExecuteResult{}

	if len(spec.Args) == 0 {
		result.Error = errors.New("no command given")
		result.ExitCode = -1
		return result
	}

	// Use default timeout if not specified
	timeout := spec.Timeout
	if timeout == 0 {
		timeout = r.defaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // G204: arguments are passed as a vector, no shell involved
	cmd := exec.CommandContext(execCtx, spec.Args[0], spec.Args[1:]...)

	if spec.WorkingDir != "" {
		cmd.Dir = spec.WorkingDir
	}

	if len(spec.Env) > 0 {
		env := os.Environ()
		for key, value := range spec.Env {
			env = append(env, fmt.Sprintf("%s=%s", key, value))
		}
		cmd.Env = env
	}

	// Capture stdout, stderr and the interleaved stream
	var stdout, stderr bytes.Buffer
	combined := &lockedBuffer{}
	cmd.Stdout = teeWriter(&stdout, combined, spec.Stdout)
	cmd.Stderr = teeWriter(&stderr, combined, spec.Stderr)

	err := cmd.Run()
	result.Duration = time.Since(startTime)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	result.Combined = combined.String()

	if err != nil {
		result.Error = err
		var exitErr *exec.ExitError
		//nolint:gocritic // ifElseChain: checking different error types, not suitable for switch
		if errors.As(err, &exitErr) {
			result.Started = true
			result.ExitCode = exitErr.ExitCode()
			if execCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
				result.Error = fmt.Errorf("command timeout after %v", timeout)
			}
		} else if execCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			result.Started = true
			result.Error = fmt.Errorf("command timeout after %v", timeout)
			result.ExitCode = -1
		} else {
			result.ExitCode = -1
		}
		return result
	}

	result.Started = true
	result.Success = true
	result.ExitCode = 0
	return result
}

// CommandError converts a failed result into an *entities.CommandError
func (r *ExecuteResult) CommandError(args []string) *entities.CommandError {
	output := r.Combined
	if output == "" && r.Error != nil {
		output = r.Error.Error()
	}
	return &entities.CommandError{
		Command:  args,
		ExitCode: r.ExitCode,
		Output:   output,
	}
}

func teeWriter(capture, combined io.Writer, live io.Writer) io.Writer {
	if live == nil {
		return io.MultiWriter(capture, combined)
	}
	return io.MultiWriter(capture, combined, live)
}

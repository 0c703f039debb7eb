package gateways

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ochairo/pyprobe/internal/domain/entities"
	"github.com/ochairo/pyprobe/internal/domain/interfaces"
)

const availableVersionsMarker = "Available versions:"

// PipConfig describes how the package manager is invoked
type PipConfig struct {
	Command []string      // argv prefix, e.g. python3 -m pip
	Timeout time.Duration // per invocation; zero uses the runner default
}

// DefaultPipConfig returns the configuration used when none is given
func DefaultPipConfig() PipConfig {
	return PipConfig{Command: []string{"python3", "-m", "pip"}}
}

func (c PipConfig) args(sub ...string) []string {
	command := c.Command
	if len(command) == 0 {
		command = DefaultPipConfig().Command
	}
	args := make([]string, 0, len(command)+len(sub)+3)
	args = append(args, command...)
	args = append(args, sub...)
	args = append(args, "--disable-pip-version-check")
	return args
}

func withIndex(args []string, indexURL string) []string {
	if indexURL == "" {
		return args
	}
	return append(args, "--index-url", indexURL)
}

func requirement(packageName string, version entities.ReleaseVersion) string {
	return packageName + "==" + version
}

// PipVersionSource lists releases with `pip index versions`
type PipVersionSource struct {
	runner Runner
	config PipConfig
}

// NewPipVersionSource creates a version source backed by pip
func NewPipVersionSource(runner Runner, config PipConfig) *PipVersionSource {
	return &PipVersionSource{runner: runner, config: config}
}

// ListReleaseVersions returns the releases of packageName, oldest first
func (s *PipVersionSource) ListReleaseVersions(ctx context.Context, packageName, indexURL string) ([]entities.ReleaseVersion, error) {
	args := withIndex(s.config.args("index", "versions", packageName), indexURL)

	result := s.runner.Run(ctx, CommandSpec{Args: args, Timeout: s.config.Timeout})
	if !result.Success {
		return nil, fmt.Errorf("%w: %w", entities.ErrIndexQuery, result.CommandError(args))
	}

	return ParseAvailableVersions(result.Stdout), nil
}

// ParseAvailableVersions extracts the "Available versions:" line from pip
// output. pip reports newest first; the returned slice is reversed so the
// oldest release comes first. A missing marker yields an empty slice.
func ParseAvailableVersions(output string) []entities.ReleaseVersion {
	versions := []entities.ReleaseVersion{}

	for _, line := range strings.Split(output, "\n") {
		_, list, found := strings.Cut(line, availableVersionsMarker)
		if !found {
			continue
		}
		for _, v := range strings.Split(list, ",") {
			if v = strings.TrimSpace(v); v != "" {
				versions = append(versions, v)
			}
		}
		break
	}

	for i, j := 0, len(versions)-1; i < j; i, j = i+1, j-1 {
		versions[i], versions[j] = versions[j], versions[i]
	}
	return versions
}

// PipProber checks installability with a dry-run, dependency-free install
type PipProber struct {
	runner   Runner
	config   PipConfig
	indexURL string
	logger   interfaces.Logger
}

// NewPipProber creates a prober querying indexURL (empty for pip's default)
func NewPipProber(runner Runner, config PipConfig, indexURL string, logger interfaces.Logger) *PipProber {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &PipProber{runner: runner, config: config, indexURL: indexURL, logger: logger}
}

// IsCompatible reports whether release resolves for runtime.
// Any non-zero exit counts as incompatible; an error is returned only when
// pip could not be launched or ctx was cancelled.
func (p *PipProber) IsCompatible(ctx context.Context, packageName string, release entities.ReleaseVersion, runtime entities.RuntimeVersion) (bool, error) {
	args := p.config.args("install",
		"--dry-run",
		"--no-deps",
		"--ignore-installed",
		"--quiet",
		"--python-version", runtime.String(),
		requirement(packageName, release),
	)
	args = withIndex(args, p.indexURL)

	result := p.runner.Run(ctx, CommandSpec{Args: args, Timeout: p.config.Timeout})
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !result.Started {
		return false, fmt.Errorf("failed to run pip: %w", result.Error)
	}

	if !result.Success {
		p.logger.Debug("dry-run rejected",
			interfaces.F("release", release),
			interfaces.F("runtime", runtime),
			interfaces.F("exit_code", result.ExitCode),
			interfaces.F("output", lastLine(result.Combined)))
		return false, nil
	}
	return true, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

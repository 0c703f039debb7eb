package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure classes of a matrix run.
var (
	// ErrIndexQuery indicates the package index could not be queried for versions.
	ErrIndexQuery = errors.New("index query failed")

	// ErrDownload indicates the package manager could not download an artifact.
	ErrDownload = errors.New("download failed")

	// ErrUnsupportedFormat indicates the downloaded artifact is neither a zip nor a gzip tarball.
	ErrUnsupportedFormat = errors.New("unsupported artifact format")

	// ErrMalformedArtifact indicates the artifact layout does not match what extraction expects.
	ErrMalformedArtifact = errors.New("malformed artifact")

	// ErrInvalidConfig indicates scan parameters are out of range.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// CommandError describes an external command that exited non-zero
type CommandError struct {
	Command  []string
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q exited with code %d", strings.Join(e.Command, " "), e.ExitCode)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

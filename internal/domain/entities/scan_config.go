package entities

import (
	"fmt"
	"time"
)

// Default scan parameters
const (
	DefaultMajorBegin   = 2
	DefaultMajorMaxStep = 2
	DefaultMinorMaxStep = 10
)

// ScanConfig holds the parameters of one compatibility scan
type ScanConfig struct {
	Package      string
	IndexURL     string // empty selects the package manager's default index
	MajorBegin   int
	MajorMaxStep int // consecutive fully incompatible majors before stopping
	MinorMaxStep int // consecutive incompatible minors before moving to the next major
	Concurrency  int // parallel probes per runtime version; 1 is sequential
	PipCommand   []string
	ProbeTimeout time.Duration
}

// DefaultScanConfig returns a config populated with default parameters
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		MajorBegin:   DefaultMajorBegin,
		MajorMaxStep: DefaultMajorMaxStep,
		MinorMaxStep: DefaultMinorMaxStep,
		Concurrency:  1,
		PipCommand:   []string{"python3", "-m", "pip"},
		ProbeTimeout: 5 * time.Minute,
	}
}

// Validate checks that the config describes a terminating scan
func (c ScanConfig) Validate() error {
	if c.Package == "" {
		return fmt.Errorf("%w: package name is required", ErrInvalidConfig)
	}
	if c.MajorBegin < 0 {
		return fmt.Errorf("%w: major_begin must be non-negative, got %d", ErrInvalidConfig, c.MajorBegin)
	}
	if c.MajorMaxStep < 1 {
		return fmt.Errorf("%w: major_max_step must be at least 1, got %d", ErrInvalidConfig, c.MajorMaxStep)
	}
	if c.MinorMaxStep < 1 {
		return fmt.Errorf("%w: minor_max_step must be at least 1, got %d", ErrInvalidConfig, c.MinorMaxStep)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidConfig, c.Concurrency)
	}
	if len(c.PipCommand) == 0 {
		return fmt.Errorf("%w: pip command must not be empty", ErrInvalidConfig)
	}
	return nil
}

// Package yaml provides YAML-based scan configuration and report adapters.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ochairo/pyprobe/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// yamlScanConfig represents the raw YAML structure of a scan file.
// Pointer fields distinguish "absent" from zero values.
type yamlScanConfig struct {
	Package      string     `yaml:"package"`
	IndexURL     string     `yaml:"index_url"`
	MajorBegin   *int       `yaml:"major_begin"`
	MajorMaxStep *int       `yaml:"major_max_step"`
	MinorMaxStep *int       `yaml:"minor_max_step"`
	Concurrency  *int       `yaml:"concurrency"`
	Pip          pipCommand `yaml:"pip"`
	ProbeTimeout string     `yaml:"probe_timeout"`
}

// pipCommand accepts either a list or a whitespace-separated string
type pipCommand []string

// UnmarshalYAML implements yaml.Unmarshaler
func (c *pipCommand) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*c = strings.Fields(node.Value)
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*c = list
	return nil
}

// ScanConfigParser parses YAML scan files
type ScanConfigParser struct{}

// NewScanConfigParser creates a new YAML parser
func NewScanConfigParser() *ScanConfigParser {
	return &ScanConfigParser{}
}

// ParseFile parses a scan file on top of base
func (p *ScanConfigParser) ParseFile(filePath string, base entities.ScanConfig) (entities.ScanConfig, error) {
	//nolint:gosec // G304: filePath is the scan file named on the command line
	data, err := os.ReadFile(filePath)
	if err != nil {
		return base, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return p.Parse(data, base)
}

// Parse parses YAML bytes, overriding the fields of base that the document sets
func (p *ScanConfigParser) Parse(data []byte, base entities.ScanConfig) (entities.ScanConfig, error) {
	var raw yamlScanConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg := base
	if raw.Package != "" {
		cfg.Package = strings.TrimSpace(raw.Package)
	}
	if raw.IndexURL != "" {
		cfg.IndexURL = strings.TrimSpace(raw.IndexURL)
	}
	if raw.MajorBegin != nil {
		cfg.MajorBegin = *raw.MajorBegin
	}
	if raw.MajorMaxStep != nil {
		cfg.MajorMaxStep = *raw.MajorMaxStep
	}
	if raw.MinorMaxStep != nil {
		cfg.MinorMaxStep = *raw.MinorMaxStep
	}
	if raw.Concurrency != nil {
		cfg.Concurrency = *raw.Concurrency
	}
	if len(raw.Pip) > 0 {
		cfg.PipCommand = []string(raw.Pip)
	}
	if raw.ProbeTimeout != "" {
		timeout, err := time.ParseDuration(raw.ProbeTimeout)
		if err != nil {
			return base, fmt.Errorf("%w: probe_timeout: %w", entities.ErrInvalidConfig, err)
		}
		cfg.ProbeTimeout = timeout
	}

	return cfg, nil
}

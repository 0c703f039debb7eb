package yaml

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ochairo/pyprobe/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// Output formats for the printed target map
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type yamlReport struct {
	RunID       string                     `yaml:"run_id"`
	Package     string                     `yaml:"package"`
	IndexURL    string                     `yaml:"index_url,omitempty"`
	StartedAt   string                     `yaml:"started_at"`
	Duration    string                     `yaml:"duration"`
	Releases    []string                   `yaml:"releases"`
	Rounds      int                        `yaml:"probe_rounds"`
	Probes      int                        `yaml:"probes"`
	Targets     *entities.TargetVersionMap `yaml:"targets"`
	Extractions []yamlExtraction           `yaml:"extractions,omitempty"`
}

type yamlExtraction struct {
	Runtime    string `yaml:"runtime"`
	Release    string `yaml:"release"`
	Format     string `yaml:"format,omitempty"`
	Path       string `yaml:"path,omitempty"`
	SourceFile string `yaml:"source_file,omitempty"`
	SHA256     string `yaml:"sha256,omitempty"`
	Error      string `yaml:"error,omitempty"`
}

// ReportWriter prints target maps and persists run reports
type ReportWriter struct {
	format string
}

// NewReportWriter creates a writer printing targets in format ("json" or "yaml")
func NewReportWriter(format string) (*ReportWriter, error) {
	switch format {
	case "", FormatJSON:
		return &ReportWriter{format: FormatJSON}, nil
	case FormatYAML:
		return &ReportWriter{format: FormatYAML}, nil
	}
	return nil, fmt.Errorf("%w: unknown output format %q", entities.ErrInvalidConfig, format)
}

// PrintTargets writes the map as indented structured text
func (w *ReportWriter) PrintTargets(out io.Writer, targets *entities.TargetVersionMap) error {
	if targets == nil {
		targets = entities.NewTargetVersionMap()
	}

	if w.format == FormatYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(4)
		if err := enc.Encode(targets); err != nil {
			return fmt.Errorf("failed to encode targets: %w", err)
		}
		return enc.Close()
	}

	data, err := json.MarshalIndent(targets, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode targets: %w", err)
	}
	data = append(data, '\n')
	_, err = out.Write(data)
	return err
}

// WriteReport stores report as YAML at path
func (w *ReportWriter) WriteReport(path string, report *entities.MatrixReport) error {
	data, err := yaml.Marshal(convertReport(report))
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

func convertReport(r *entities.MatrixReport) yamlReport {
	out := yamlReport{
		RunID:     r.RunID,
		Package:   r.Package,
		IndexURL:  r.IndexURL,
		StartedAt: r.StartedAt.UTC().Format(time.RFC3339),
		Duration:  r.Duration.Round(time.Millisecond).String(),
		Releases:  r.Releases,
		Rounds:    r.Rounds,
		Probes:    r.Probes,
		Targets:   r.Targets,
	}
	if out.Releases == nil {
		out.Releases = []string{}
	}
	if out.Targets == nil {
		out.Targets = entities.NewTargetVersionMap()
	}

	for _, e := range r.Extractions {
		out.Extractions = append(out.Extractions, yamlExtraction{
			Runtime:    e.Runtime,
			Release:    e.Release,
			Format:     e.Format,
			Path:       e.Path,
			SourceFile: e.SourceFile,
			SHA256:     e.SHA256,
			Error:      e.Error,
		})
	}
	return out
}

// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ochairo/pyprobe/internal/domain/entities"
	"github.com/ochairo/pyprobe/internal/domain/interfaces"
	"github.com/ochairo/pyprobe/internal/domain/interfaces/gateways"
	"github.com/ochairo/pyprobe/internal/domain/services"
)

// Searcher interface for discovering compatible runtime/release pairs
type Searcher interface {
	Search(ctx context.Context, config entities.ScanConfig) (*services.ScanResult, error)
}

// TargetPrinter renders the discovered map for humans
type TargetPrinter interface {
	PrintTargets(w io.Writer, targets *entities.TargetVersionMap) error
}

// MatrixOrchestrator runs a scan and extracts every compatible pair it finds
type MatrixOrchestrator struct {
	searcher Searcher
	fetcher  gateways.ArtifactFetcher
	printer  TargetPrinter
	logger   interfaces.Logger
	out      io.Writer
	failFast bool
	cleanup  bool
	now      func() time.Time
}

// MatrixOrchestratorConfig holds configuration for the orchestrator
type MatrixOrchestratorConfig struct {
	Output   io.Writer // destination of the printed map; defaults to os.Stdout
	FailFast bool      // abort on the first failed extraction
	Cleanup  bool      // remove extracted payloads once recorded
}

// NewMatrixOrchestrator creates a new matrix orchestrator
func NewMatrixOrchestrator(
	searcher Searcher,
	fetcher gateways.ArtifactFetcher,
	printer TargetPrinter,
	logger interfaces.Logger,
	config MatrixOrchestratorConfig,
) *MatrixOrchestrator {
	out := config.Output
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	return &MatrixOrchestrator{
		searcher: searcher,
		fetcher:  fetcher,
		printer:  printer,
		logger:   logger,
		out:      out,
		failFast: config.FailFast,
		cleanup:  config.Cleanup,
		now:      time.Now,
	}
}

// ExtractionOutcome is the result of extracting one compatible pair
type ExtractionOutcome struct {
	Runtime  string
	Release  entities.ReleaseVersion
	Artifact *entities.ExtractedArtifact
	Error    error
}

// MatrixResult contains the result of a matrix run
type MatrixResult struct {
	RunID       string
	Config      entities.ScanConfig
	StartedAt   time.Time
	Scan        *services.ScanResult
	Extractions []ExtractionOutcome
	Duration    time.Duration
}

// Failed returns the extractions that did not succeed
func (r *MatrixResult) Failed() []ExtractionOutcome {
	var failed []ExtractionOutcome
	for _, e := range r.Extractions {
		if e.Error != nil {
			failed = append(failed, e)
		}
	}
	return failed
}

// Run executes the complete matrix workflow
func (o *MatrixOrchestrator) Run(ctx context.Context, config entities.ScanConfig) (*MatrixResult, error) {
	startTime := o.now()
	result := &MatrixResult{
		RunID:     uuid.NewString(),
		Config:    config,
		StartedAt: startTime,
	}

	// Payloads are dropped on every return path
	if o.cleanup {
		defer o.removePayloads(result)
	}

	// Step 1: Discover compatible pairs
	scan, err := o.searcher.Search(ctx, config)
	if err != nil {
		return result, fmt.Errorf("compatibility scan failed: %w", err)
	}
	result.Scan = scan

	// Step 2: Report the map before any extraction starts
	if err := o.printer.PrintTargets(o.out, scan.Targets); err != nil {
		return result, fmt.Errorf("failed to print targets: %w", err)
	}

	// Step 3: Extract each pair; failures are isolated unless failFast is set
	var errs []error
	for _, entry := range scan.Targets.Entries() {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outcome := ExtractionOutcome{Runtime: entry.Runtime, Release: entry.Release}
		artifact, err := o.fetcher.FetchAndExtract(ctx, config.Package, entry.Release, config.IndexURL)
		if err != nil {
			outcome.Error = err
			result.Extractions = append(result.Extractions, outcome)
			o.logger.Error("extraction failed",
				interfaces.F("runtime", entry.Runtime),
				interfaces.F("release", entry.Release),
				interfaces.F("error", err))
			if o.failFast {
				return result, fmt.Errorf("extraction of %s for %s failed: %w", entry.Release, entry.Runtime, err)
			}
			errs = append(errs, fmt.Errorf("%s (runtime %s): %w", entry.Release, entry.Runtime, err))
			continue
		}

		outcome.Artifact = artifact
		result.Extractions = append(result.Extractions, outcome)
		o.logger.Info("payload ready",
			interfaces.F("runtime", entry.Runtime),
			interfaces.F("release", entry.Release),
			interfaces.F("path", artifact.Path))
	}

	result.Duration = time.Since(startTime)

	if len(errs) > 0 {
		return result, fmt.Errorf("%d of %d extractions failed: %w",
			len(errs), len(result.Extractions), errors.Join(errs...))
	}
	return result, nil
}

// removePayloads deletes every extracted payload recorded in result
func (o *MatrixOrchestrator) removePayloads(result *MatrixResult) {
	for _, e := range result.Extractions {
		if err := e.Artifact.Remove(); err != nil {
			o.logger.Warn("cleanup failed", interfaces.F("error", err))
		}
	}
}

// Report converts the result into a persistable report
func (r *MatrixResult) Report() *entities.MatrixReport {
	report := &entities.MatrixReport{
		RunID:     r.RunID,
		Package:   r.Config.Package,
		IndexURL:  r.Config.IndexURL,
		StartedAt: r.StartedAt,
		Duration:  r.Duration,
		Targets:   entities.NewTargetVersionMap(),
	}

	if r.Scan != nil {
		report.Releases = r.Scan.Releases
		report.Rounds = len(r.Scan.Rounds)
		report.Probes = r.Scan.Probes
		report.Targets = r.Scan.Targets
	}

	for _, e := range r.Extractions {
		record := entities.ExtractionRecord{Runtime: e.Runtime, Release: e.Release}
		if e.Artifact != nil {
			record.Format = e.Artifact.Format
			record.Path = e.Artifact.Path
			record.SourceFile = e.Artifact.SourceFile
			record.SHA256 = e.Artifact.SHA256
		}
		if e.Error != nil {
			record.Error = e.Error.Error()
		}
		report.Extractions = append(report.Extractions, record)
	}

	return report
}

// GetSummary returns a human-readable summary of the run
func (r *MatrixResult) GetSummary() string {
	if r.Scan == nil {
		return "Scan did not complete"
	}

	failed := len(r.Failed())
	return fmt.Sprintf(`Matrix run %s
Package: %s
Releases: %d
Compatible runtimes: %d
Probe rounds: %d (%d probes)
Extracted: %d ok, %d failed
Total: %v`,
		r.RunID,
		r.Config.Package,
		len(r.Scan.Releases),
		r.Scan.Targets.Len(),
		len(r.Scan.Rounds),
		r.Scan.Probes,
		len(r.Extractions)-failed,
		failed,
		r.Duration.Round(time.Millisecond),
	)
}

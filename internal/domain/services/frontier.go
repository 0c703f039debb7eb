// Package services implements domain business logic and use cases.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ochairo/pyprobe/internal/domain/entities"
	"github.com/ochairo/pyprobe/internal/domain/interfaces"
	"github.com/ochairo/pyprobe/internal/domain/interfaces/gateways"
)

// FrontierSearch walks the runtime version space and records, for each
// runtime version, the last release that installs under it.
type FrontierSearch struct {
	versions gateways.VersionSource
	prober   gateways.CompatibilityProber
	logger   interfaces.Logger
}

// NewFrontierSearch creates a new frontier search with dependency injection
func NewFrontierSearch(versions gateways.VersionSource, prober gateways.CompatibilityProber, logger interfaces.Logger) *FrontierSearch {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &FrontierSearch{
		versions: versions,
		prober:   prober,
		logger:   logger,
	}
}

// ScanResult contains the outcome of a frontier search
type ScanResult struct {
	Package  string
	Releases []entities.ReleaseVersion
	Targets  *entities.TargetVersionMap
	Rounds   []entities.RuntimeVersion // runtime versions probed, in scan order
	Probes   int
	Duration time.Duration
}

// Search runs the scan described by config.
//
// Minor versions of a major are visited from 0 until MinorMaxStep consecutive
// rounds find no compatible release. A major in which no round found anything
// counts towards MajorMaxStep; a major with any hit resets that count. The
// scan ends once MajorMaxStep consecutive majors were entirely incompatible.
func (s *FrontierSearch) Search(ctx context.Context, config entities.ScanConfig) (*ScanResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	result := &ScanResult{
		Package: config.Package,
		Targets: entities.NewTargetVersionMap(),
	}

	releases, err := s.versions.ListReleaseVersions(ctx, config.Package, config.IndexURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list releases of %s: %w", config.Package, err)
	}
	result.Releases = releases

	if len(releases) == 0 {
		s.logger.Warn("index reports no releases", interfaces.F("package", config.Package))
		result.Duration = time.Since(startTime)
		return result, nil
	}

	s.logger.Info("starting scan",
		interfaces.F("package", config.Package),
		interfaces.F("releases", len(releases)),
		interfaces.F("major_begin", config.MajorBegin))

	majorMisses := 0
	for major := config.MajorBegin; ; major++ {
		minorMisses := 0
		majorHit := false

		for runtime := (entities.RuntimeVersion{Major: major}); ; runtime = runtime.NextMinor() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			release, found, err := s.probeRound(ctx, config, releases, runtime)
			if err != nil {
				return nil, fmt.Errorf("probe round %s failed: %w", runtime, err)
			}
			result.Rounds = append(result.Rounds, runtime)
			result.Probes += len(releases)

			if found {
				result.Targets.Set(runtime.String(), release)
				majorHit = true
				minorMisses = 0
				s.logger.Info("compatible",
					interfaces.F("runtime", runtime),
					interfaces.F("release", release))
			} else {
				minorMisses++
				s.logger.Debug("no compatible release",
					interfaces.F("runtime", runtime),
					interfaces.F("misses", minorMisses))
			}

			if minorMisses >= config.MinorMaxStep {
				break
			}
		}

		if majorHit {
			majorMisses = 0
		} else {
			majorMisses++
		}
		if majorMisses >= config.MajorMaxStep {
			break
		}
	}

	result.Duration = time.Since(startTime)
	s.logger.Info("scan finished",
		interfaces.F("package", config.Package),
		interfaces.F("targets", result.Targets.Len()),
		interfaces.F("rounds", len(result.Rounds)),
		interfaces.F("duration", result.Duration.Round(time.Millisecond)))

	return result, nil
}

// probeRound probes every release against runtime and returns the last
// compatible one in release order.
func (s *FrontierSearch) probeRound(
	ctx context.Context,
	config entities.ScanConfig,
	releases []entities.ReleaseVersion,
	runtime entities.RuntimeVersion,
) (entities.ReleaseVersion, bool, error) {
	verdicts := make([]bool, len(releases))

	if config.Concurrency <= 1 {
		for i, release := range releases {
			ok, err := s.prober.IsCompatible(ctx, config.Package, release, runtime)
			if err != nil {
				return "", false, err
			}
			verdicts[i] = ok
		}
	} else if err := s.probeParallel(ctx, config, releases, runtime, verdicts); err != nil {
		return "", false, err
	}

	var last entities.ReleaseVersion
	found := false
	for i, ok := range verdicts {
		if ok {
			last = releases[i]
			found = true
		}
	}
	return last, found, nil
}

// probeParallel fills verdicts by index so the merge stays in release order
func (s *FrontierSearch) probeParallel(
	ctx context.Context,
	config entities.ScanConfig,
	releases []entities.ReleaseVersion,
	runtime entities.RuntimeVersion,
	verdicts []bool,
) error {
	errs := make([]error, len(releases))
	sem := make(chan struct{}, config.Concurrency)
	var wg sync.WaitGroup

	var spawnErr error
	for i, release := range releases {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		// a freed slot and cancellation can be ready together
		if err := ctx.Err(); err != nil {
			spawnErr = err
			break
		}

		wg.Add(1)
		go func(i int, release entities.ReleaseVersion) {
			defer wg.Done()
			defer func() { <-sem }()
			verdicts[i], errs[i] = s.prober.IsCompatible(ctx, config.Package, release, runtime)
		}(i, release)
	}
	wg.Wait()

	if spawnErr != nil {
		return spawnErr
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

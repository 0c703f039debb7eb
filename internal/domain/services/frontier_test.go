package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/ochairo/pyprobe/internal/domain/entities"
)

type mockVersionSource struct {
	releases []entities.ReleaseVersion
	err      error
	calls    int
}

func (m *mockVersionSource) ListReleaseVersions(_ context.Context, _, _ string) ([]entities.ReleaseVersion, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.releases, nil
}

type mockProber struct {
	mu         sync.Mutex
	compatible func(release entities.ReleaseVersion, runtime entities.RuntimeVersion) bool
	err        error
	calls      int
}

func (m *mockProber) IsCompatible(_ context.Context, _ string, release entities.ReleaseVersion, runtime entities.RuntimeVersion) (bool, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	return m.compatible(release, runtime), nil
}

func scanConfig() entities.ScanConfig {
	cfg := entities.DefaultScanConfig()
	cfg.Package = "Hello-World-Package"
	return cfg
}

func minorRange(major, from, to int) func(entities.ReleaseVersion, entities.RuntimeVersion) bool {
	return func(_ entities.ReleaseVersion, rt entities.RuntimeVersion) bool {
		return rt.Major == major && rt.Minor >= from && rt.Minor <= to
	}
}

func TestFrontierSearch_Search_KnownRange(t *testing.T) {
	versions := &mockVersionSource{releases: []entities.ReleaseVersion{"0.1", "0.2"}}
	prober := &mockProber{compatible: minorRange(3, 7, 11)}

	search := NewFrontierSearch(versions, prober, nil)
	result, err := search.Search(context.Background(), scanConfig())
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	want := []string{"3.7", "3.8", "3.9", "3.10", "3.11"}
	if got := result.Targets.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Targets.Keys() = %v, want %v", got, want)
	}

	// 2.0-2.9, 3.0-3.21, 4.0-4.9, 5.0-5.9
	if len(result.Rounds) != 52 {
		t.Errorf("len(Rounds) = %d, want 52", len(result.Rounds))
	}
	last := result.Rounds[len(result.Rounds)-1]
	if last != (entities.RuntimeVersion{Major: 5, Minor: 9}) {
		t.Errorf("last round = %s, want 5.9", last)
	}
	if result.Probes != 52*2 || prober.calls != 52*2 {
		t.Errorf("Probes = %d, prober calls = %d, want %d", result.Probes, prober.calls, 52*2)
	}
	if versions.calls != 1 {
		t.Errorf("ListReleaseVersions called %d times, want 1", versions.calls)
	}
}

func TestFrontierSearch_Search_RoundsStrictlyIncreasing(t *testing.T) {
	prober := &mockProber{compatible: func(_ entities.ReleaseVersion, rt entities.RuntimeVersion) bool {
		return (rt.Major == 2 && rt.Minor == 7) || (rt.Major == 3 && rt.Minor >= 2 && rt.Minor <= 14)
	}}

	search := NewFrontierSearch(&mockVersionSource{releases: []entities.ReleaseVersion{"1.0"}}, prober, nil)
	result, err := search.Search(context.Background(), scanConfig())
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	seen := make(map[entities.RuntimeVersion]bool)
	for i, rt := range result.Rounds {
		if seen[rt] {
			t.Fatalf("runtime %s probed twice", rt)
		}
		seen[rt] = true
		if i > 0 && !result.Rounds[i-1].Less(rt) {
			t.Fatalf("round %d (%s) does not follow %s", i, rt, result.Rounds[i-1])
		}
	}

	if _, ok := result.Targets.Get("2.7"); !ok {
		t.Error("expected 2.7 in targets")
	}
	if result.Targets.Len() != 14 {
		t.Errorf("Targets.Len() = %d, want 14", result.Targets.Len())
	}
}

func TestFrontierSearch_Search_GapWithinTolerance(t *testing.T) {
	prober := &mockProber{compatible: func(_ entities.ReleaseVersion, rt entities.RuntimeVersion) bool {
		if rt.Major != 3 {
			return false
		}
		return (rt.Minor >= 3 && rt.Minor <= 5) || (rt.Minor >= 9 && rt.Minor <= 12)
	}}

	cfg := scanConfig()
	cfg.MinorMaxStep = 4

	search := NewFrontierSearch(&mockVersionSource{releases: []entities.ReleaseVersion{"1.0"}}, prober, nil)
	result, err := search.Search(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	want := []string{"3.3", "3.4", "3.5", "3.9", "3.10", "3.11", "3.12"}
	if got := result.Targets.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Targets.Keys() = %v, want %v", got, want)
	}
}

func TestFrontierSearch_Search_GapBeyondToleranceStopsEarly(t *testing.T) {
	prober := &mockProber{compatible: func(_ entities.ReleaseVersion, rt entities.RuntimeVersion) bool {
		return rt.Major == 3 && (rt.Minor == 0 || rt.Minor == 4)
	}}

	cfg := scanConfig()
	cfg.MajorBegin = 3
	cfg.MinorMaxStep = 2

	search := NewFrontierSearch(&mockVersionSource{releases: []entities.ReleaseVersion{"1.0"}}, prober, nil)
	result, err := search.Search(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if got := result.Targets.Keys(); !reflect.DeepEqual(got, []string{"3.0"}) {
		t.Errorf("Targets.Keys() = %v, want [3.0]", got)
	}
}

func TestFrontierSearch_Search_TerminationBound(t *testing.T) {
	tests := []struct {
		majorMaxStep int
		minorMaxStep int
	}{
		{1, 1},
		{2, 10},
		{3, 4},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dx%d", tt.majorMaxStep, tt.minorMaxStep), func(t *testing.T) {
			prober := &mockProber{compatible: func(entities.ReleaseVersion, entities.RuntimeVersion) bool { return false }}

			cfg := scanConfig()
			cfg.MajorMaxStep = tt.majorMaxStep
			cfg.MinorMaxStep = tt.minorMaxStep

			search := NewFrontierSearch(&mockVersionSource{releases: []entities.ReleaseVersion{"1.0", "2.0"}}, prober, nil)
			result, err := search.Search(context.Background(), cfg)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}

			if want := tt.majorMaxStep * tt.minorMaxStep; len(result.Rounds) != want {
				t.Errorf("len(Rounds) = %d, want %d", len(result.Rounds), want)
			}
			if result.Targets.Len() != 0 {
				t.Errorf("Targets.Len() = %d, want 0", result.Targets.Len())
			}
		})
	}
}

func TestFrontierSearch_Search_LastCompatibleReleaseWins(t *testing.T) {
	releases := []entities.ReleaseVersion{"0.3", "0.1", "0.2"}
	prober := &mockProber{compatible: func(rel entities.ReleaseVersion, rt entities.RuntimeVersion) bool {
		return rt.Major == 3 && rt.Minor == 0 && rel != "0.2"
	}}

	cfg := scanConfig()
	cfg.MajorBegin = 3

	search := NewFrontierSearch(&mockVersionSource{releases: releases}, prober, nil)
	result, err := search.Search(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	got, ok := result.Targets.Get("3.0")
	if !ok {
		t.Fatal("expected 3.0 in targets")
	}
	if got != "0.1" {
		t.Errorf("Targets[3.0] = %q, want %q (last compatible in release order)", got, "0.1")
	}
}

func TestFrontierSearch_Search_ConcurrentMatchesSequential(t *testing.T) {
	releases := []entities.ReleaseVersion{"1.0", "1.1", "1.2", "2.0", "2.1"}
	compatible := func(rel entities.ReleaseVersion, rt entities.RuntimeVersion) bool {
		if rt.Major != 3 {
			return false
		}
		switch rel {
		case "1.0", "1.1":
			return rt.Minor <= 6
		case "1.2":
			return rt.Minor >= 4 && rt.Minor <= 9
		default:
			return rt.Minor >= 8 && rt.Minor <= 12
		}
	}

	sequential := scanConfig()
	parallel := scanConfig()
	parallel.Concurrency = 4

	seqResult, err := NewFrontierSearch(&mockVersionSource{releases: releases}, &mockProber{compatible: compatible}, nil).
		Search(context.Background(), sequential)
	if err != nil {
		t.Fatalf("sequential Search() error = %v", err)
	}
	parResult, err := NewFrontierSearch(&mockVersionSource{releases: releases}, &mockProber{compatible: compatible}, nil).
		Search(context.Background(), parallel)
	if err != nil {
		t.Fatalf("parallel Search() error = %v", err)
	}

	if !reflect.DeepEqual(seqResult.Targets.Entries(), parResult.Targets.Entries()) {
		t.Errorf("parallel targets %v differ from sequential %v", parResult.Targets.Entries(), seqResult.Targets.Entries())
	}
	if got, _ := parResult.Targets.Get("3.9"); got != "2.1" {
		t.Errorf("Targets[3.9] = %q, want 2.1", got)
	}
}

func TestFrontierSearch_Search_IndexErrorIsFatal(t *testing.T) {
	versions := &mockVersionSource{err: fmt.Errorf("%w: exit 1", entities.ErrIndexQuery)}
	prober := &mockProber{compatible: func(entities.ReleaseVersion, entities.RuntimeVersion) bool { return true }}

	_, err := NewFrontierSearch(versions, prober, nil).Search(context.Background(), scanConfig())
	if !errors.Is(err, entities.ErrIndexQuery) {
		t.Fatalf("Search() error = %v, want ErrIndexQuery", err)
	}
	if prober.calls != 0 {
		t.Errorf("prober called %d times after index failure", prober.calls)
	}
}

func TestFrontierSearch_Search_ProberErrorAborts(t *testing.T) {
	probeErr := errors.New("pip not found")
	prober := &mockProber{err: probeErr}

	_, err := NewFrontierSearch(&mockVersionSource{releases: []entities.ReleaseVersion{"1.0"}}, prober, nil).
		Search(context.Background(), scanConfig())
	if !errors.Is(err, probeErr) {
		t.Fatalf("Search() error = %v, want %v", err, probeErr)
	}
}

func TestFrontierSearch_Search_NoReleases(t *testing.T) {
	prober := &mockProber{compatible: func(entities.ReleaseVersion, entities.RuntimeVersion) bool { return true }}

	result, err := NewFrontierSearch(&mockVersionSource{}, prober, nil).Search(context.Background(), scanConfig())
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if result.Targets.Len() != 0 || prober.calls != 0 {
		t.Errorf("expected empty scan, got %d targets and %d probes", result.Targets.Len(), prober.calls)
	}
}

func TestFrontierSearch_Search_InvalidConfig(t *testing.T) {
	cfg := scanConfig()
	cfg.MinorMaxStep = 0

	_, err := NewFrontierSearch(&mockVersionSource{}, &mockProber{}, nil).Search(context.Background(), cfg)
	if !errors.Is(err, entities.ErrInvalidConfig) {
		t.Fatalf("Search() error = %v, want ErrInvalidConfig", err)
	}
}

func TestFrontierSearch_Search_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prober := &mockProber{compatible: func(entities.ReleaseVersion, entities.RuntimeVersion) bool { return true }}
	_, err := NewFrontierSearch(&mockVersionSource{releases: []entities.ReleaseVersion{"1.0"}}, prober, nil).Search(ctx, scanConfig())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Search() error = %v, want context.Canceled", err)
	}
}

// cancelingProber cancels the scan on its first call
type cancelingProber struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	calls  int
}

func (p *cancelingProber) IsCompatible(ctx context.Context, _ string, _ entities.ReleaseVersion, _ entities.RuntimeVersion) (bool, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	p.cancel()
	return false, ctx.Err()
}

func TestFrontierSearch_Search_CancelledStopsParallelProbes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	releases := make([]entities.ReleaseVersion, 20)
	for i := range releases {
		releases[i] = fmt.Sprintf("0.%d", i)
	}

	cfg := scanConfig()
	cfg.Concurrency = 2
	prober := &cancelingProber{cancel: cancel}

	_, err := NewFrontierSearch(&mockVersionSource{releases: releases}, prober, nil).Search(ctx, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Search() error = %v, want context.Canceled", err)
	}
	if prober.calls > cfg.Concurrency {
		t.Errorf("prober called %d times after cancellation, want at most %d", prober.calls, cfg.Concurrency)
	}
}

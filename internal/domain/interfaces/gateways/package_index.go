// Package gateways defines interfaces for external service adapters.
package gateways

import (
	"context"

	"github.com/ochairo/pyprobe/internal/domain/entities"
)

// VersionSource lists the releases a package index offers for a package
type VersionSource interface {
	// ListReleaseVersions returns releases in the fixed order every runtime
	// version is probed in. Fails with entities.ErrIndexQuery.
	ListReleaseVersions(ctx context.Context, packageName, indexURL string) ([]entities.ReleaseVersion, error)
}

// CompatibilityProber decides whether a release installs under a runtime version
type CompatibilityProber interface {
	// IsCompatible runs a dry-run install. A non-zero exit is reported as
	// false with a nil error; the error is reserved for failures to run the
	// check at all.
	IsCompatible(ctx context.Context, packageName string, release entities.ReleaseVersion, runtime entities.RuntimeVersion) (bool, error)
}

// ArtifactFetcher downloads one distribution and extracts its payload
type ArtifactFetcher interface {
	// FetchAndExtract returns the extracted payload; ownership of its
	// directory passes to the caller.
	FetchAndExtract(ctx context.Context, packageName string, version entities.ReleaseVersion, indexURL string) (*entities.ExtractedArtifact, error)
}

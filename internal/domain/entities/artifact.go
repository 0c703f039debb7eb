// Package entities defines core domain models and data structures.
package entities

import (
	"fmt"
	"os"
)

// Artifact formats recognised by the extractor
const (
	FormatWheel   = "wheel"
	FormatSdist   = "sdist"
	FormatUnknown = "unknown"
)

// ExtractedArtifact is the normalized payload of one downloaded distribution.
// The caller owns Path and is responsible for removing it.
type ExtractedArtifact struct {
	Package    string
	Version    ReleaseVersion
	Format     string // "wheel" or "sdist"
	Path       string // directory holding the extracted payload
	SourceFile string // file name of the downloaded distribution
	SHA256     string // digest of the downloaded distribution
}

// Remove deletes the extracted payload directory
func (a *ExtractedArtifact) Remove() error {
	if a == nil || a.Path == "" {
		return nil
	}
	if err := os.RemoveAll(a.Path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", a.Path, err)
	}
	return nil
}

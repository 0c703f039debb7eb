package gateways

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/mholt/archiver"

	"github.com/ochairo/pyprobe/internal/domain/entities"
	"github.com/ochairo/pyprobe/internal/domain/interfaces"
)

// magic bytes needed by the filetype matchers
const sniffLength = 262

// ArtifactExtractor downloads a single distribution with pip and extracts
// its payload into a directory owned by the caller.
type ArtifactExtractor struct {
	runner   Runner
	config   PipConfig
	tempRoot string
	logger   interfaces.Logger
}

// ArtifactExtractorConfig configures an ArtifactExtractor
type ArtifactExtractorConfig struct {
	Pip      PipConfig
	TempRoot string // parent of all temporary directories; empty uses os.TempDir
}

// NewArtifactExtractor creates a new artifact extractor
func NewArtifactExtractor(runner Runner, config ArtifactExtractorConfig, logger interfaces.Logger) *ArtifactExtractor {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &ArtifactExtractor{
		runner:   runner,
		config:   config.Pip,
		tempRoot: config.TempRoot,
		logger:   logger,
	}
}

// FetchAndExtract downloads packageName==version without dependencies and
// returns its extracted payload. Every temporary directory except the
// returned one is removed before returning, on success and on failure.
func (e *ArtifactExtractor) FetchAndExtract(ctx context.Context, packageName string, version entities.ReleaseVersion, indexURL string) (artifact *entities.ExtractedArtifact, err error) {
	scope := newTempScope(e.tempRoot)
	defer func() {
		if cleanupErr := scope.cleanup(); cleanupErr != nil {
			e.logger.Warn("failed to remove temporary directory", interfaces.F("error", cleanupErr))
		}
	}()

	downloadDir, err := scope.mkdir("pyprobe-download-")
	if err != nil {
		return nil, err
	}

	archivePath, err := e.download(ctx, packageName, version, indexURL, downloadDir)
	if err != nil {
		return nil, err
	}

	digest, err := sha256File(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to hash artifact: %w", err)
	}

	format, err := e.detectFormat(archivePath)
	if err != nil {
		return nil, err
	}

	extractDir, err := scope.mkdir("pyprobe-extract-")
	if err != nil {
		return nil, err
	}

	var payloadDir string
	switch format {
	case entities.FormatWheel:
		if err := archiver.NewZip().Unarchive(archivePath, extractDir); err != nil {
			return nil, fmt.Errorf("%w: failed to unzip %s: %w", entities.ErrMalformedArtifact, filepath.Base(archivePath), err)
		}
		payloadDir = extractDir

	case entities.FormatSdist:
		if err := archiver.NewTarGz().Unarchive(archivePath, extractDir); err != nil {
			return nil, fmt.Errorf("%w: failed to untar %s: %w", entities.ErrMalformedArtifact, filepath.Base(archivePath), err)
		}
		finalDir, err := scope.mkdir("pyprobe-payload-")
		if err != nil {
			return nil, err
		}
		if err := copySdistPayload(extractDir, finalDir, packageName); err != nil {
			return nil, err
		}
		payloadDir = finalDir
	}

	artifact = &entities.ExtractedArtifact{
		Package:    packageName,
		Version:    version,
		Format:     format,
		Path:       scope.release(payloadDir),
		SourceFile: filepath.Base(archivePath),
		SHA256:     digest,
	}

	e.logger.Info("extracted artifact",
		interfaces.F("package", packageName),
		interfaces.F("version", version),
		interfaces.F("file", artifact.SourceFile),
		interfaces.F("path", artifact.Path))

	return artifact, nil
}

// download runs pip download into dir and returns the single downloaded file
func (e *ArtifactExtractor) download(ctx context.Context, packageName string, version entities.ReleaseVersion, indexURL, dir string) (string, error) {
	args := e.config.args("download",
		"--no-deps",
		"--prefer-binary",
		"--quiet",
		"--dest", dir,
		requirement(packageName, version),
	)
	args = withIndex(args, indexURL)

	result := e.runner.Run(ctx, CommandSpec{Args: args, Timeout: e.config.Timeout})
	if !result.Success {
		return "", fmt.Errorf("%w: %s: %w", entities.ErrDownload, requirement(packageName, version), result.CommandError(args))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read download directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, entry.Name())
		}
	}
	if len(files) != 1 {
		return "", fmt.Errorf("%w: expected exactly one downloaded file, found %d", entities.ErrMalformedArtifact, len(files))
	}

	return filepath.Join(dir, files[0]), nil
}

// FormatForFile maps a distribution file name to its format by suffix
func FormatForFile(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".whl"), strings.HasSuffix(lower, ".zip"):
		return entities.FormatWheel
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return entities.FormatSdist
	}
	return entities.FormatUnknown
}

// detectFormat dispatches on suffix and confirms the content matches it
func (e *ArtifactExtractor) detectFormat(path string) (string, error) {
	name := filepath.Base(path)
	format := FormatForFile(name)
	if format == entities.FormatUnknown {
		return "", fmt.Errorf("%w: %s", entities.ErrUnsupportedFormat, name)
	}

	head, err := readHead(path, sniffLength)
	if err != nil {
		return "", fmt.Errorf("failed to read artifact: %w", err)
	}

	want := "zip"
	if format == entities.FormatSdist {
		want = "gz"
	}
	if !filetype.Is(head, want) {
		return "", fmt.Errorf("%w: %s does not contain %s data", entities.ErrUnsupportedFormat, name, want)
	}

	return format, nil
}

// copySdistPayload copies the module and egg-info directories found under
// the single top-level directory of extractDir into finalDir.
func copySdistPayload(extractDir, finalDir, packageName string) error {
	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return fmt.Errorf("failed to read extracted directory: %w", err)
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return fmt.Errorf("%w: source archive must contain a single top-level directory, found %d entries",
			entities.ErrMalformedArtifact, len(entries))
	}
	top := filepath.Join(extractDir, entries[0].Name())

	for _, suffix := range []string{"", ".egg-info"} {
		name, err := findChild(top, packageName, suffix)
		if err != nil {
			return err
		}
		if err := copyTree(filepath.Join(top, name), filepath.Join(finalDir, name)); err != nil {
			return fmt.Errorf("failed to copy %s: %w", name, err)
		}
	}
	return nil
}

// findChild returns the child of dir named packageName+suffix, accepting
// the underscore spelling setuptools uses for hyphenated names.
func findChild(dir, packageName, suffix string) (string, error) {
	candidates := []string{packageName + suffix}
	if normalized := strings.ReplaceAll(packageName, "-", "_"); normalized != packageName {
		candidates = append(candidates, normalized+suffix)
	}

	for _, name := range candidates {
		info, err := os.Stat(filepath.Join(dir, name))
		if err == nil && info.IsDir() {
			return name, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s not found in %s", entities.ErrMalformedArtifact, candidates[0], filepath.Base(dir))
}

func readHead(path string, n int) ([]byte, error) {
	//nolint:gosec // G304: path is the file pip just downloaded
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:read], nil
}

// sha256File calculates the SHA256 checksum of a file
func sha256File(path string) (string, error) {
	//nolint:gosec // G304: path is the file pip just downloaded
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

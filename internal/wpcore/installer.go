package wpcore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/corewp/corewp/internal/logging"
)

const (
	// DefaultDownloadBaseURL is where release archives are published.
	DefaultDownloadBaseURL = "https://wordpress.org/"

	// archivePrefix names the release archive files.
	archivePrefix = "wordpress-"

	// archiveFileName is the fixed local download location, sibling to
	// the target directory. The cleanup pass removes leftovers here.
	archiveFileName = "wordpress.zip"

	// ProtectedConfigFile is never deleted from the target directory's
	// top level; this preserves user configuration across reinstalls.
	ProtectedConfigFile = "wp-config.php"

	// suffixNoContent selects the archive variant without default themes
	// and plugins.
	suffixNoContent = "-no-content.zip"
	suffixFull      = ".zip"
)

// payloadDirs are the core payload subdirectories replaced on every
// install. Any other subdirectory of the target (wp-content in
// particular) is left untouched.
var payloadDirs = []string{"wp-admin", "wp-includes"}

// ArchiveFetcher downloads a URL to a local file.
type ArchiveFetcher interface {
	Fetch(ctx context.Context, url, destPath string) error
}

// InstallRequest carries the placement options for one install.
type InstallRequest struct {
	// TargetDir is the directory receiving the payload, resolved against
	// the working directory when relative.
	TargetDir string

	// NoContent selects the archive variant without bundled content.
	NoContent bool
}

// Installer replaces the payload in a target directory with a freshly
// downloaded release. There is no transactional rollback: a failed or
// interrupted run may leave an archive file or staging directory behind,
// and the next run's cleanup pass recovers from that. Concurrent
// invocations against the same target directory are unsupported.
type Installer struct {
	// BaseURL is the archive download base. Defaults to
	// DefaultDownloadBaseURL.
	BaseURL string

	fetcher   ArchiveFetcher
	extractor Extractor
}

// NewInstaller creates an Installer with the default downloader and the
// extractor selected by the capability probe.
func NewInstaller() *Installer {
	return &Installer{
		BaseURL:   DefaultDownloadBaseURL,
		fetcher:   NewDownloader(),
		extractor: NewExtractor(),
	}
}

// NewInstallerWith creates an Installer with explicit collaborators.
// extractor may be nil, in which case Install fails with
// ErrUnzipUnavailable.
func NewInstallerWith(fetcher ArchiveFetcher, extractor Extractor) *Installer {
	return &Installer{
		BaseURL:   DefaultDownloadBaseURL,
		fetcher:   fetcher,
		extractor: extractor,
	}
}

// ArchiveURL builds the download URL for a version and content variant.
func (i *Installer) ArchiveURL(v Version, noContent bool) string {
	suffix := suffixFull
	if noContent {
		suffix = suffixNoContent
	}
	return i.BaseURL + archivePrefix + v.String() + suffix
}

// Install runs the staged replacement: cleanup, download, extraction into
// a hidden sibling staging directory, and relocation of the payload into
// the target. Each step must complete before the next begins; failure
// aborts the rest of the operation.
func (i *Installer) Install(ctx context.Context, v Version, req InstallRequest) error {
	log := logging.FromContext(ctx)

	target, err := filepath.Abs(req.TargetDir)
	if err != nil {
		return fmt.Errorf("resolving target directory: %w", err)
	}

	parent := filepath.Dir(target)
	staging := filepath.Join(parent, "."+filepath.Base(target))
	archive := filepath.Join(parent, archiveFileName)

	log.Info().
		Str("component", "installer").
		Str("operation", "install").
		Str("version", v.String()).
		Str("target", target).
		Msg("installing core payload")

	if cleanErr := i.cleanup(ctx, target, staging, archive); cleanErr != nil {
		return cleanErr
	}

	// The target directory must exist before the fetch: the archive lands
	// in its parent, which may not exist yet either.
	if mkErr := os.MkdirAll(target, 0o750); mkErr != nil {
		return fmt.Errorf("creating target directory: %w", mkErr)
	}

	url := i.ArchiveURL(v, req.NoContent)
	if fetchErr := i.fetcher.Fetch(ctx, url, archive); fetchErr != nil {
		return fetchErr
	}
	if _, statErr := os.Stat(archive); statErr != nil {
		return fmt.Errorf("%w: no archive at %s after download", ErrDownloadFailed, archive)
	}

	if i.extractor == nil {
		return ErrUnzipUnavailable
	}
	if extractErr := i.extractor.Extract(archive, staging); extractErr != nil {
		return extractErr
	}

	if rmErr := os.Remove(archive); rmErr != nil {
		return fmt.Errorf("removing downloaded archive: %w", rmErr)
	}

	if moveErr := i.moveStagedPayload(staging, target); moveErr != nil {
		return moveErr
	}

	log.Info().
		Str("component", "installer").
		Str("operation", "install").
		Str("version", v.String()).
		Str("target", target).
		Msg("core payload installed")

	return nil
}

// cleanup removes leftovers from previous runs and clears the replaceable
// parts of the target: the core payload subdirectories and every file
// directly inside the target except the protected configuration file.
// This pass is the system's only recovery mechanism after an interrupted
// run.
func (i *Installer) cleanup(ctx context.Context, target, staging, archive string) error {
	log := logging.FromContext(ctx)
	log.Debug().
		Str("component", "installer").
		Str("operation", "cleanup").
		Str("target", target).
		Msg("cleaning target and leftovers")

	if err := os.Remove(archive); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing leftover archive: %w", err)
	}

	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("removing leftover staging directory: %w", err)
	}

	for _, dir := range payloadDirs {
		if err := os.RemoveAll(filepath.Join(target, dir)); err != nil {
			return fmt.Errorf("removing payload directory %s: %w", dir, err)
		}
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading target directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == ProtectedConfigFile {
			continue
		}
		if rmErr := os.Remove(filepath.Join(target, entry.Name())); rmErr != nil {
			return fmt.Errorf("removing %s: %w", entry.Name(), rmErr)
		}
	}

	return nil
}

// moveStagedPayload relocates the contents of the single top-level
// directory inside staging into target, using copy-then-remove semantics
// so that staging and target may live on different storage devices.
func (i *Installer) moveStagedPayload(staging, target string) error {
	entries, err := os.ReadDir(staging)
	if err != nil {
		return fmt.Errorf("reading staging directory: %w", err)
	}

	var payload string
	for _, entry := range entries {
		if entry.IsDir() {
			payload = filepath.Join(staging, entry.Name())
			break
		}
	}
	if payload == "" {
		return fmt.Errorf("%w: archive contained no payload directory", ErrExtractionFailed)
	}

	if copyErr := copyTree(payload, target); copyErr != nil {
		return copyErr
	}

	if rmErr := os.RemoveAll(staging); rmErr != nil {
		return fmt.Errorf("removing staging directory: %w", rmErr)
	}

	return nil
}

// copyTree duplicates the contents of src into dst, creating directories
// as needed and preserving file modes.
func copyTree(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if mkErr := os.MkdirAll(dstPath, 0o750); mkErr != nil {
				return fmt.Errorf("creating %s: %w", dstPath, mkErr)
			}
			if copyErr := copyTree(srcPath, dstPath); copyErr != nil {
				return copyErr
			}
			continue
		}

		if copyErr := copyFile(srcPath, dstPath); copyErr != nil {
			return copyErr
		}
	}

	return nil
}

// copyFile copies a file from src to dst, preserving permissions.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	if _, copyErr := io.Copy(dstFile, srcFile); copyErr != nil {
		_ = dstFile.Close()
		return fmt.Errorf("copying file: %w", copyErr)
	}

	if closeErr := dstFile.Close(); closeErr != nil {
		return fmt.Errorf("closing destination: %w", closeErr)
	}

	return nil
}

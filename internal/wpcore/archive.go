package wpcore

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// maxFileSize caps a single extracted file at 500MB to bound memory and
// disk use when reading untrusted archives.
const maxFileSize = 500 * 1024 * 1024

// Extractor unpacks a zip archive into a directory. Implementations are
// selected by a capability probe at construction time: a system unzip
// binary when present, the library zip reader otherwise.
type Extractor interface {
	Extract(archivePath, destDir string) error
}

// NewExtractor probes the host for extraction capabilities and returns
// the preferred one. The library reader is always compiled in, so the
// probe cannot fail here; installers constructed without any extractor
// still fail hard with ErrUnzipUnavailable.
func NewExtractor() Extractor {
	if path, err := exec.LookPath("unzip"); err == nil {
		return &commandExtractor{binPath: path}
	}
	return &zipExtractor{}
}

// commandExtractor shells out to the system unzip utility.
type commandExtractor struct {
	binPath string
}

func (e *commandExtractor) Extract(archivePath, destDir string) error {
	out, err := exec.Command(e.binPath, "-q", "-o", archivePath, "-d", destDir).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: unzip: %v: %s", ErrExtractionFailed, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// zipExtractor reads the archive with the standard zip reader.
type zipExtractor struct{}

func (e *zipExtractor) Extract(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrExtractionFailed, archivePath, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := extractZipEntry(f, destDir); err != nil {
			return err
		}
	}

	return nil
}

func extractZipEntry(f *zip.File, destDir string) error {
	path, err := sanitizePath(destDir, f.Name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	if f.FileInfo().IsDir() {
		if mkErr := os.MkdirAll(path, 0o750); mkErr != nil {
			return fmt.Errorf("creating directory %s: %w", path, mkErr)
		}
		return nil
	}

	if mkErr := os.MkdirAll(filepath.Dir(path), 0o750); mkErr != nil {
		return fmt.Errorf("creating directory %s: %w", filepath.Dir(path), mkErr)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: opening entry %s: %v", ErrExtractionFailed, f.Name, err)
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		// Entries written without permission bits still need to be readable.
		mode = 0o644
	}

	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}

	if copyErr := copyLimited(out, rc, maxFileSize, f.Name); copyErr != nil {
		_ = out.Close()
		return copyErr
	}

	if closeErr := out.Close(); closeErr != nil {
		return fmt.Errorf("closing file %s: %w", path, closeErr)
	}

	return nil
}

// copyLimited copies an archive entry, failing when it exceeds limit
// bytes. Reading one byte past the limit distinguishes an at-limit entry
// from an oversized one.
func copyLimited(dst io.Writer, src io.Reader, limit int64, name string) error {
	written, err := io.Copy(dst, io.LimitReader(src, limit+1))
	if err != nil {
		return fmt.Errorf("%w: extracting %s: %v", ErrExtractionFailed, name, err)
	}
	if written > limit {
		return fmt.Errorf("%w: entry %s exceeds the %d byte limit", ErrExtractionFailed, name, limit)
	}
	return nil
}

// sanitizePath joins destDir and name, rejecting entries that would
// escape the destination (zip-slip).
func sanitizePath(destDir, name string) (string, error) {
	path := filepath.Join(destDir, name)
	if !strings.HasPrefix(path, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes destination directory", name)
	}
	return path, nil
}

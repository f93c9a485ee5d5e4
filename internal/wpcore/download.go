package wpcore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/corewp/corewp/internal/logging"
)

// Downloader fetches release archives over HTTPS. No timeout is applied
// here; inject an HTTPClient with one if the caller wants that policy.
type Downloader struct {
	// HTTPClient performs the requests. Defaults to a plain client.
	HTTPClient *http.Client
}

// NewDownloader creates a Downloader with a default HTTP client.
func NewDownloader() *Downloader {
	return &Downloader{HTTPClient: &http.Client{}}
}

// Fetch downloads url to destPath. A non-2xx response or a write failure
// yields ErrDownloadFailed. There are no retries: a failed run is simply
// re-invoked by the operator.
func (d *Downloader) Fetch(ctx context.Context, url, destPath string) error {
	log := logging.FromContext(ctx)
	log.Debug().
		Str("component", "downloader").
		Str("url", url).
		Str("dest", destPath).
		Msg("downloading archive")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building download request: %w", err)
	}

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: fetching %s: %v", ErrDownloadFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s returned status %d", ErrDownloadFailed, url, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating archive file: %w", err)
	}

	if _, copyErr := io.Copy(out, resp.Body); copyErr != nil {
		_ = out.Close()
		_ = os.Remove(destPath)
		return fmt.Errorf("%w: writing %s: %v", ErrDownloadFailed, destPath, copyErr)
	}

	if syncErr := out.Sync(); syncErr != nil {
		_ = out.Close()
		return fmt.Errorf("syncing archive file: %w", syncErr)
	}

	if closeErr := out.Close(); closeErr != nil {
		return fmt.Errorf("closing archive file: %w", closeErr)
	}

	return nil
}

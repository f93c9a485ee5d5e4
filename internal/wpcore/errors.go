package wpcore

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the engine. All are fatal to the run except that
// an unavailable catalog is tolerated as long as no unresolved constraint
// actually needed it.
var (
	// ErrUnresolvableVersion is the base class for every failure to turn a
	// version constraint into a concrete version.
	ErrUnresolvableVersion = errors.New("unresolvable version constraint")

	// ErrCatalogUnavailable means the remote version catalog could not be
	// fetched or parsed while a non-exact constraint needed it.
	ErrCatalogUnavailable = fmt.Errorf("%w: version catalog unavailable", ErrUnresolvableVersion)

	// ErrNoSatisfyingVersion means the catalog was reachable but no
	// published version satisfies the constraint.
	ErrNoSatisfyingVersion = fmt.Errorf("%w: no published version satisfies constraint", ErrUnresolvableVersion)

	// ErrDownloadFailed means the archive fetch returned a non-success
	// status or produced no file on disk.
	ErrDownloadFailed = errors.New("archive download failed")

	// ErrUnzipUnavailable means no extraction capability is present.
	ErrUnzipUnavailable = errors.New("no unzip capability available")

	// ErrExtractionFailed means the archive was corrupt or the extraction
	// capability reported an error.
	ErrExtractionFailed = errors.New("archive extraction failed")
)

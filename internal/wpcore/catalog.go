package wpcore

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/corewp/corewp/internal/logging"
)

// DefaultCatalogURL is the WordPress.org version-check endpoint listing
// every published core release.
const DefaultCatalogURL = "https://api.wordpress.org/core/version-check/1.7/"

// VersionSource lists the published core versions, newest first. An empty
// result means the catalog is unavailable.
type VersionSource interface {
	Versions(ctx context.Context) []Version
}

// Catalog fetches the remote version manifest. The fetched list is
// memoized for the lifetime of the Catalog, so one instance performs at
// most one network call no matter how often it is consulted.
//
// Timeout and cancellation are the caller's policy: inject an HTTPClient
// with a timeout, or pass a cancelable context.
type Catalog struct {
	// BaseURL is the version-check endpoint. Defaults to DefaultCatalogURL.
	BaseURL string

	// HTTPClient performs the catalog request. Defaults to a plain client.
	HTTPClient *http.Client

	fetched  bool
	versions []Version
}

// NewCatalog creates a Catalog against the WordPress.org endpoint.
func NewCatalog() *Catalog {
	return &Catalog{
		BaseURL:    DefaultCatalogURL,
		HTTPClient: &http.Client{},
	}
}

// versionManifest mirrors the version-check response shape. Only the
// offer version strings matter here.
type versionManifest struct {
	Offers []struct {
		Version string `json:"version"`
	} `json:"offers"`
}

// Versions returns all published versions, normalized, deduplicated and
// sorted descending. Any network or parse failure yields an empty list;
// callers must treat that as "catalog unavailable" rather than an error.
func (c *Catalog) Versions(ctx context.Context) []Version {
	if c.fetched {
		return c.versions
	}
	c.fetched = true
	c.versions = c.fetch(ctx)
	return c.versions
}

func (c *Catalog) fetch(ctx context.Context) []Version {
	log := logging.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL, nil)
	if err != nil {
		log.Warn().
			Str("component", "catalog").
			Str("url", c.BaseURL).
			Err(err).
			Msg("building catalog request failed")
		return nil
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Warn().
			Str("component", "catalog").
			Str("url", c.BaseURL).
			Err(err).
			Msg("fetching version catalog failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().
			Str("component", "catalog").
			Str("url", c.BaseURL).
			Int("status", resp.StatusCode).
			Msg("version catalog returned non-200 status")
		return nil
	}

	var manifest versionManifest
	if decodeErr := json.NewDecoder(resp.Body).Decode(&manifest); decodeErr != nil {
		log.Warn().
			Str("component", "catalog").
			Str("url", c.BaseURL).
			Err(decodeErr).
			Msg("version catalog body is malformed")
		return nil
	}

	seen := make(map[string]struct{}, len(manifest.Offers))
	versions := make([]Version, 0, len(manifest.Offers))
	for _, offer := range manifest.Offers {
		v := Normalize(offer.Version)
		key := v.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		versions = append(versions, v)
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Compare(versions[j]) > 0
	})

	log.Debug().
		Str("component", "catalog").
		Int("versions", len(versions)).
		Msg("version catalog fetched")

	return versions
}

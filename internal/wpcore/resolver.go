package wpcore

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"

	"github.com/corewp/corewp/internal/logging"
)

// exactVersionRe matches constraints that already name a concrete version.
// Exact pins resolve without touching the catalog.
var exactVersionRe = regexp.MustCompile(`^\d+\.\d(\.\d+)*$`)

// IsExactConstraint reports whether constraint pins a concrete version.
func IsExactConstraint(constraint string) bool {
	return exactVersionRe.MatchString(constraint)
}

// isLatestConstraint reports whether constraint asks for the newest
// published version. An empty constraint means the same thing.
func isLatestConstraint(constraint string) bool {
	return constraint == "" || constraint == "latest" || constraint == "*"
}

// Resolver turns a version constraint into one concrete, normalized
// version. Results are memoized per distinct constraint string for the
// lifetime of the Resolver.
type Resolver struct {
	catalog VersionSource
	cache   map[string]Version
}

// NewResolver creates a Resolver backed by the given catalog.
func NewResolver(catalog VersionSource) *Resolver {
	return &Resolver{
		catalog: catalog,
		cache:   make(map[string]Version),
	}
}

// Resolve returns the version that constraint pins or, for ranges and
// keywords, the newest catalog version satisfying it. It fails with
// ErrCatalogUnavailable when a non-exact constraint needs an unreachable
// catalog, and with ErrNoSatisfyingVersion when nothing matches.
func (r *Resolver) Resolve(ctx context.Context, constraint string) (Version, error) {
	if v, ok := r.cache[constraint]; ok {
		return v, nil
	}

	v, err := r.resolve(ctx, constraint)
	if err != nil {
		return Version{}, err
	}

	r.cache[constraint] = v

	logging.FromContext(ctx).Debug().
		Str("component", "resolver").
		Str("constraint", constraint).
		Str("version", v.String()).
		Msg("constraint resolved")

	return v, nil
}

func (r *Resolver) resolve(ctx context.Context, constraint string) (Version, error) {
	if IsExactConstraint(constraint) {
		return Normalize(constraint), nil
	}

	available := r.catalog.Versions(ctx)
	if len(available) == 0 {
		return Version{}, fmt.Errorf("resolving %q: %w", constraint, ErrCatalogUnavailable)
	}

	if isLatestConstraint(constraint) {
		return available[0], nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return Version{}, fmt.Errorf("resolving %q: invalid constraint: %w", constraint, ErrNoSatisfyingVersion)
	}

	// The catalog is sorted descending, so the first satisfying entry is
	// the maximum.
	for _, v := range available {
		sv, parseErr := semver.NewVersion(v.String())
		if parseErr != nil {
			continue
		}
		if c.Check(sv) {
			return v, nil
		}
	}

	return Version{}, fmt.Errorf("resolving %q: %w", constraint, ErrNoSatisfyingVersion)
}

// Satisfies reports whether version v satisfies constraint, delegating
// range matching to the semver library. Keyword constraints are satisfied
// by any version. It returns false for constraints that do not parse.
func Satisfies(v Version, constraint string) bool {
	if isLatestConstraint(constraint) {
		return true
	}
	if IsExactConstraint(constraint) {
		return Normalize(constraint).Equal(v)
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false
	}
	sv, err := semver.NewVersion(v.String())
	if err != nil {
		return false
	}
	return c.Check(sv)
}

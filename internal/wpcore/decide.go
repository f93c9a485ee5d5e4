package wpcore

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"

	"github.com/corewp/corewp/internal/logging"
)

// versionFilePath is the file inside the target directory that declares
// the installed core version via a plain variable assignment.
const versionFilePath = "wp-includes/version.php"

// wpVersionRe matches the $wp_version assignment line. The value is
// extracted textually; the file is never evaluated.
var wpVersionRe = regexp.MustCompile(`\$wp_version\s*=\s*'([^']+)'`)

// InstalledState describes what is currently present in the target
// directory. It is re-probed from disk for every decision, never cached,
// since the directory may change between invocations.
type InstalledState struct {
	Version  Version
	Detected bool
}

// ProbeInstalled reads the version declaration inside targetDir. A
// missing or unreadable file means nothing is installed.
func ProbeInstalled(targetDir string) InstalledState {
	f, err := os.Open(filepath.Join(targetDir, versionFilePath))
	if err != nil {
		return InstalledState{}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if m := wpVersionRe.FindStringSubmatch(scanner.Text()); m != nil {
			return InstalledState{Version: Normalize(m[1]), Detected: true}
		}
	}

	return InstalledState{}
}

// Decision is the outcome of comparing the configured constraint against
// the installed payload.
type Decision struct {
	ShouldInstall bool
	Version       Version
}

// DecisionEngine decides whether the payload in the target directory must
// be replaced, and with which version.
type DecisionEngine struct {
	resolver *Resolver
}

// NewDecisionEngine creates a DecisionEngine using resolver for full
// constraint resolution.
func NewDecisionEngine(resolver *Resolver) *DecisionEngine {
	return &DecisionEngine{resolver: resolver}
}

// Decide determines whether installation must run. The install context is
// lenient: an already-present version satisfying the constraint is kept
// without consulting the catalog. The update context always re-resolves
// and replaces when the resolved version differs from the installed one.
func (e *DecisionEngine) Decide(
	ctx context.Context,
	constraint string,
	installed InstalledState,
	updateContext bool,
) (Decision, error) {
	log := logging.FromContext(ctx)

	if !installed.Detected {
		v, err := e.resolver.Resolve(ctx, constraint)
		if err != nil {
			return Decision{}, err
		}
		log.Debug().
			Str("component", "engine").
			Str("operation", "decide").
			Str("version", v.String()).
			Msg("no installed version detected, installing")
		return Decision{ShouldInstall: true, Version: v}, nil
	}

	// Exact pin matching the installed version short-circuits before any
	// network call.
	if IsExactConstraint(constraint) && Normalize(constraint).Equal(installed.Version) {
		return Decision{ShouldInstall: false, Version: installed.Version}, nil
	}

	if !updateContext && Satisfies(installed.Version, constraint) {
		log.Debug().
			Str("component", "engine").
			Str("operation", "decide").
			Str("installed", installed.Version.String()).
			Str("constraint", constraint).
			Msg("installed version satisfies constraint, keeping it")
		return Decision{ShouldInstall: false, Version: installed.Version}, nil
	}

	v, err := e.resolver.Resolve(ctx, constraint)
	if err != nil {
		return Decision{}, err
	}

	if v.Equal(installed.Version) {
		return Decision{ShouldInstall: false, Version: installed.Version}, nil
	}

	log.Debug().
		Str("component", "engine").
		Str("operation", "decide").
		Str("installed", installed.Version.String()).
		Str("resolved", v.String()).
		Msg("installed version differs from resolved version")

	return Decision{ShouldInstall: true, Version: v}, nil
}

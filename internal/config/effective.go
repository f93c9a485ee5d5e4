// Package config merges the plugin's configuration sources: the
// plugin-specific extra block, the generic install-directory alias, and
// the version constraint discovered from the host manifest's declared
// dependencies.
package config

import (
	"github.com/corewp/corewp/internal/manifest"
)

const (
	// ExtraBlockKey is the plugin-specific settings block inside the
	// manifest's extra section.
	ExtraBlockKey = "corewp"

	// InstallDirKey is the generic install-directory alias shared with
	// other core installers.
	InstallDirKey = "wordpress-install-dir"

	// CoreDistributionType marks a root requirement as the core
	// distribution whose constraint drives version resolution.
	CoreDistributionType = "wordpress-core"

	// DefaultTargetDir receives the payload when nothing else is
	// configured.
	DefaultTargetDir = "wordpress"
)

// Effective is the merged plugin configuration for one run. It is built
// once at activation and read-only afterward.
type Effective struct {
	// VersionConstraint is the configured target version expression; an
	// empty value means "resolve to latest".
	VersionConstraint string

	// NoContent selects the archive variant without bundled themes and
	// plugins. Defaults to true.
	NoContent bool

	// TargetDir is where the payload lands, relative to the manifest's
	// directory unless absolute.
	TargetDir string
}

// Resolve builds the effective configuration. Target directory
// precedence: plugin block target-dir, then the install-dir alias, then
// DefaultTargetDir. Version precedence: the plugin block's version, then
// the constraint of the first directly declared requirement carrying the
// core distribution type.
func Resolve(extra map[string]any, requires []manifest.Requirement) Effective {
	cfg := Effective{
		NoContent: true,
		TargetDir: DefaultTargetDir,
	}

	if dir, ok := stringOrFirst(extra[InstallDirKey]); ok && dir != "" {
		cfg.TargetDir = dir
	}

	if block, ok := extra[ExtraBlockKey].(map[string]any); ok {
		if v, isString := block["version"].(string); isString {
			cfg.VersionConstraint = v
		}
		if nc, isBool := block["no-content"].(bool); isBool {
			cfg.NoContent = nc
		}
		if dir, isString := block["target-dir"].(string); isString && dir != "" {
			cfg.TargetDir = dir
		}
	}

	if cfg.VersionConstraint == "" {
		for _, req := range requires {
			if req.Type == CoreDistributionType {
				cfg.VersionConstraint = req.Constraint
				break
			}
		}
	}

	return cfg
}

// stringOrFirst accepts a plain string value or the first string of a
// list, matching the alias setting's two accepted shapes.
func stringOrFirst(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []any:
		if len(t) > 0 {
			if s, ok := t[0].(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

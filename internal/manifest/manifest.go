// Package manifest reads the host package manager's root manifest and
// lockfile. The plugin only needs the root-level declared requirements
// and the extra configuration block; transitive dependencies are
// deliberately ignored.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	manifestFileName = "composer.json"
	lockFileName     = "composer.lock"

	// defaultPackageType is assumed for requirements whose type cannot be
	// resolved from the lockfile.
	defaultPackageType = "library"
)

// Requirement is one directly declared dependency of the root manifest.
type Requirement struct {
	Name       string
	Constraint string
	Type       string
}

// Manifest holds the parts of the root manifest the plugin consumes.
type Manifest struct {
	// Dir is the directory the manifest was loaded from. Relative paths
	// in the configuration resolve against it. Empty for parsed-only
	// manifests.
	Dir string

	// Extra is the manifest's extra configuration block, possibly nil.
	Extra map[string]any

	// Requires lists the root manifest's directly declared dependencies
	// in declaration order.
	Requires []Requirement
}

// Load reads composer.json from dir and, when a composer.lock is present,
// resolves each direct requirement's package type from it. A missing
// lockfile is not an error; requirements then carry the default type.
func Load(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFileName))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", manifestFileName, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, err
	}

	types, err := loadLockTypes(filepath.Join(dir, lockFileName))
	if err != nil {
		return nil, err
	}
	for i := range m.Requires {
		if t, ok := types[m.Requires[i].Name]; ok {
			m.Requires[i].Type = t
		}
	}

	m.Dir = dir
	return m, nil
}

// Parse decodes a manifest document. The require block is read in
// document order so that "first declared requirement" is well defined.
func Parse(data []byte) (*Manifest, error) {
	var doc struct {
		Require json.RawMessage `json:"require"`
		Extra   map[string]any  `json:"extra"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", manifestFileName, err)
	}

	requires, err := parseOrderedRequires(doc.Require)
	if err != nil {
		return nil, fmt.Errorf("parsing %s require block: %w", manifestFileName, err)
	}

	return &Manifest{Extra: doc.Extra, Requires: requires}, nil
}

// parseOrderedRequires walks the require object's tokens to preserve the
// declaration order that map decoding would lose. Non-string constraint
// values are skipped.
func parseOrderedRequires(raw json.RawMessage) ([]Requirement, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("require block is not an object")
	}

	var requires []Requirement
	for dec.More() {
		keyTok, keyErr := dec.Token()
		if keyErr != nil {
			return nil, keyErr
		}
		name, _ := keyTok.(string)

		var value any
		if decodeErr := dec.Decode(&value); decodeErr != nil {
			return nil, decodeErr
		}

		constraint, ok := value.(string)
		if !ok {
			continue
		}

		requires = append(requires, Requirement{
			Name:       name,
			Constraint: constraint,
			Type:       defaultPackageType,
		})
	}

	return requires, nil
}

// loadLockTypes builds a package-name-to-type index from the lockfile.
// A missing lockfile yields an empty index.
func loadLockTypes(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", lockFileName, err)
	}

	var lock struct {
		Packages []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"packages"`
	}
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", lockFileName, err)
	}

	types := make(map[string]string, len(lock.Packages))
	for _, pkg := range lock.Packages {
		if pkg.Type != "" {
			types[pkg.Name] = pkg.Type
		}
	}

	return types, nil
}

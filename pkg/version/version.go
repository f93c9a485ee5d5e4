// Package version exposes the corewp build version.
package version

// version is overridden at build time via
// -ldflags "-X github.com/corewp/corewp/pkg/version.version=v1.2.3".
var version = "dev"

// GetVersion returns the build version string.
func GetVersion() string {
	return version
}

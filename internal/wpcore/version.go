package wpcore

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a WordPress core version in the project's own numbering
// convention: minor and patch are single decimal digits, and a zero patch
// is omitted from the canonical form ("4.7", never "4.7.0").
//
// A multi-digit minor or patch keeps only its leading digit, mirroring the
// upstream decade-based convention. This is deliberate and matches the
// behavior of the original installer even for hypothetical releases like
// 4.10 (which normalizes to 4.1).
type Version struct {
	Major    uint
	Minor    uint
	Patch    uint
	HasPatch bool
}

// Normalize canonicalizes a loosely-formatted version string. It never
// fails: pre-release/build suffixes (everything after the first '-') are
// dropped, non-numeric characters other than dots are stripped, and absent
// components default to zero. Worst case the result is "0.0".
func Normalize(raw string) Version {
	if i := strings.IndexByte(raw, '-'); i >= 0 {
		raw = raw[:i]
	}

	var b strings.Builder
	for _, r := range raw {
		if r == '.' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	parts := strings.Split(b.String(), ".")

	v := Version{
		Major: componentAt(parts, 0),
		Minor: leadingDigit(componentAt(parts, 1)),
	}

	if len(parts) > 2 {
		if patch := leadingDigit(componentAt(parts, 2)); patch != 0 {
			v.Patch = patch
			v.HasPatch = true
		}
	}

	return v
}

// String returns the canonical form: "{major}.{minor}" with ".{patch}"
// appended only when a non-zero patch is present.
func (v Version) String() string {
	if v.HasPatch {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compare orders versions by (major, minor, patch-or-0). It returns -1
// when v is older than other, 0 when equal, and 1 when newer.
func (v Version) Compare(other Version) int {
	if c := compareUint(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareUint(v.Minor, other.Minor); c != 0 {
		return c
	}
	return compareUint(v.patchOrZero(), other.patchOrZero())
}

// Equal reports whether two versions have the same canonical form.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

func (v Version) patchOrZero() uint {
	if v.HasPatch {
		return v.Patch
	}
	return 0
}

func compareUint(a, b uint) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// componentAt parses parts[i] as an unsigned integer, returning 0 for a
// missing or non-numeric component.
func componentAt(parts []string, i int) uint {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.ParseUint(parts[i], 10, 32)
	if err != nil {
		return 0
	}
	return uint(n)
}

// leadingDigit truncates a multi-digit component to its first decimal
// digit ("10" reads as 1).
func leadingDigit(n uint) uint {
	for n >= 10 {
		n /= 10
	}
	return n
}

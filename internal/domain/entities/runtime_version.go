package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// RuntimeVersion is a major.minor interpreter version such as 3.11
type RuntimeVersion struct {
	Major int
	Minor int
}

// ParseRuntimeVersion parses a "major.minor" string
func ParseRuntimeVersion(s string) (RuntimeVersion, error) {
	major, minor, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok {
		return RuntimeVersion{}, fmt.Errorf("invalid runtime version %q: expected major.minor", s)
	}

	maj, err := strconv.Atoi(major)
	if err != nil || maj < 0 {
		return RuntimeVersion{}, fmt.Errorf("invalid runtime version %q: bad major component", s)
	}
	mnr, err := strconv.Atoi(minor)
	if err != nil || mnr < 0 {
		return RuntimeVersion{}, fmt.Errorf("invalid runtime version %q: bad minor component", s)
	}

	return RuntimeVersion{Major: maj, Minor: mnr}, nil
}

// String renders the version as "major.minor"
func (v RuntimeVersion) String() string {
	return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
}

// Compare returns -1, 0 or 1 ordering by major then minor
func (v RuntimeVersion) Compare(other RuntimeVersion) int {
	switch {
	case v.Major < other.Major:
		return -1
	case v.Major > other.Major:
		return 1
	case v.Minor < other.Minor:
		return -1
	case v.Minor > other.Minor:
		return 1
	}
	return 0
}

// Less reports whether v sorts before other
func (v RuntimeVersion) Less(other RuntimeVersion) bool {
	return v.Compare(other) < 0
}

// NextMinor returns the version with the minor component incremented
func (v RuntimeVersion) NextMinor() RuntimeVersion {
	return RuntimeVersion{Major: v.Major, Minor: v.Minor + 1}
}

// NextMajor returns the first minor of the following major version
func (v RuntimeVersion) NextMajor() RuntimeVersion {
	return RuntimeVersion{Major: v.Major + 1}
}

// ReleaseVersion is a package release identifier exactly as the index reports it.
// It is never parsed or reordered.
type ReleaseVersion = string

package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is the client's own version, sent with every request in the
// X-Gem-Version header and compared against the server's required minimum.
const Version = "1.0.0"

// Semver represents a parsed semantic version
type Semver struct {
	Major int
	Minor int
	Patch int
	Pre   string // Pre-release identifier (e.g., "alpha", "beta.1")
}

// Parse parses a semantic version string into a Semver struct
func Parse(versionStr string) (*Semver, error) {
	if versionStr == "" {
		return nil, fmt.Errorf("version cannot be empty")
	}

	// Build metadata (+) is ignored in precedence comparison
	if idx := strings.Index(versionStr, "+"); idx != -1 {
		versionStr = versionStr[:idx]
	}

	var preRelease string
	if idx := strings.Index(versionStr, "-"); idx != -1 {
		preRelease = versionStr[idx+1:]
		versionStr = versionStr[:idx]
	}

	parts := strings.Split(versionStr, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid version format: expected x.y.z, got %s", versionStr)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return nil, fmt.Errorf("invalid major version: %s", parts[0])
	}

	minor, err := strconv.Atoi(parts[1])
	if err != nil || minor < 0 {
		return nil, fmt.Errorf("invalid minor version: %s", parts[1])
	}

	patch, err := strconv.Atoi(parts[2])
	if err != nil || patch < 0 {
		return nil, fmt.Errorf("invalid patch version: %s", parts[2])
	}

	return &Semver{
		Major: major,
		Minor: minor,
		Patch: patch,
		Pre:   preRelease,
	}, nil
}

// String returns the string representation of the version
func (v *Semver) String() string {
	result := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre != "" {
		result += "-" + v.Pre
	}
	return result
}

// Compare compares two versions and returns:
// -1 if v < other
//
//	0 if v == other
//	1 if v > other
func (v *Semver) Compare(other *Semver) int {
	if v.Major != other.Major {
		if v.Major > other.Major {
			return 1
		}
		return -1
	}

	if v.Minor != other.Minor {
		if v.Minor > other.Minor {
			return 1
		}
		return -1
	}

	if v.Patch != other.Patch {
		if v.Patch > other.Patch {
			return 1
		}
		return -1
	}

	// Per semver: 1.0.0-alpha < 1.0.0
	if v.Pre == "" && other.Pre != "" {
		return 1
	}
	if v.Pre != "" && other.Pre == "" {
		return -1
	}
	if v.Pre != "" && other.Pre != "" {
		if v.Pre > other.Pre {
			return 1
		} else if v.Pre < other.Pre {
			return -1
		}
	}

	return 0
}

// MeetsMinimum reports whether the built-in client version satisfies the
// server-reported minimum version constraint.
func MeetsMinimum(minimum string) (bool, error) {
	min, err := Parse(minimum)
	if err != nil {
		return false, fmt.Errorf("invalid minimum version %s: %w", minimum, err)
	}

	current, err := Parse(Version)
	if err != nil {
		return false, fmt.Errorf("invalid client version %s: %w", Version, err)
	}

	return current.Compare(min) >= 0, nil
}

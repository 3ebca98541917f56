package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Tier names the component of a Version that an edit bumps.
type Tier string

const (
	TierMajor Tier = "major"
	TierMinor Tier = "minor"
	TierPatch Tier = "patch"
)

// ParseTier accepts "major", "minor" or "patch" in any case.
func ParseTier(value string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(value))) {
	case TierMajor:
		return TierMajor, nil
	case TierMinor:
		return TierMinor, nil
	case TierPatch:
		return TierPatch, nil
	default:
		return "", fmt.Errorf("unknown version tier: %q", value)
	}
}

// Version is an immutable major.minor.patch triple.
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

// InitialVersion is the version assigned to a brand-new recipe.
var InitialVersion = Version{Major: 1}

// Increment returns the next version for the given tier. Bumping a tier
// zeroes every tier below it. An unrecognised tier yields v unchanged.
func (v Version) Increment(tier Tier) Version {
	switch tier {
	case TierMajor:
		return Version{Major: v.Major + 1}
	case TierMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	case TierPatch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	default:
		return v
	}
}

// Less reports whether v orders before other.
func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// ParseVersion reads "1", "1.2" or "1.2.3", with an optional leading "v".
func ParseVersion(value string) (Version, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "v")
	if trimmed == "" {
		return Version{}, fmt.Errorf("version must not be empty")
	}

	parts := strings.Split(trimmed, ".")
	if len(parts) > 3 {
		return Version{}, fmt.Errorf("invalid version %q", value)
	}

	var numbers [3]int
	for idx, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q", value)
		}
		numbers[idx] = n
	}
	return Version{Major: numbers[0], Minor: numbers[1], Patch: numbers[2]}, nil
}

package assets

import (
	"fmt"
	"regexp"
)

// MaxAssetNameLength bounds template and style keys.
const MaxAssetNameLength = 64

// assetName allows letters, digits, hyphens and underscores only.
var assetName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateAssetName checks that an asset name is safe for use as a filename.
// Returns ErrInvalidAssetName if the name is empty, too long, or contains
// anything other than letters, digits, hyphens and underscores. This rules
// out separators, dots and traversal sequences.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if len(name) > MaxAssetNameLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrInvalidAssetName, len(name), MaxAssetNameLength)
	}
	if !assetName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

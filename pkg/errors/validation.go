package errors

import (
	"strings"
	"unicode"

	"github.com/lucasb-eyer/go-colorful"
)

// maxNameLength bounds haplotype, member and group identifiers.
const maxNameLength = 256

// ValidateName validates a haplotype, member or group identifier.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No leading or trailing whitespace
//   - Maximum length of 256 characters
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "%s name cannot be empty", kind)
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "%s name too long (max %d characters)", kind, maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s name contains invalid control characters", kind)
		}
	}

	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidInput, "%s name %q has surrounding whitespace", kind, name)
	}

	return nil
}

// ValidateWeight rejects negative or non-finite frequency weights.
func ValidateWeight(kind string, w float64) error {
	if w < 0 || w != w || w > 1e300 {
		return New(ErrCodeInvalidInput, "%s weight must be a finite non-negative number, got %v", kind, w)
	}
	return nil
}

// NormalizeColor validates a CSS hex color and returns it in canonical
// lowercase "#rrggbb" form.
func NormalizeColor(s string) (string, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return "", Wrap(ErrCodeInvalidColor, err, "invalid color %q", s)
	}
	return c.Hex(), nil
}

package errors

import (
	"regexp"
	"unicode"
)

// chromNameRegex matches chromosome names such as "chr1", "X" or "chrUn_gl000220".
var chromNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidateChromosomeName rejects empty, oversized or punctuated chromosome names.
func ValidateChromosomeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "chromosome name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "chromosome name too long (max 64 characters)")
	}
	if !chromNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid chromosome name: %q", name)
	}
	return nil
}

// ValidateSampleID rejects empty sample ids and ids with control characters.
func ValidateSampleID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "sample id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "sample id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "sample id contains invalid control characters")
		}
	}
	return nil
}

// ValidatePosition rejects negative genomic positions.
func ValidatePosition(pos int64) error {
	if pos < 0 {
		return New(ErrCodeInvalidInput, "position must be non-negative, got %d", pos)
	}
	return nil
}

// ValidateResolution rejects non-positive bin sizes.
func ValidateResolution(bp int64) error {
	if bp <= 0 {
		return New(ErrCodeInvalidConfig, "resolution must be positive, got %d", bp)
	}
	return nil
}

// ValidateSizeThreshold rejects negative cluster size caps.
func ValidateSizeThreshold(n int) error {
	if n < 0 {
		return New(ErrCodeInvalidConfig, "size threshold must be non-negative, got %d", n)
	}
	return nil
}

package curio

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsValidSlug validates that a slug is URL-safe: lowercase letters,
// digits and hyphens, no leading/trailing hyphen, at most 64 bytes.
func IsValidSlug(s string) bool {
	if s == "" || len(s) > 64 {
		return false
	}

	if strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") {
		return false
	}

	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return false
		}
	}

	return true
}

// IsValidKeySegment validates one segment of a storage key. It checks
// that the segment:
//   - is not empty, ".", or ".."
//   - does not contain "/" (segments never span directories)
//   - does not contain invalid characters: \ ? # ~
//   - is valid UTF-8
//   - does not contain null bytes, control characters, DEL, or whitespace
func IsValidKeySegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}

	if strings.ContainsAny(s, `/\?#~`) {
		return false
	}

	if !utf8.ValidString(s) {
		return false
	}

	for _, r := range s {
		if r == 0 || r < 0x20 || r == 0x7f || unicode.IsSpace(r) {
			return false
		}
	}

	return true
}

// MediaKey builds the storage key for an item's media object:
// rooms/{roomSlug}/items/{itemId}/{filename}.
func MediaKey(roomSlug, itemID, filename string) (string, error) {
	if !IsValidSlug(roomSlug) {
		return "", fmt.Errorf("media key: room slug %q: %w", roomSlug, ErrInvalidInput)
	}

	if !IsValidKeySegment(itemID) {
		return "", fmt.Errorf("media key: item id %q: %w", itemID, ErrInvalidInput)
	}

	if !IsValidKeySegment(filename) {
		return "", fmt.Errorf("media key: filename %q: %w", filename, ErrInvalidInput)
	}

	return fmt.Sprintf("rooms/%s/items/%s/%s", roomSlug, itemID, filename), nil
}

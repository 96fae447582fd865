package audit

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultDescriptionMax is the column bound of Activity.Description.
	DefaultDescriptionMax = 255
	ellipsis              = "…"
)

// Finalize flattens a description onto one line and truncates it to max
// runes. Descriptions are plain text: markup in user values is kept as typed.
// Truncated text keeps max-1 runes followed by an ellipsis.
func Finalize(description string, max int) string {
	if max <= 0 {
		max = DefaultDescriptionMax
	}
	clean := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, description)
	clean = strings.Join(strings.Fields(clean), " ")
	if utf8.RuneCountInString(clean) <= max {
		return clean
	}
	runes := []rune(clean)
	return string(runes[:max-1]) + ellipsis
}

// Fingerprint builds the dedup key of a hook produced record.
func Fingerprint(entityType, id, description string) string {
	sum := sha1.Sum([]byte(description))
	return entityType + ":" + id + ":" + hex.EncodeToString(sum[:])[:12]
}

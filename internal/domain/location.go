package domain

import "strings"

// LocationKey derives the grouping key from a free-text place or location:
// the last comma-separated segment, trimmed of surrounding whitespace.
// "10 km NE of Pahala, Hawaii" -> "Hawaii". Text without a comma is taken
// whole. Returns "" when nothing usable remains; callers treat that as
// "no valid key".
func LocationKey(text string) string {
	if i := strings.LastIndexByte(text, ','); i >= 0 {
		text = text[i+1:]
	}
	return strings.TrimSpace(text)
}

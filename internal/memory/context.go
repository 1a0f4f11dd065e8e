package memory

import (
	"strings"
)

// Digest renders memories as a bullet list, one "- content" line each.
func Digest(memories []Memory) string {
	if len(memories) == 0 {
		return ""
	}
	lines := make([]string, len(memories))
	for i, m := range memories {
		lines[i] = "- " + m.Content
	}
	return strings.Join(lines, "\n")
}

package issues

import (
	"strings"
	"time"
)

// DedupPolicy selects how Create treats a probable duplicate report.
// Whether duplicate filing should fold into the existing issue is a product
// decision, so both behaviors are available and the caller chooses per call.
type DedupPolicy string

const (
	// DedupNone always creates a new issue.
	DedupNone DedupPolicy = "none"
	// DedupWindow appends a note to an existing open issue on the same asset
	// when one was created within the trailing window and its description
	// matches the new report (normalized substring).
	DedupWindow DedupPolicy = "window"
)

// dedupWindow is the trailing window DedupWindow looks back over.
const dedupWindow = 2 * time.Hour

// ParseDedupPolicy normalizes a query value, defaulting to none.
func ParseDedupPolicy(v string) DedupPolicy {
	if DedupPolicy(strings.ToLower(strings.TrimSpace(v))) == DedupWindow {
		return DedupWindow
	}
	return DedupNone
}

// normalizeDescription lowercases and collapses all whitespace runs to
// single spaces so near-identical reports compare equal.
func normalizeDescription(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// isDuplicateDescription reports whether a new report matches an existing
// issue: the normalized new description must be a substring of the existing
// issue's normalized description.
func isDuplicateDescription(existing, incoming string) bool {
	n := normalizeDescription(incoming)
	if n == "" {
		return false
	}
	return strings.Contains(normalizeDescription(existing), n)
}

// Package slug derives URL identifiers from titles and resolves inbound
// identifiers back to content records.
package slug

import (
	"regexp"
	"strings"
)

// spaceClass matches the whitespace set of browser regular expressions: ASCII
// space and controls, \v, the Zs category, line and paragraph separators and BOM.
const spaceClass = `\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}`

var (
	disallowed = regexp.MustCompile(`[^a-z0-9` + spaceClass + `-]`)
	whitespace = regexp.MustCompile(`[` + spaceClass + `]+`)
	hyphenRuns = regexp.MustCompile(`-+`)
)

// Derive converts a display title into its canonical slug. It lowercases, drops
// anything other than a-z, 0-9, whitespace and hyphens, collapses whitespace runs
// and repeated hyphens to a single hyphen and trims boundary hyphens. Titles made
// only of dropped characters yield "".
func Derive(title string) string {
	s := strings.ToLower(title)
	s = disallowed.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Effective returns the stored slug when present, otherwise the derived one.
func Effective(title, stored string) string {
	if stored = strings.TrimSpace(stored); stored != "" {
		return stored
	}
	return Derive(title)
}

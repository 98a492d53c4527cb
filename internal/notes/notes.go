// Package notes cleans up the release notes generated by GitHub before they
// are spliced into a changelog.
package notes

import (
	"regexp"
	"strings"
)

// GenericHeading is the heading GitHub puts on generated notes.
const GenericHeading = "## What's Changed"

var (
	genericHeadingRe = regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(GenericHeading) + `$`)
	// generatorMarkerRe matches the comment GitHub leaves when notes are
	// generated from .github/release.yml, on any ref.
	generatorMarkerRe = regexp.MustCompile(`<!-- Release notes generated using configuration in \.github/release\.yml at [^\s]+ -->\s*`)
	starBulletRe      = regexp.MustCompile(`(?m)^\* `)
	fullChangelogRe   = regexp.MustCompile(`\*\*Full Changelog\*\*: .+\n?`)
	anyHeadingRe      = regexp.MustCompile(`(?m)^## .+$`)
)

// Options controls Normalize.
type Options struct {
	// Tag replaces the generic heading.
	Tag string
	// NormalizeBullets rewrites leading "* " list markers to "- ".
	NormalizeBullets bool
}

// Normalize rewrites the generic heading to name the tag, drops the
// generator marker and the trailing "Full Changelog" link, and optionally
// normalizes bullet style.
func Normalize(raw string, opts Options) string {
	out := raw
	if loc := genericHeadingRe.FindStringIndex(out); loc != nil {
		out = out[:loc[0]] + "## " + opts.Tag + out[loc[1]:]
	}
	out = generatorMarkerRe.ReplaceAllString(out, "")
	if opts.NormalizeBullets {
		out = starBulletRe.ReplaceAllString(out, "- ")
	}
	return fullChangelogRe.ReplaceAllString(out, "")
}

// StripHeading removes the first "## " heading line and trims surrounding
// whitespace. The changelog entry supplies its own linked heading.
func StripHeading(notes string) string {
	if loc := anyHeadingRe.FindStringIndex(notes); loc != nil {
		notes = notes[:loc[0]] + notes[loc[1]:]
	}
	return strings.TrimSpace(notes)
}

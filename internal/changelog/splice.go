package changelog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ariel-frischer/relnotes/internal/notes"
)

// ErrMissingAnchor is returned when the document has no insertion point.
var ErrMissingAnchor = errors.New("changelog anchor not found")

// DateLayout renders entry dates as "5 March 2024".
const DateLayout = "2 January 2006"

// AnchorMode selects where new entries go.
type AnchorMode string

const (
	// AnchorHeader inserts directly after the top-level header line.
	AnchorHeader AnchorMode = "header"
	// AnchorEntry inserts directly before the first dated entry.
	AnchorEntry AnchorMode = "entry"
)

// entryMarkerRe matches the linked version heading that starts every entry.
var entryMarkerRe = regexp.MustCompile(`^## \[[^\]]+\]\(`)

// Anchor describes how to find the insertion point.
type Anchor struct {
	Mode AnchorMode
	// Header is the exact text of the top-level header line.
	Header string
}

// Entry is one release section.
type Entry struct {
	Tag string
	// URL is the compare or release link the heading points at.
	URL  string
	Date time.Time
	// Notes is the normalized notes body; its first "## " heading is dropped.
	Notes string
}

// CompareURL links the diff between previous and tag, or the release page of
// tag when there is no previous tag.
func CompareURL(baseURL, previous, tag string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	if previous != "" {
		return fmt.Sprintf("%s/compare/%s...%s", baseURL, previous, tag)
	}
	return fmt.Sprintf("%s/releases/tag/%s", baseURL, tag)
}

// FormatDate renders t with DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Block renders the lines inserted for e: a blank line, the linked heading,
// the dated blockquote, the notes and a closing blank line.
func (e Entry) Block() []string {
	block := []string{
		"",
		fmt.Sprintf("## [%s](%s)", e.Tag, e.URL),
		"",
		"> " + FormatDate(e.Date),
		"",
	}
	if body := notes.StripHeading(e.Notes); body != "" {
		block = append(block, strings.Split(body, "\n")...)
	}
	return append(block, "")
}

// InsertIndex returns the line index new entries are inserted at.
func (d *Document) InsertIndex(a Anchor) (int, error) {
	header := a.Header
	if header == "" {
		header = DefaultHeader
	}

	headerIdx := -1
	for i, line := range d.Lines {
		if a.Mode == AnchorEntry && entryMarkerRe.MatchString(line) {
			return i, nil
		}
		if headerIdx == -1 && strings.TrimSpace(line) == header {
			headerIdx = i
			if a.Mode != AnchorEntry {
				break
			}
		}
	}
	if headerIdx == -1 {
		return 0, fmt.Errorf("%w: no %q line", ErrMissingAnchor, header)
	}
	return headerIdx + 1, nil
}

// Insert splices e into the document at the anchor. No other line changes.
func (d *Document) Insert(e Entry, a Anchor) error {
	idx, err := d.InsertIndex(a)
	if err != nil {
		return err
	}

	block := e.Block()
	lines := make([]string, 0, len(d.Lines)+len(block))
	lines = append(lines, d.Lines[:idx]...)
	lines = append(lines, block...)
	lines = append(lines, d.Lines[idx:]...)
	d.Lines = lines
	return nil
}

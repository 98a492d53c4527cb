// Package changelog tests anchor detection and entry splicing.
// Related: internal/changelog/splice.go
// Tags: changelog, splice, anchor, markdown

package changelog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var releaseDay = time.Date(2024, time.March, 5, 15, 4, 0, 0, time.UTC)

const existing = "# Changelog\n\n## [v0.1.0](https://github.com/acme/tool/releases/tag/v0.1.0)\n\n> 1 February 2024\n\nInitial release\n"

// isSubsequence reports whether every line of want appears in got in order.
func isSubsequence(want, got []string) bool {
	i := 0
	for _, line := range got {
		if i < len(want) && line == want[i] {
			i++
		}
	}
	return i == len(want)
}

func TestCompareURL(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		base     string
		previous string
		tag      string
		want     string
	}{
		"with previous tag": {
			base: "https://github.com/acme/tool", previous: "v1.0.0", tag: "v1.1.0",
			want: "https://github.com/acme/tool/compare/v1.0.0...v1.1.0",
		},
		"first release": {
			base: "https://github.com/acme/tool", tag: "v1.0.0",
			want: "https://github.com/acme/tool/releases/tag/v1.0.0",
		},
		"trailing slash on base": {
			base: "https://github.example.com/acme/tool/", previous: "v1", tag: "v2",
			want: "https://github.example.com/acme/tool/compare/v1...v2",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CompareURL(tt.base, tt.previous, tt.tag))
		})
	}
}

func TestFormatDate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "5 March 2024", FormatDate(releaseDay))
	assert.Equal(t, "31 December 1999", FormatDate(time.Date(1999, time.December, 31, 0, 0, 0, 0, time.UTC)))
}

func TestEntry_Block(t *testing.T) {
	t.Parallel()

	e := Entry{
		Tag:   "v1.1.0",
		URL:   "https://github.com/acme/tool/compare/v1.0.0...v1.1.0",
		Date:  releaseDay,
		Notes: "## v1.1.0\n- Add compare links\n- Fix dates\n\n",
	}

	assert.Equal(t, []string{
		"",
		"## [v1.1.0](https://github.com/acme/tool/compare/v1.0.0...v1.1.0)",
		"",
		"> 5 March 2024",
		"",
		"- Add compare links",
		"- Fix dates",
		"",
	}, e.Block())
}

func TestEntry_Block_EmptyNotes(t *testing.T) {
	t.Parallel()

	e := Entry{Tag: "v1.0.0", URL: "u", Date: releaseDay, Notes: "## v1.0.0\n"}
	assert.Equal(t, []string{"", "## [v1.0.0](u)", "", "> 5 March 2024", "", ""}, e.Block())
}

func TestInsert_AfterHeader_FirstRelease(t *testing.T) {
	t.Parallel()

	doc := Parse(existing)
	original := append([]string{}, doc.Lines...)

	entry := Entry{
		Tag:   "v1.0.0",
		URL:   CompareURL("https://github.com/acme/tool", "", "v1.0.0"),
		Date:  releaseDay,
		Notes: "## v1.0.0\n- First stable release",
	}
	require.NoError(t, doc.Insert(entry, Anchor{Mode: AnchorHeader, Header: DefaultHeader}))

	assert.Equal(t, "# Changelog", doc.Lines[0])
	assert.Equal(t, "", doc.Lines[1])
	assert.Equal(t, "## [v1.0.0](https://github.com/acme/tool/releases/tag/v1.0.0)", doc.Lines[2])
	assert.NotContains(t, doc.Lines[2], "/compare/")
	assert.True(t, isSubsequence(original, doc.Lines))
	assert.Equal(t, len(original)+len(entry.Block()), len(doc.Lines))
	assert.Equal(t, original[1:], doc.Lines[1+len(entry.Block()):])
}

func TestInsert_BeforeFirstEntry(t *testing.T) {
	t.Parallel()

	content := "# Changelog\n\nAll notable changes to this project.\n\n## [v0.1.0](x)\n\n> 1 February 2024\n"
	doc := Parse(content)
	original := append([]string{}, doc.Lines...)

	entry := Entry{Tag: "v0.2.0", URL: "y", Date: releaseDay, Notes: "- b"}
	require.NoError(t, doc.Insert(entry, Anchor{Mode: AnchorEntry}))

	idx := -1
	for i, line := range doc.Lines {
		if line == "## [v0.2.0](y)" {
			idx = i
		}
	}
	require.NotEqual(t, -1, idx)
	assert.Equal(t, "All notable changes to this project.", doc.Lines[2])
	assert.Equal(t, "## [v0.1.0](x)", doc.Lines[idx+len(entry.Block())-1])
	assert.True(t, isSubsequence(original, doc.Lines))
}

func TestInsertIndex(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content string
		anchor  Anchor
		want    int
		wantErr bool
	}{
		"header mode": {
			content: "# Changelog\n\n## [v1](x)\n",
			anchor:  Anchor{Mode: AnchorHeader},
			want:    1,
		},
		"header with surrounding whitespace": {
			content: "<!-- generated -->\n  # Changelog  \n",
			anchor:  Anchor{Mode: AnchorHeader},
			want:    2,
		},
		"custom header": {
			content: "# History\n",
			anchor:  Anchor{Mode: AnchorHeader, Header: "# History"},
			want:    1,
		},
		"entry mode finds first entry": {
			content: "# Changelog\n\nintro\n\n## [v2](x)\n\n## [v1](y)\n",
			anchor:  Anchor{Mode: AnchorEntry},
			want:    4,
		},
		"entry mode without header": {
			content: "## [v1](y)\n",
			anchor:  Anchor{Mode: AnchorEntry},
			want:    0,
		},
		"entry mode falls back to header": {
			content: "# Changelog\n",
			anchor:  Anchor{Mode: AnchorEntry},
			want:    1,
		},
		"plain h2 is not an entry": {
			content: "# Changelog\n\n## Unreleased\n",
			anchor:  Anchor{Mode: AnchorEntry},
			want:    1,
		},
		"missing header": {
			content: "# Release history\n",
			anchor:  Anchor{Mode: AnchorHeader},
			wantErr: true,
		},
		"sub-heading is not the header": {
			content: "## Changelog\n",
			anchor:  Anchor{Mode: AnchorHeader},
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.content).InsertIndex(tt.anchor)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMissingAnchor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInsert_MissingAnchorLeavesDocument(t *testing.T) {
	t.Parallel()

	doc := Parse("no header here\n")
	err := doc.Insert(Entry{Tag: "v1.0.0"}, Anchor{Mode: AnchorHeader})
	require.ErrorIs(t, err, ErrMissingAnchor)
	assert.Equal(t, "no header here\n", doc.String())
}

func TestInsert_NotIdempotent(t *testing.T) {
	t.Parallel()

	doc := Parse(existing)
	entry := Entry{Tag: "v1.0.0", URL: "u", Date: releaseDay, Notes: "- a"}
	require.NoError(t, doc.Insert(entry, Anchor{Mode: AnchorHeader}))
	require.NoError(t, doc.Insert(entry, Anchor{Mode: AnchorHeader}))

	assert.Equal(t, 2, strings.Count(doc.String(), "## [v1.0.0](u)"))
}

func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, content := range []string{"", "# Changelog", existing, "# Changelog\r\n\r\n- a\r\n"} {
		assert.Equal(t, content, Parse(content).String())
	}
}

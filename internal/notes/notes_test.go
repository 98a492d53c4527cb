package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const generated = "## What's Changed\n" +
	"<!-- Release notes generated using configuration in .github/release.yml at main -->\n\n" +
	"* Add compare links by @alice in https://github.com/acme/tool/pull/12\n" +
	"* Fix date format by @bob in https://github.com/acme/tool/pull/13\n\n" +
	"## New Contributors\n" +
	"* @bob made their first contribution in https://github.com/acme/tool/pull/13\n\n" +
	"**Full Changelog**: https://github.com/acme/tool/compare/v1.0.0...v1.1.0"

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		raw  string
		opts Options
		want string
	}{
		"full generated notes": {
			raw:  generated,
			opts: Options{Tag: "v1.1.0", NormalizeBullets: true},
			want: "## v1.1.0\n" +
				"- Add compare links by @alice in https://github.com/acme/tool/pull/12\n" +
				"- Fix date format by @bob in https://github.com/acme/tool/pull/13\n\n" +
				"## New Contributors\n" +
				"- @bob made their first contribution in https://github.com/acme/tool/pull/13\n\n",
		},
		"bullets kept when disabled": {
			raw:  "## What's Changed\n* one\n",
			opts: Options{Tag: "v2.0.0"},
			want: "## v2.0.0\n* one\n",
		},
		"only first generic heading rewritten": {
			raw:  "## What's Changed\n- a\n## What's Changed\n- b\n",
			opts: Options{Tag: "v3.0.0"},
			want: "## v3.0.0\n- a\n## What's Changed\n- b\n",
		},
		"heading must match exactly": {
			raw:  "## What's Changed in this release\n- a\n",
			opts: Options{Tag: "v3.0.0"},
			want: "## What's Changed in this release\n- a\n",
		},
		"marker on another ref": {
			raw:  "<!-- Release notes generated using configuration in .github/release.yml at v2 -->\n- a\n",
			opts: Options{Tag: "v2.0.0"},
			want: "- a\n",
		},
		"inline emphasis untouched": {
			raw:  "- uses *italics* and **bold**\n",
			opts: Options{Tag: "v1.0.0", NormalizeBullets: true},
			want: "- uses *italics* and **bold**\n",
		},
		"full changelog with trailing newline": {
			raw:  "- a\n**Full Changelog**: https://example.com/compare/a...b\n",
			opts: Options{Tag: "v1.0.0"},
			want: "- a\n",
		},
		"empty": {
			raw:  "",
			opts: Options{Tag: "v1.0.0"},
			want: "",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.raw, tt.opts))
		})
	}
}

func TestStripHeading(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		notes string
		want  string
	}{
		"leading heading removed": {
			notes: "## v1.1.0\n- a\n- b\n\n",
			want:  "- a\n- b",
		},
		"only first heading removed": {
			notes: "## v1.1.0\n- a\n\n## New Contributors\n- @bob\n",
			want:  "- a\n\n## New Contributors\n- @bob",
		},
		"no heading": {
			notes: "\n\n- a\n",
			want:  "- a",
		},
		"h3 is not a heading match": {
			notes: "### Fixes\n- a",
			want:  "### Fixes\n- a",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StripHeading(tt.notes))
		})
	}
}

func TestNormalizeThenStrip(t *testing.T) {
	t.Parallel()

	got := StripHeading(Normalize(generated, Options{Tag: "v1.1.0", NormalizeBullets: true}))
	assert.NotContains(t, got, "What's Changed")
	assert.NotContains(t, got, "Full Changelog")
	assert.NotContains(t, got, "<!--")
	assert.Contains(t, got, "## New Contributors")
	assert.Equal(t, "- Add compare links", got[:len("- Add compare links")])
}

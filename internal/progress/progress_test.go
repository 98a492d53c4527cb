// Package progress tests terminal detection and the spinner wrapper.
// Related: internal/progress/terminal.go, internal/progress/spinner.go
// Tags: progress, terminal, spinner
package progress

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectSymbols(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		caps TerminalCapabilities
		want ProgressSymbols
	}{
		"unicode": {
			caps: TerminalCapabilities{IsTTY: true, SupportsUnicode: true},
			want: ProgressSymbols{SpinnerSet: 14},
		},
		"ascii": {
			caps: TerminalCapabilities{IsTTY: true},
			want: ProgressSymbols{SpinnerSet: 9},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SelectSymbols(tt.caps))
		})
	}
}

func TestDetectTerminalCapabilities_RegularFile(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()

	caps := DetectTerminalCapabilities(f)
	assert.False(t, caps.IsTTY)
	assert.False(t, caps.SupportsColor)
	assert.False(t, caps.SupportsUnicode)
}

func TestSpinner_NonTTYIsSilent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewSpinner(&buf, TerminalCapabilities{})
	s.Begin("Fetching release notes")
	assert.Nil(t, s.s)
	s.End()
	assert.Empty(t, buf.String())
}

func TestSpinner_BeginEnd(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewSpinner(&buf, TerminalCapabilities{IsTTY: true, SupportsUnicode: true})
	s.Begin("Fetching release notes")
	assert.NotNil(t, s.s)
	s.Begin("Formatting")
	assert.NotNil(t, s.s)
	s.End()
	assert.Nil(t, s.s)
	s.End()
}

func TestApplyColorSetting(t *testing.T) {
	orig := color.NoColor
	t.Cleanup(func() { color.NoColor = orig })

	color.NoColor = false
	ApplyColorSetting(TerminalCapabilities{IsTTY: true, SupportsColor: true})
	assert.False(t, color.NoColor, "a colour terminal leaves the setting alone")

	ApplyColorSetting(TerminalCapabilities{})
	assert.True(t, color.NoColor, "redirected output disables colour")

	ApplyColorSetting(TerminalCapabilities{IsTTY: true, SupportsColor: true})
	assert.True(t, color.NoColor, "colour is never switched back on")
}

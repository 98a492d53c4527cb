package progress

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// DetectTerminalCapabilities detects terminal features of f and returns capabilities.
// Checks: f isatty, NO_COLOR env, RELNOTES_ASCII env.
func DetectTerminalCapabilities(f *os.File) TerminalCapabilities {
	isTTY := term.IsTerminal(int(f.Fd()))

	noColor := os.Getenv("NO_COLOR") != ""
	forceASCII := os.Getenv("RELNOTES_ASCII") == "1"

	return TerminalCapabilities{
		IsTTY:           isTTY,
		SupportsColor:   isTTY && !noColor,
		SupportsUnicode: isTTY && !forceASCII,
	}
}

// ApplyColorSetting turns colour output off when caps cannot show it.
// It never turns colour on.
func ApplyColorSetting(caps TerminalCapabilities) {
	if !caps.SupportsColor {
		color.NoColor = true
	}
}

// SelectSymbols returns the spinner set for the terminal.
// Unicode: braille spinner (set 14). ASCII: |/-\ spinner (set 9).
func SelectSymbols(caps TerminalCapabilities) ProgressSymbols {
	if caps.SupportsUnicode {
		return ProgressSymbols{SpinnerSet: 14}
	}
	return ProgressSymbols{SpinnerSet: 9}
}

// Package progress shows a spinner while relnotes waits on external commands.
package progress

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

const spinnerInterval = 100 * time.Millisecond

// Spinner animates a message on an interactive terminal and does nothing otherwise.
type Spinner struct {
	w    io.Writer
	caps TerminalCapabilities
	s    *spinner.Spinner
}

// NewSpinner returns a spinner writing to w.
func NewSpinner(w io.Writer, caps TerminalCapabilities) *Spinner {
	return &Spinner{w: w, caps: caps}
}

// Begin starts animating message. A running spinner is stopped first.
func (s *Spinner) Begin(message string) {
	s.End()
	if !s.caps.IsTTY {
		return
	}
	symbols := SelectSymbols(s.caps)
	sp := spinner.New(spinner.CharSets[symbols.SpinnerSet], spinnerInterval, spinner.WithWriter(s.w))
	sp.Suffix = " " + message
	sp.Start()
	s.s = sp
}

// End stops the spinner and clears its line.
func (s *Spinner) End() {
	if s.s == nil {
		return
	}
	s.s.Stop()
	s.s = nil
}

package progress

// TerminalCapabilities describes what the progress writer's terminal supports.
type TerminalCapabilities struct {
	IsTTY           bool
	SupportsColor   bool
	SupportsUnicode bool
}

// ProgressSymbols are the glyphs used for progress display.
type ProgressSymbols struct {
	SpinnerSet int // index into spinner.CharSets
}

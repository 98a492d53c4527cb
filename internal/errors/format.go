package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Marker leads every error printed to the user.
const Marker = "❌"

var (
	headColor     = color.New(color.FgRed, color.Bold)
	messageColor  = color.New(color.FgRed)
	categoryColor = color.New(color.FgYellow)
	usageColor    = color.New(color.FgCyan)
	usageHead     = color.New(color.FgCyan, color.Bold)
	fixColor      = color.New(color.FgGreen, color.Bold)
	bulletColor   = color.New(color.FgGreen)
)

// painter applies colors only when enabled.
type painter bool

func (p painter) paint(c *color.Color, text string) string {
	if !p {
		return text
	}
	return c.Sprint(text)
}

// FormatError renders err for the terminal, colored unless color.NoColor is set.
func FormatError(err *CLIError) string {
	if err == nil {
		return ""
	}
	return render(err, painter(!color.NoColor))
}

// FormatErrorPlain renders err without colors.
func FormatErrorPlain(err *CLIError) string {
	if err == nil {
		return ""
	}
	return render(err, false)
}

// render lays out the marker line, then the optional usage and remediation
// blocks, each preceded by a blank line.
func render(err *CLIError, p painter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s [%s]: %s\n", Marker,
		p.paint(headColor, "Error"),
		p.paint(categoryColor, err.Category.String()),
		p.paint(messageColor, err.Message))

	if err.Usage != "" {
		fmt.Fprintf(&b, "\n%s%s\n", p.paint(usageHead, "Usage: "), p.paint(usageColor, err.Usage))
	}
	if len(err.Remediation) > 0 {
		fmt.Fprintf(&b, "\n%s\n", p.paint(fixColor, "To fix this:"))
		for _, step := range err.Remediation {
			fmt.Fprintf(&b, "  %s %s\n", p.paint(bulletColor, "•"), step)
		}
	}
	return b.String()
}

// FprintError writes the rendered err to w.
func FprintError(w io.Writer, err *CLIError) {
	if err == nil {
		return
	}
	fmt.Fprint(w, FormatError(err))
}

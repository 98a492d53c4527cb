// Package output provides terminal output formatting for relnotes progress lines.
// This package is designed to have minimal dependencies to avoid import cycles.
package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// PrintInfo prints an uncoloured progress line.
func PrintInfo(out io.Writer, format string, args ...any) {
	fmt.Fprintf(out, format+"\n", args...)
}

// PrintVersionSource reports that the tag was derived from a project manifest.
func PrintVersionSource(out io.Writer, tag string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(out, "📦 Using version from project config: %s\n", bold(tag))
}

// PrintGenerating reports which tag is being generated and what it is compared against.
// An empty previous tag is reported as the first release.
func PrintGenerating(out io.Writer, tag, previous string) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	against := "first release"
	if previous != "" {
		against = "comparing with " + previous
	}
	fmt.Fprintf(out, "Generating release notes for %s (%s)...\n", cyan(tag), against)
}

// PrintSuccess prints a green checkmark followed by the message.
func PrintSuccess(out io.Writer, message string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("✓"), message)
}

// PrintDryRun prints the changelog block that would have been inserted.
// The block is written uncoloured so it can be piped into other tools.
func PrintDryRun(out io.Writer, path string, block []string) {
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "%s\n", dim(fmt.Sprintf("--- dry run: would insert into %s ---", path)))
	for _, line := range block {
		fmt.Fprintln(out, line)
	}
}

// Package cli implements the relnotes command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	cliErrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/ariel-frischer/relnotes/internal/version"
)

// rootFlags holds the values of the root command's flags.
type rootFlags struct {
	dir         string
	configPath  string
	target      string
	anchor      string
	noFormat    bool
	keepBullets bool
	dryRun      bool
	debug       bool
	printConfig bool
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "relnotes [tag_name] [changelog_file]",
		Short: "Prepend GitHub-generated release notes to a changelog",
		Long: heredoc.Doc(`
			Generate release notes for a tag with the GitHub release-notes API and
			prepend them to a changelog as a dated, linked section.

			When tag_name is omitted, the version is read from package.json or
			pyproject.toml (searching the repository root first) and prefixed with "v".
			The previous release is found from the repository's tags, newest version
			first. changelog_file defaults to changelog.md.

			The GitHub CLI (gh) must be installed and authenticated. After writing,
			the changelog is reformatted with "deno fmt --line-width=0" unless
			--no-format is given.

			Configuration is read from ~/.config/relnotes/config.yml, then .relnotes.yml
			in the project directory, then RELNOTES_* environment variables.
		`),
		Example: heredoc.Doc(`
			# Use the version from package.json or pyproject.toml
			$ relnotes

			# Explicit tag and changelog
			$ relnotes v2.1.0 CHANGES.md

			# Tag that does not exist yet, created from a release branch
			$ relnotes v2.1.0 --target release/2.x

			# Preview the entry without touching the file
			$ relnotes --dry-run

			# Start a project config
			$ relnotes --print-config > .relnotes.yml
		`),
		Args:          cobra.MaximumNArgs(2),
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelease(cmd, args, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.dir, "dir", "C", ".", "Project directory to run in")
	f.StringVar(&flags.configPath, "config", "", "Config file to use instead of <dir>/.relnotes.yml")
	f.StringVar(&flags.target, "target", "", "Commitish the tag is created from when it does not exist yet")
	f.StringVar(&flags.anchor, "anchor", "", "Insertion point: header (after the header line) or entry (before the first entry)")
	f.BoolVar(&flags.noFormat, "no-format", false, "Skip running the formatter after writing")
	f.BoolVar(&flags.keepBullets, "keep-bullets", false, "Keep \"* \" list markers instead of rewriting them to \"- \"")
	f.BoolVar(&flags.dryRun, "dry-run", false, "Print the entry instead of writing it")
	f.BoolVar(&flags.debug, "debug", false, "Print debug information to stderr")
	f.BoolVar(&flags.printConfig, "print-config", false, "Print a commented .relnotes.yml with every option and exit")

	return cmd
}

// Execute runs the root command, reporting errors on stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return execute(ctx, rootCmd, os.Stderr)
}

func execute(ctx context.Context, cmd *cobra.Command, stderr io.Writer) error {
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	// Errors raised by cobra itself: unknown flags, too many arguments.
	cliErr := cliErrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine(),
		fmt.Sprintf("Run '%s --help' for usage", cmd.Name()))
	cliErr.Cause = err
	cliErrors.FprintError(stderr, cliErr)
	return NewExitError(ExitFailure)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relnotes/internal/changelog"
	"github.com/ariel-frischer/relnotes/internal/config"
	cliErrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/ariel-frischer/relnotes/internal/git"
	"github.com/ariel-frischer/relnotes/internal/github"
	"github.com/ariel-frischer/relnotes/internal/manifest"
	"github.com/ariel-frischer/relnotes/internal/progress"
	"github.com/ariel-frischer/relnotes/internal/release"
	"github.com/ariel-frischer/relnotes/internal/runner"
)

// Overridden in tests.
var (
	newRunner = func(timeout time.Duration) runner.Runner {
		return runner.Exec{Timeout: timeout}
	}
	now = time.Now
)

const (
	ghInstallHint   = "Install the GitHub CLI: https://cli.github.com"
	denoInstallHint = "Install Deno (https://deno.land) or run with --no-format"
)

func runRelease(cmd *cobra.Command, args []string, flags *rootFlags) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if f, ok := stdout.(*os.File); ok {
		progress.ApplyColorSetting(progress.DetectTerminalCapabilities(f))
	}
	if flags.printConfig {
		fmt.Fprint(stdout, config.GetDefaultConfigTemplate())
		return nil
	}
	if flags.debug {
		enableDebug(stderr)
	}

	fail := func(err *cliErrors.CLIError) error {
		cliErrors.FprintError(stderr, err)
		return NewExitError(ExitFailure)
	}

	dir, err := filepath.Abs(flags.dir)
	if err != nil {
		return fail(cliErrors.Wrap(err, cliErrors.Argument))
	}

	cfg, err := config.Load(config.LoadOptions{ProjectDir: dir, ConfigPath: flags.configPath})
	if err != nil {
		return fail(cliErrors.ConfigParseError(err))
	}
	if cliErr := applyFlags(cfg, flags, cmd.UseLine()); cliErr != nil {
		return fail(cliErr)
	}

	opts := release.Options{
		Dir:           dir,
		ChangelogFile: cfg.ChangelogFile,
		Target:        flags.target,
		DryRun:        flags.dryRun,
	}
	if len(args) > 0 {
		opts.Tag = args[0]
	}
	if len(args) > 1 {
		opts.ChangelogFile = args[1]
	}

	pipeline := buildPipeline(cfg, dir, stdout, stderr)
	if _, err := pipeline.Run(cmd.Context(), opts); err != nil {
		return fail(classify(err, cfg, cmd.UseLine()))
	}
	return nil
}

// applyFlags layers command-line overrides on top of the loaded configuration.
func applyFlags(cfg *config.Configuration, flags *rootFlags, usage string) *cliErrors.CLIError {
	if flags.anchor != "" {
		switch changelog.AnchorMode(flags.anchor) {
		case changelog.AnchorHeader, changelog.AnchorEntry:
			cfg.Anchor = flags.anchor
		default:
			return cliErrors.NewArgumentErrorWithUsage(
				fmt.Sprintf("invalid --anchor value %q", flags.anchor), usage,
				"Use --anchor header or --anchor entry",
			)
		}
	}
	if flags.noFormat {
		cfg.Formatter = ""
	}
	if flags.keepBullets {
		cfg.NormalizeBullets = false
	}
	return nil
}

func buildPipeline(cfg *config.Configuration, dir string, stdout, stderr io.Writer) *release.Pipeline {
	r := newRunner(cfg.CommandTimeout())

	p := &release.Pipeline{
		ResolveManifest:  manifest.Resolver{RepoRoot: git.RepositoryRoot}.Resolve,
		ListTags:         git.ListTags,
		Notes:            github.NewClient(r, cfg.GhCmd, dir),
		Now:              now,
		Out:              stdout,
		Anchor:           changelog.Anchor{Mode: changelog.AnchorMode(cfg.Anchor), Header: cfg.Header},
		CreateMissing:    cfg.CreateMissing,
		NormalizeBullets: cfg.NormalizeBullets,
		Host:             cfg.Host,
	}
	if cfg.Formatter != "" {
		p.Formatter = changelog.Formatter{Runner: r, Command: cfg.Formatter}
	}
	if f, ok := stderr.(*os.File); ok {
		p.Activity = progress.NewSpinner(f, progress.DetectTerminalCapabilities(f))
	}
	return p
}

// classify maps a pipeline failure to the message shown to the user.
func classify(err error, cfg *config.Configuration, usage string) *cliErrors.CLIError {
	if cliErr := cliErrors.AsCLIError(err); cliErr != nil {
		return cliErr
	}

	var stageErr *release.StageError
	formatting := errors.As(err, &stageErr) && stageErr.Stage == release.StageFormat

	switch {
	case errors.Is(err, manifest.ErrManifestNotFound):
		return cliErrors.MissingTag(err, usage, manifest.Filenames())
	case errors.Is(err, manifest.ErrMalformedManifest):
		return cliErrors.MalformedManifest(err)
	case errors.Is(err, runner.ErrNotFound) && formatting:
		return cliErrors.CommandNotFound(formatterName(cfg.Formatter), denoInstallHint)
	case errors.Is(err, runner.ErrNotFound):
		return cliErrors.CommandNotFound(cfg.GhCmd, ghInstallHint)
	case errors.Is(err, github.ErrExternalCall):
		return cliErrors.ExternalCallFailed(err)
	case errors.Is(err, changelog.ErrMissingAnchor):
		return cliErrors.MissingAnchor(err, cfg.Header)
	case errors.Is(err, changelog.ErrFormatterFailed), formatting:
		return cliErrors.FormatterFailed(err)
	case errors.Is(err, context.DeadlineExceeded):
		return cliErrors.Wrap(err, cliErrors.Runtime,
			"Raise the per-command timeout: RELNOTES_TIMEOUT=120 or timeout: 120 in .relnotes.yml")
	default:
		return cliErrors.Wrap(err, cliErrors.Runtime)
	}
}

// formatterName returns the executable of a formatter command line.
func formatterName(command string) string {
	if parts, err := shlex.Split(command); err == nil && len(parts) > 0 {
		return parts[0]
	}
	return command
}

// enableDebug routes package debug hooks to w.
func enableDebug(w io.Writer) {
	logger := func(format string, args ...any) {
		fmt.Fprintf(w, "[debug] "+format+"\n", args...)
	}
	runner.SetDebugLogger(logger)
	git.SetDebugLogger(logger)
	release.SetDebugLogger(logger)
}

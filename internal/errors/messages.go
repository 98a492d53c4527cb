package errors

import (
	"fmt"
	"strings"
)

// Common error messages for the relnotes CLI.
// These templates keep the remediation advice consistent between commands.

// MissingTag is returned when no tag was given and none of the manifests
// supplied a version.
func MissingTag(cause error, usage string, manifests []string) *CLIError {
	err := NewArgumentErrorWithUsage(
		"no tag name specified and no version found in "+strings.Join(manifests, " or "),
		usage,
		"Pass the tag explicitly: relnotes v1.0.0",
		"Or add a \"version\" field to package.json",
		"Or add version under [project] in pyproject.toml",
	)
	err.Cause = cause
	return err
}

// MalformedManifest is returned when a manifest exists but cannot be parsed.
func MalformedManifest(err error) *CLIError {
	return Wrap(err, Configuration,
		"Fix the syntax error in the manifest file",
		"Or pass the tag explicitly to skip manifest detection",
	)
}

// ConfigParseError creates an error for an invalid relnotes config file.
func ConfigParseError(err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		"failed to load relnotes configuration",
		"Check .relnotes.yml and ~/.config/relnotes/config.yml for YAML syntax errors",
		"Check RELNOTES_* environment variables for invalid values",
	)
}

// CommandNotFound creates an error when an external CLI is not installed.
func CommandNotFound(name, install string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("%s command not found", name),
		install,
		fmt.Sprintf("Or check that %s is in your PATH", name),
	)
}

// ExternalCallFailed creates an error when gh (or another collaborator) exits non-zero.
func ExternalCallFailed(err error) *CLIError {
	return Wrap(err, Runtime,
		"Check that you are authenticated: gh auth status",
		"Check that the current directory belongs to a GitHub repository: gh repo view",
	)
}

// MissingAnchor creates an error when the changelog has no insertion point.
func MissingAnchor(err error, header string) *CLIError {
	return Wrap(err, Prerequisite,
		fmt.Sprintf("Add a %q line at the top of the changelog", header),
		"Or choose another file: relnotes <tag> <changelog_file>",
	)
}

// FormatterFailed creates an error when the post-write formatter fails.
func FormatterFailed(err error) *CLIError {
	return Wrap(err, Runtime,
		"The changelog was written; only the formatting step failed",
		"Disable formatting with --no-format or set formatter: \"\" in .relnotes.yml",
	)
}

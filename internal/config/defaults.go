package config

// GetDefaultConfigTemplate returns a commented .relnotes.yml with every option.
func GetDefaultConfigTemplate() string {
	return `# relnotes configuration

changelog_file: changelog.md          # Changelog used when no file argument is given
header: "# Changelog"                 # Top-level heading entries are anchored to
anchor: header                        # header: insert after the header | entry: before the first entry
create_missing: true                  # Start a new changelog when the file does not exist
normalize_bullets: true               # Rewrite "* " list markers to "- "
formatter: deno fmt --line-width=0    # Run on the changelog after writing ("" disables)
gh_cmd: gh                            # GitHub CLI executable
host: github.com                      # Web host for compare links (GitHub Enterprise host here)
timeout: 0                            # Per-command timeout in seconds (0 = none)
`
}

// GetDefaults returns the default configuration values as a map
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"changelog_file":    "changelog.md",
		"header":            "# Changelog",
		"anchor":            "header",
		"create_missing":    true,
		"normalize_bullets": true,
		"formatter":         "deno fmt --line-width=0",
		"gh_cmd":            "gh",
		"host":              "github.com",
		"timeout":           0,
	}
}

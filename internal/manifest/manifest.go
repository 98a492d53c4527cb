// Package manifest detects a project's name and version from its package
// manifest. Two formats are understood, in priority order: package.json
// (top-level name/version) and pyproject.toml ([project] or
// [tool.poetry]).
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	// ErrManifestNotFound is returned when no manifest yields a version.
	ErrManifestNotFound = errors.New("no version found in " + strings.Join(Filenames(), " or "))
	// ErrMalformedManifest is returned when a manifest exists but cannot be read or parsed.
	ErrMalformedManifest = errors.New("malformed manifest")
)

// UnknownName is used when a manifest declares a version but no name.
const UnknownName = "unknown"

// ProjectInfo is the name and version declared by a manifest.
type ProjectInfo struct {
	Name    string
	Version string
	// Path is the manifest the values were read from.
	Path string
	// Format is the manifest file name (package.json or pyproject.toml).
	Format string
}

// Tag derives the release tag from the version.
func (p *ProjectInfo) Tag() string {
	return TagFromVersion(p.Version)
}

// TagFromVersion prefixes version with "v" unless it already starts with one.
func TagFromVersion(version string) string {
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}

// format is one supported manifest type.
type format struct {
	filename string
	parser   koanf.Parser
	// tables lists the key prefixes holding name/version, tried in order.
	tables []string
}

// formats is the fixed search priority: package.json before pyproject.toml.
func formats() []format {
	return []format{
		{filename: "package.json", parser: json.Parser(), tables: []string{""}},
		{filename: "pyproject.toml", parser: toml.Parser(), tables: []string{"project", "tool.poetry"}},
	}
}

// Filenames returns the supported manifest names in priority order.
func Filenames() []string {
	fs := formats()
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.filename
	}
	return names
}

// Resolver finds the manifest governing a working directory.
type Resolver struct {
	// RepoRoot returns the version-control root of a directory. The root is
	// searched before the directory itself; nil or failing lookups are skipped.
	RepoRoot func(dir string) (string, error)
}

// Resolve searches the repository root of startDir, then startDir.
func (r Resolver) Resolve(startDir string) (*ProjectInfo, error) {
	var roots []string
	if r.RepoRoot != nil {
		if root, err := r.RepoRoot(startDir); err == nil {
			roots = append(roots, root)
		}
	}
	return Search(append(roots, startDir)...)
}

// Search searches the given roots in order. For each root and each format
// it walks upward to the nearest file of that format; the first one that
// declares a non-empty version wins. Empty roots are skipped. A manifest that
// exists but cannot be parsed aborts the search with ErrMalformedManifest.
func Search(roots ...string) (*ProjectInfo, error) {
	seen := make(map[string]bool)
	for _, root := range roots {
		if root == "" {
			continue
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", root, err)
		}

		for _, f := range formats() {
			path := findUpward(abs, f.filename)
			if path == "" || seen[path] {
				continue
			}
			seen[path] = true

			info, err := read(path, f)
			if err != nil {
				return nil, err
			}
			if info != nil {
				return info, nil
			}
		}
	}
	return nil, ErrManifestNotFound
}

// findUpward returns the path of filename in dir or its nearest ancestor,
// or "" when none of them has it.
func findUpward(dir, filename string) string {
	for {
		candidate := filepath.Join(dir, filename)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// read parses one manifest. It returns nil, nil when the file parses but
// declares no version.
func read(path string, f format) (*ProjectInfo, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), f.parser); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedManifest, path, err)
	}

	for _, table := range f.tables {
		version := strings.TrimSpace(k.String(key(table, "version")))
		if version == "" {
			continue
		}
		name := strings.TrimSpace(k.String(key(table, "name")))
		if name == "" {
			name = UnknownName
		}
		return &ProjectInfo{Name: name, Version: version, Path: path, Format: f.filename}, nil
	}
	return nil, nil
}

func key(table, field string) string {
	if table == "" {
		return field
	}
	return table + "." + field
}

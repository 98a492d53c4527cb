// Package git reads the repository facts relnotes needs: the repository root
// (searched first for manifests) and the tag history used to find the
// previous release. It uses the go-git library so no git CLI is required.
package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/hashicorp/go-version"
)

// ErrNotRepository is returned when a directory is not inside a git repository.
var ErrNotRepository = errors.New("not a git repository")

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// openRepo opens the git repository containing dir.
// DetectDotGit makes go-git traverse up the directory tree to the repository root.
func openRepo(dir string) (*git.Repository, error) {
	logDebug("[git] opening repository at %s", dir)

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotRepository)
	}
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", dir, err)
	}
	return repo, nil
}

// RepositoryRoot returns the absolute path to the root of the repository containing dir.
func RepositoryRoot(dir string) (string, error) {
	repo, err := openRepo(dir)
	if err != nil {
		return "", err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}

	root, err := filepath.Abs(worktree.Filesystem.Root())
	if err != nil {
		return "", fmt.Errorf("resolving repository root: %w", err)
	}
	logDebug("[git] RepositoryRoot: %s", root)
	return root, nil
}

// ListTags returns every tag of the repository containing dir, newest
// version first. A directory outside any repository has no history and
// yields an empty list.
func ListTags(dir string) ([]string, error) {
	repo, err := openRepo(dir)
	if errors.Is(err, ErrNotRepository) {
		logDebug("[git] ListTags: %v, treating as first release", err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	SortByVersion(tags)
	logDebug("[git] ListTags: found %d tags", len(tags))
	return tags, nil
}

// SortByVersion orders tags by descending version precedence, in place.
// Tags that do not parse as versions sort after all versions, in
// descending lexical order.
func SortByVersion(tags []string) {
	parsed := make(map[string]*version.Version, len(tags))
	for _, tag := range tags {
		if v, err := version.NewVersion(tag); err == nil {
			parsed[tag] = v
		}
	}

	sort.SliceStable(tags, func(i, j int) bool {
		vi, vj := parsed[tags[i]], parsed[tags[j]]
		switch {
		case vi != nil && vj != nil:
			if !vi.Equal(vj) {
				return vi.GreaterThan(vj)
			}
			return strings.Compare(tags[i], tags[j]) > 0
		case vi != nil:
			return true
		case vj != nil:
			return false
		default:
			return strings.Compare(tags[i], tags[j]) > 0
		}
	})
}

// PreviousTag picks the tag to compare current against from history (newest
// first). When current is in history and older tags exist, the next-older tag
// is returned. Otherwise the newest tag is the baseline, which lets a release
// be prepared before its tag exists. An empty history means a first release
// and returns false.
func PreviousTag(current string, history []string) (string, bool) {
	if len(history) == 0 {
		return "", false
	}
	for i, tag := range history {
		if tag == current && i < len(history)-1 {
			return history[i+1], true
		}
	}
	return history[0], true
}

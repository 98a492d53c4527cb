// Package github asks GitHub to generate release notes for a tag range. It
// drives the gh CLI so authentication, hosts and enterprise setups are
// whatever gh is already configured for.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ariel-frischer/relnotes/internal/runner"
)

// ErrExternalCall is returned when gh exits non-zero or prints something unusable.
var ErrExternalCall = errors.New("GitHub API call failed")

// DefaultCommand is the gh executable.
const DefaultCommand = "gh"

// DefaultHost is the web host compare links point at.
const DefaultHost = "github.com"

// Repository identifies the GitHub repository of the working directory.
type Repository struct {
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	Name string `json:"name"`
}

// FullName returns "owner/name".
func (r Repository) FullName() string {
	return r.Owner.Login + "/" + r.Name
}

// URL returns the web URL of the repository on host.
func (r Repository) URL(host string) string {
	if host == "" {
		host = DefaultHost
	}
	return fmt.Sprintf("https://%s/%s", host, r.FullName())
}

// NotesRequest is the body of POST /repos/{owner}/{repo}/releases/generate-notes.
type NotesRequest struct {
	TagName         string `json:"tag_name"`
	PreviousTagName string `json:"previous_tag_name,omitempty"`
	TargetCommitish string `json:"target_commitish,omitempty"`
}

// Notes is the generated release notes response.
type Notes struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

// Client talks to GitHub through gh.
type Client struct {
	Runner runner.Runner
	// Command is the gh executable (default "gh").
	Command string
	// Dir is the working directory gh runs in; it selects the repository.
	Dir string
}

// NewClient returns a Client running gh in dir.
func NewClient(r runner.Runner, command, dir string) *Client {
	if command == "" {
		command = DefaultCommand
	}
	return &Client{Runner: r, Command: command, Dir: dir}
}

// Repository runs `gh repo view --json owner,name`.
func (c *Client) Repository(ctx context.Context) (Repository, error) {
	var repo Repository
	out, err := c.run(ctx, nil, "repo", "view", "--json", "owner,name")
	if err != nil {
		return repo, err
	}
	if err := json.Unmarshal(out, &repo); err != nil {
		return repo, fmt.Errorf("%w: decoding repository: %v", ErrExternalCall, err)
	}
	if repo.Owner.Login == "" || repo.Name == "" {
		return repo, fmt.Errorf("%w: gh repo view returned no owner/name", ErrExternalCall)
	}
	return repo, nil
}

// GenerateNotes asks GitHub for the release notes of req. A blank previous
// tag is left out of the request entirely.
func (c *Client) GenerateNotes(ctx context.Context, repo Repository, req NotesRequest) (*Notes, error) {
	req.PreviousTagName = strings.TrimSpace(req.PreviousTagName)
	req.TargetCommitish = strings.TrimSpace(req.TargetCommitish)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding notes request: %w", err)
	}

	endpoint := fmt.Sprintf("repos/%s/releases/generate-notes", repo.FullName())
	out, err := c.run(ctx, body, "api", endpoint, "--method", "POST", "--input", "-")
	if err != nil {
		return nil, err
	}

	var notes Notes
	if err := json.Unmarshal(out, &notes); err != nil {
		return nil, fmt.Errorf("%w: decoding release notes: %v", ErrExternalCall, err)
	}
	return &notes, nil
}

// run executes gh and returns its stdout; a non-zero exit becomes ErrExternalCall.
func (c *Client) run(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
	cmd := runner.Command{Name: c.Command, Args: args, Dir: c.Dir, Stdin: stdin}
	result, err := c.Runner.Run(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", cmd, err)
	}
	if result.Failed() {
		msg := strings.TrimSpace(result.Stderr)
		if msg == "" {
			msg = strings.TrimSpace(result.Stdout)
		}
		return nil, fmt.Errorf("%w: %s exited %d: %s", ErrExternalCall, cmd, result.ExitCode, msg)
	}
	return []byte(result.Stdout), nil
}

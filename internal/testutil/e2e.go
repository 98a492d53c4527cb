package testutil

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var (
	// relnotesBinaryPath caches the built relnotes binary path.
	relnotesBinaryPath string
	relnotesBuildOnce  sync.Once
	relnotesBuildErr   error
)

// mockGhScript stands in for the GitHub CLI. It logs its arguments, saves
// the request body read from stdin, and answers with canned JSON.
const mockGhScript = `#!/bin/sh
echo "$*" >> "$MOCK_LOG_DIR/gh.calls"
if [ -n "$MOCK_GH_EXIT_CODE" ]; then
  echo "mock gh: simulated failure" >&2
  exit "$MOCK_GH_EXIT_CODE"
fi
case "$1" in
  repo)
    echo '{"name":"widget","owner":{"login":"acme"}}'
    ;;
  api)
    cat > "$MOCK_LOG_DIR/gh.stdin"
    cat "$MOCK_LOG_DIR/notes.json"
    ;;
  *)
    echo "mock gh: unexpected call: $*" >&2
    exit 2
    ;;
esac
`

// mockDenoScript records formatter invocations.
const mockDenoScript = `#!/bin/sh
echo "$*" >> "$MOCK_LOG_DIR/deno.calls"
`

// DefaultMockNotes is the generate-notes response served by the mock gh.
const DefaultMockNotes = `{"name":"release","body":"<!-- Release notes generated using configuration in .github/release.yml at main -->\n\n## What's Changed\n* Add widget by @dev in https://github.com/acme/widget/pull/1\n\n\n**Full Changelog**: https://github.com/acme/widget/compare/v1.0.0...v1.1.0"}`

// E2EEnv provides an isolated environment for running the relnotes binary.
// A mock gh and a mock deno are the first entries in PATH, so the real
// GitHub CLI is never invoked.
type E2EEnv struct {
	t          *testing.T
	tempDir    string
	binDir     string
	logDir     string
	projectDir string
	ghExitCode int
}

// CommandResult captures the result of running a relnotes command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// NewE2EEnv creates a new E2E test environment with PATH isolation.
func NewE2EEnv(t *testing.T) *E2EEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("mock binaries are shell scripts")
	}

	root := t.TempDir()
	env := &E2EEnv{
		t:          t,
		tempDir:    root,
		binDir:     filepath.Join(root, "bin"),
		logDir:     filepath.Join(root, "log"),
		projectDir: filepath.Join(root, "project"),
	}
	for _, dir := range []string{env.binDir, env.logDir, env.projectDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("creating %s: %v", dir, err)
		}
	}

	env.writeExecutable("gh", mockGhScript)
	env.writeExecutable("deno", mockDenoScript)
	env.SetNotes(DefaultMockNotes)
	env.buildRelnotes()
	return env
}

func (e *E2EEnv) writeExecutable(name, content string) {
	e.t.Helper()
	if err := os.WriteFile(filepath.Join(e.binDir, name), []byte(content), 0o755); err != nil {
		e.t.Fatalf("writing mock %s: %v", name, err)
	}
}

func (e *E2EEnv) buildRelnotes() {
	e.t.Helper()

	relnotesBuildOnce.Do(func() {
		relnotesBinaryPath, relnotesBuildErr = doBuildRelnotes()
	})
	if relnotesBuildErr != nil {
		e.t.Fatalf("building relnotes: %v", relnotesBuildErr)
	}

	content, err := os.ReadFile(relnotesBinaryPath)
	if err != nil {
		e.t.Fatalf("reading relnotes binary: %v", err)
	}
	e.writeExecutable("relnotes", string(content))
}

func doBuildRelnotes() (string, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("determining current file location")
	}
	repoRoot := filepath.Join(filepath.Dir(currentFile), "..", "..")

	tmpDir, err := os.MkdirTemp("", "relnotes-build-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir for build: %w", err)
	}
	binaryPath := filepath.Join(tmpDir, "relnotes")

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/relnotes")
	cmd.Dir = repoRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("go build: %w\nOutput: %s", err, output)
	}
	return binaryPath, nil
}

// Run executes relnotes in the project directory.
func (e *E2EEnv) Run(args ...string) CommandResult {
	e.t.Helper()

	start := time.Now()
	cmd := exec.Command(filepath.Join(e.binDir, "relnotes"), args...)
	cmd.Dir = e.projectDir
	cmd.Env = e.buildIsolatedEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
		}
	}
	return result
}

func (e *E2EEnv) buildIsolatedEnv() []string {
	isolatedPath := e.binDir
	if systemPath := os.Getenv("PATH"); systemPath != "" {
		isolatedPath = e.binDir + string(os.PathListSeparator) + systemPath
	}

	env := []string{
		"PATH=" + isolatedPath,
		"HOME=" + e.tempDir,
		"XDG_CONFIG_HOME=" + filepath.Join(e.tempDir, "config"),
		"MOCK_LOG_DIR=" + e.logDir,
		"NO_COLOR=1",
	}
	if e.ghExitCode != 0 {
		env = append(env, fmt.Sprintf("MOCK_GH_EXIT_CODE=%d", e.ghExitCode))
	}

	// GH_TOKEN and friends are deliberately not passed through.
	for _, key := range []string{"LANG", "LC_ALL", "TMPDIR", "TMP", "TEMP"} {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}
	return env
}

// ProjectDir returns the working directory relnotes runs in.
func (e *E2EEnv) ProjectDir() string {
	return e.projectDir
}

// WriteFile writes a file relative to the project directory.
func (e *E2EEnv) WriteFile(name, content string) {
	e.t.Helper()
	path := filepath.Join(e.projectDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		e.t.Fatalf("creating directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatalf("writing %s: %v", name, err)
	}
}

// ReadFile reads a file relative to the project directory.
func (e *E2EEnv) ReadFile(name string) string {
	e.t.Helper()
	data, err := os.ReadFile(filepath.Join(e.projectDir, name))
	if err != nil {
		e.t.Fatalf("reading %s: %v", name, err)
	}
	return string(data)
}

// InitRepo makes the project directory a git repository with one commit
// carrying the given lightweight tags.
func (e *E2EEnv) InitRepo(tags ...string) {
	e.t.Helper()

	repo, err := git.PlainInit(e.projectDir, false)
	if err != nil {
		e.t.Fatalf("git init: %v", err)
	}
	e.WriteFile(".keep", "")
	wt, err := repo.Worktree()
	if err != nil {
		e.t.Fatalf("worktree: %v", err)
	}
	if _, err := wt.Add(".keep"); err != nil {
		e.t.Fatalf("git add: %v", err)
	}
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		e.t.Fatalf("git commit: %v", err)
	}
	for _, tag := range tags {
		if _, err := repo.CreateTag(tag, hash, nil); err != nil {
			e.t.Fatalf("git tag %s: %v", tag, err)
		}
	}
}

// SetNotes sets the JSON body the mock gh returns for generate-notes.
func (e *E2EEnv) SetNotes(json string) {
	e.t.Helper()
	if err := os.WriteFile(filepath.Join(e.logDir, "notes.json"), []byte(json), 0o644); err != nil {
		e.t.Fatalf("writing mock notes: %v", err)
	}
}

// SetGhExitCode makes every mock gh call fail with code.
func (e *E2EEnv) SetGhExitCode(code int) {
	e.ghExitCode = code
}

// GhCalls returns the argument lines the mock gh was called with.
func (e *E2EEnv) GhCalls() []string {
	return e.readLog("gh.calls")
}

// DenoCalls returns the argument lines the mock deno was called with.
func (e *E2EEnv) DenoCalls() []string {
	return e.readLog("deno.calls")
}

// GhStdin returns the request body the mock gh read on its last api call.
func (e *E2EEnv) GhStdin() string {
	data, err := os.ReadFile(filepath.Join(e.logDir, "gh.stdin"))
	if err != nil {
		return ""
	}
	return string(data)
}

func (e *E2EEnv) readLog(name string) []string {
	data, err := os.ReadFile(filepath.Join(e.logDir, name))
	if err != nil {
		return nil
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

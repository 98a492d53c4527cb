// Package testutil provides test utilities and helpers for relnotes tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"testing"
)

// HelperProcessConfig configures the behavior of TestHelperProcess.
type HelperProcessConfig struct {
	// ExitCode is the exit code to return (default 0).
	ExitCode int `json:"exit_code"`
	// Stdout is the content to write to stdout.
	Stdout string `json:"stdout"`
	// Stderr is the content to write to stderr.
	Stderr string `json:"stderr"`
	// EchoStdin copies everything read from stdin to stdout after Stdout.
	EchoStdin bool `json:"echo_stdin"`
}

// HelperProcessEnvVars contains the environment variable names used by TestHelperProcess.
const (
	// EnvWantHelperProcess signals that the test binary should run as a helper process.
	EnvWantHelperProcess = "GO_WANT_HELPER_PROCESS"
	// EnvHelperProcessConfig contains JSON-encoded HelperProcessConfig.
	EnvHelperProcessConfig = "GO_HELPER_PROCESS_CONFIG"
)

// TestHelperProcess is a function to be called from a test function to
// implement the helper process pattern. When invoked with
// GO_WANT_HELPER_PROCESS=1, it behaves as a fake gh / formatter and exits
// without returning.
//
// Usage in test file:
//
//	func TestHelperProcess(t *testing.T) {
//	    testutil.TestHelperProcess(t)
//	}
func TestHelperProcess(t *testing.T) {
	if os.Getenv(EnvWantHelperProcess) != "1" {
		return
	}

	runHelperProcess(parseHelperConfig())
}

// parseHelperConfig parses HelperProcessConfig from environment variable.
func parseHelperConfig() HelperProcessConfig {
	config := HelperProcessConfig{}
	if configJSON := os.Getenv(EnvHelperProcessConfig); configJSON != "" {
		// Ignore parse errors; use defaults on failure
		_ = json.Unmarshal([]byte(configJSON), &config)
	}
	return config
}

// runHelperProcess executes the helper process behavior and always exits.
func runHelperProcess(config HelperProcessConfig) {
	if config.Stdout != "" {
		fmt.Fprint(os.Stdout, config.Stdout)
	}
	if config.EchoStdin {
		_, _ = io.Copy(os.Stdout, os.Stdin)
	}
	if config.Stderr != "" {
		fmt.Fprint(os.Stderr, config.Stderr)
	}
	os.Exit(config.ExitCode)
}

// HelperCommand describes how to start the test binary as a helper process
// in place of a real command.
type HelperCommand struct {
	// Name is the test binary path.
	Name string
	// Args selects the helper test function.
	Args []string
	// Env carries the helper marker and configuration.
	Env []string
}

// NewHelperCommand builds a HelperCommand for the test function testName,
// which must call TestHelperProcess.
func NewHelperCommand(t *testing.T, testName string, config HelperProcessConfig) HelperCommand {
	t.Helper()

	testBinary, err := os.Executable()
	if err != nil {
		t.Fatalf("failed to get test binary path: %v", err)
	}

	return HelperCommand{
		Name: testBinary,
		Args: []string{"-test.run=^" + testName + "$"},
		Env:  buildHelperEnv(t, config),
	}
}

// buildHelperEnv constructs the environment variables for helper process.
func buildHelperEnv(t *testing.T, config HelperProcessConfig) []string {
	t.Helper()

	env := []string{EnvWantHelperProcess + "=1"}
	configJSON, err := json.Marshal(config)
	if err != nil {
		t.Fatalf("encoding helper config: %v", err)
	}
	return append(env, EnvHelperProcessConfig+"="+string(configJSON))
}

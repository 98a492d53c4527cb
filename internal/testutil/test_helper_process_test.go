package testutil

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelperProcessFunc(t *testing.T) {
	TestHelperProcess(t)
}

func TestNewHelperCommand(t *testing.T) {
	hc := NewHelperCommand(t, "TestHelperProcessFunc", HelperProcessConfig{ExitCode: 2})

	assert.NotEmpty(t, hc.Name)
	assert.Equal(t, []string{"-test.run=^TestHelperProcessFunc$"}, hc.Args)
	require.Len(t, hc.Env, 2)
	assert.Equal(t, EnvWantHelperProcess+"=1", hc.Env[0])
	assert.True(t, strings.HasPrefix(hc.Env[1], EnvHelperProcessConfig+"="))
	assert.Contains(t, hc.Env[1], `"exit_code":2`)
}

func TestHelperProcess_Behaviour(t *testing.T) {
	tests := map[string]struct {
		config     HelperProcessConfig
		stdin      string
		wantStdout string
		wantStderr string
		wantCode   int
	}{
		"stdout only": {
			config:     HelperProcessConfig{Stdout: "hello"},
			wantStdout: "hello",
		},
		"stderr and exit code": {
			config:     HelperProcessConfig{Stderr: "boom", ExitCode: 3},
			wantStderr: "boom",
			wantCode:   3,
		},
		"echo stdin": {
			config:     HelperProcessConfig{Stdout: "in:", EchoStdin: true},
			stdin:      `{"tag_name":"v1.0.0"}`,
			wantStdout: `in:{"tag_name":"v1.0.0"}`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			hc := NewHelperCommand(t, "TestHelperProcessFunc", tt.config)

			cmd := exec.Command(hc.Name, hc.Args...)
			cmd.Env = append(os.Environ(), hc.Env...)
			cmd.Stdin = strings.NewReader(tt.stdin)
			var stdout, stderr bytes.Buffer
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr

			_ = cmd.Run()

			assert.Equal(t, tt.wantStdout, stdout.String())
			assert.Equal(t, tt.wantStderr, stderr.String())
			assert.Equal(t, tt.wantCode, cmd.ProcessState.ExitCode())
		})
	}
}

func TestParseHelperConfig_InvalidJSON(t *testing.T) {
	t.Setenv(EnvHelperProcessConfig, "{not json")

	assert.Equal(t, HelperProcessConfig{}, parseHelperConfig())
}

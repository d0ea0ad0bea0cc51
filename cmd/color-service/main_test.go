package main

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/otherjamesbrown/color-service/internal/errors"
	"github.com/otherjamesbrown/color-service/internal/identity"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected settings
	}{
		{"no arguments", nil, settings{Color: "blue", Text: "Hi there!"}},
		{"color only", []string{"green"}, settings{Color: "green", Text: "Hi there!"}},
		{"color and text", []string{"green", "hello"}, settings{Color: "green", Text: "hello"}},
		{"extra arguments ignored", []string{"red", "a", "b"}, settings{Color: "red", Text: "a"}},
		{"dash-prefixed text kept", []string{"red", "--not-a-flag"}, settings{Color: "red", Text: "--not-a-flag"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, parseArgs(tc.args))
		})
	}
}

func TestRootCommandDoesNotParseFlags(t *testing.T) {
	cmd := newRootCommand()
	var got []string
	cmd.RunE = func(_ *cobra.Command, args []string) error {
		got = args
		return nil
	}
	cmd.SetArgs([]string{"-x", "--help"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, []string{"-x", "--help"}, got)
}

func TestCheckPreconditions(t *testing.T) {
	present := filepath.Join(t.TempDir(), "namespace")
	require.NoError(t, os.WriteFile(present, []byte("team-z"), 0o600))
	missing := filepath.Join(t.TempDir(), "missing")

	tests := []struct {
		name         string
		env          map[string]string
		file         string
		wantHostname bool
		wantWarnings int
	}{
		{"hostname present", map[string]string{identity.HostnameEnv: "h"}, missing, false, 0},
		{"hostname missing", map[string]string{}, missing, true, 0},
		{"override readable", map[string]string{identity.HostnameEnv: "h", identity.NamespaceEnv: "ns"}, present, false, 0},
		{"override missing", map[string]string{identity.HostnameEnv: "h", identity.NamespaceEnv: "ns"}, missing, false, 1},
		{"empty namespace skips override", map[string]string{identity.HostnameEnv: "h", identity.NamespaceEnv: ""}, missing, false, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			resolver := identity.NewResolver(
				identity.WithLookup(func(k string) (string, bool) {
					v, ok := tc.env[k]
					return v, ok
				}),
				identity.WithNamespaceFile(tc.file),
			)

			err := checkPreconditions(context.Background(), zap.New(core), resolver)
			if tc.wantHostname {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrHostnameUnset))
				assert.Contains(t, err.Error(), "HOSTNAME environment variable is not set")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.wantWarnings, logs.FilterLevelExact(zapcore.WarnLevel).Len())
		})
	}
}

// TestMissingHostnameExitsNonZero runs the binary's entrypoint in a child
// process without HOSTNAME and asserts it exits with status 1 before binding.
func TestMissingHostnameExitsNonZero(t *testing.T) {
	if os.Getenv("COLOR_SERVICE_EXEC_MAIN") == "1" {
		os.Exit(execute([]string{"green", "hello"}))
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestMissingHostnameExitsNonZero$")
	cmd.Env = append(envWithout(os.Environ(), identity.HostnameEnv), "COLOR_SERVICE_EXEC_MAIN=1")
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "expected non-zero exit, got %v\n%s", err, out)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, string(out), apperrors.CodeHostnameUnset)
	assert.NotContains(t, string(out), "Starting HTTP server")
}

func envWithout(env []string, key string) []string {
	out := make([]string, 0, len(env))
	for _, kv := range env {
		if strings.HasPrefix(kv, key+"=") {
			continue
		}
		out = append(out, kv)
	}
	return out
}

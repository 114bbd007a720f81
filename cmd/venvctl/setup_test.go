// Copyright 2025 The venvctl Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"context"
	"os"
	"runtime"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/venvctl/venvctl/pkg/bootstrap"
)

// stubRunner resolves python3 to a fixed path and records invocations
// instead of executing them. With failInstall set, the install invocation
// reports a failure the way an unreachable index would.
func stubRunner(calls *[]string, failInstall bool) *bootstrap.Runner {
	return bootstrap.NewRunnerWith(
		func(name string) (string, error) {
			if name == "python3" {
				return "/usr/bin/python3", nil
			}
			return "", errors.Errorf("%s: executable file not found", name)
		},
		func(_ context.Context, _ []string, name string, args ...string) ([]byte, error) {
			*calls = append(*calls, name)
			if failInstall && len(args) > 0 && args[0] == "install" {
				return []byte("network unreachable"), errors.New("exit status 1")
			}
			return []byte("ok"), nil
		},
	)
}

// setupTestCommand wires a setup command against a stub runner and a
// captured output buffer, restoring the package state afterwards.
func setupTestCommand(t *testing.T, workDir string, runner *bootstrap.Runner) (*cli.Command, *bytes.Buffer) {
	t.Helper()

	home := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	} else {
		t.Setenv("HOME", home)
	}

	prevDir := workingDir
	workingDir = workDir
	t.Cleanup(func() { workingDir = prevDir })

	prevRunner := setupRunner
	setupRunner = runner
	t.Cleanup(func() { setupRunner = prevRunner })

	buf := &bytes.Buffer{}
	prevOut := out
	out = buf
	t.Cleanup(func() { out = prevOut })

	cmd := &cli.Command{
		Name:   "venvctl",
		Flags:  append(setupTestFlags(), &cli.BoolFlag{Name: "yes"}),
		Action: runSetup,
	}
	return cmd, buf
}

func TestSetupPrintsCompletionNoticeWhenInstallFails(t *testing.T) {
	tmp := t.TempDir()
	var calls []string
	cmd, buf := setupTestCommand(t, tmp, stubRunner(&calls, true))

	require.NoError(t, cmd.Run(context.Background(), []string{"venvctl"}))

	require.Contains(t, buf.String(), bootstrap.CompletionNotice,
		"default mode prints the notice even when the install step failed")
	require.Contains(t, buf.String(), "✗ install")
	require.Contains(t, buf.String(), "network unreachable")

	// every invocation went through the stub; the working directory gained
	// no entries outside the env dir (or at all, here)
	require.Len(t, calls, 3)
	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSetupSuccessReportsEnvironmentLocation(t *testing.T) {
	tmp := t.TempDir()
	var calls []string
	cmd, buf := setupTestCommand(t, tmp, stubRunner(&calls, false))

	require.NoError(t, cmd.Run(context.Background(), []string{"venvctl"}))
	require.Contains(t, buf.String(), bootstrap.CompletionNotice)
	require.Contains(t, buf.String(), bootstrap.DefaultEnvDir)
}

func TestSetupStrictInstallFailureReturnsError(t *testing.T) {
	tmp := t.TempDir()
	var calls []string
	cmd, buf := setupTestCommand(t, tmp, stubRunner(&calls, true))

	err := cmd.Run(context.Background(), []string{"venvctl", "--strict"})
	require.Error(t, err)
	require.NotContains(t, buf.String(), bootstrap.CompletionNotice)
}

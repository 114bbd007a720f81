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

package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	name string
	args []string
	env  []string
}

// recordingRunner resolves python3 to a fixed path and records every
// invocation instead of executing it. failWhen marks invocations that
// should report failure.
func recordingRunner(calls *[]recordedCall, failWhen func(name string, args []string) bool) *Runner {
	r := NewRunner()
	r.lookPath = func(name string) (string, error) {
		if name == "python3" {
			return "/usr/bin/python3", nil
		}
		return "", errors.Errorf("%s: executable file not found", name)
	}
	r.run = func(_ context.Context, env []string, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, recordedCall{name: name, args: args, env: env})
		if failWhen != nil && failWhen(name, args) {
			return []byte("simulated tool failure\ndetails on stderr"), errors.New("exit status 1")
		}
		return []byte("ok"), nil
	}
	return r
}

func TestRunInvokesStepsInOrderWithExplicitPaths(t *testing.T) {
	tmp := t.TempDir()
	var calls []recordedCall
	b := New(Options{WorkDir: tmp}, recordingRunner(&calls, nil))

	results, err := b.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, res := range results {
		require.NoError(t, res.Err)
	}

	venv := b.Venv()
	require.Equal(t, filepath.Join(tmp, DefaultEnvDir), venv.Root)

	// create, then upgrade, then install
	require.Len(t, calls, 3)
	require.Equal(t, "/usr/bin/python3", calls[0].name)
	require.Equal(t, []string{"-m", "venv", venv.Root}, calls[0].args)

	// upgrade and install are addressed inside the env dir, not via PATH
	require.Equal(t, venv.Python(), calls[1].name)
	require.Equal(t, []string{"-m", "pip", "install", "--upgrade", "pip"}, calls[1].args)
	require.True(t, strings.HasPrefix(calls[1].name, venv.Root))

	require.Equal(t, venv.Pip(), calls[2].name)
	require.Equal(t, []string{"install", "pyautogui"}, calls[2].args)
	require.True(t, strings.HasPrefix(calls[2].name, venv.Root))
}

func TestRunSkipsCreationWhenEnvExists(t *testing.T) {
	tmp := t.TempDir()
	envDir := filepath.Join(tmp, DefaultEnvDir)
	require.NoError(t, os.MkdirAll(envDir, 0755))
	marker := filepath.Join(envDir, "marker.txt")
	require.NoError(t, os.WriteFile(marker, []byte("keep me"), 0644))

	var calls []recordedCall
	b := New(Options{WorkDir: tmp}, recordingRunner(&calls, nil))

	results, err := b.Run(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, results[1].Skipped)

	for _, c := range calls {
		require.NotContains(t, c.args, "venv", "creation must not run again")
	}

	content, err := os.ReadFile(marker)
	require.NoError(t, err)
	require.Equal(t, "keep me", string(content))
}

func TestRunContinuesAfterFailureByDefault(t *testing.T) {
	tmp := t.TempDir()
	var calls []recordedCall
	// every pip invocation fails, as if the network were unreachable
	r := recordingRunner(&calls, func(_ string, args []string) bool {
		return len(args) > 0 && (args[0] == "install" || args[0] == "-m" && args[1] == "pip")
	})
	b := New(Options{WorkDir: tmp}, r)

	results, err := b.Run(context.Background(), nil)
	require.NoError(t, err, "best-effort mode never fails the run")
	require.Len(t, results, 4)
	require.True(t, results[2].Failed())
	require.True(t, results[3].Failed())
	require.Contains(t, results[3].Output, "simulated tool failure")

	// the install was still attempted after the failed upgrade
	require.Equal(t, "install", calls[2].args[0])
}

func TestRunStrictStopsAtFirstFailure(t *testing.T) {
	tmp := t.TempDir()
	var calls []recordedCall
	r := recordingRunner(&calls, func(_ string, args []string) bool {
		return len(args) > 1 && args[1] == "pip"
	})
	b := New(Options{WorkDir: tmp, Strict: true}, r)

	results, err := b.Run(context.Background(), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), string(StepPipUpgrade))
	require.Len(t, results, 3)

	for _, c := range calls {
		require.NotEqual(t, "install", c.args[0], "install must not run after a strict failure")
	}
}

func TestRunMissingInterpreterIsFatal(t *testing.T) {
	var calls []recordedCall
	r := recordingRunner(&calls, nil)
	r.lookPath = func(name string) (string, error) {
		return "", errors.Errorf("%s: executable file not found", name)
	}
	b := New(Options{WorkDir: t.TempDir()}, r)

	results, err := b.Run(context.Background(), nil)
	require.Error(t, err)
	require.ErrorIs(t, errors.Cause(err), ErrNoInterpreter)
	require.Len(t, results, 1)
	require.Empty(t, calls, "nothing must be invoked without an interpreter")
}

func TestRunPassesExtraEnvToPipOnly(t *testing.T) {
	tmp := t.TempDir()
	var calls []recordedCall
	b := New(Options{
		WorkDir:  tmp,
		ExtraEnv: []string{"PIP_INDEX_URL=https://mirror.example/simple"},
	}, recordingRunner(&calls, nil))

	_, err := b.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, calls, 3)
	require.Empty(t, calls[0].env, "venv creation does not need the pip env")
	require.Contains(t, calls[1].env, "PIP_INDEX_URL=https://mirror.example/simple")
	require.Contains(t, calls[2].env, "PIP_INDEX_URL=https://mirror.example/simple")
}

func TestRunInstallsFromRequirementsFile(t *testing.T) {
	tmp := t.TempDir()
	var calls []recordedCall
	b := New(Options{WorkDir: tmp, Requirements: "requirements.txt"}, recordingRunner(&calls, nil))

	_, err := b.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, []string{"install", "-r", "requirements.txt"}, calls[2].args)
}

func TestRunRecordsAwaitErrorAsStepFailure(t *testing.T) {
	tmp := t.TempDir()
	var calls []recordedCall
	b := New(Options{WorkDir: tmp}, recordingRunner(&calls, nil))

	// the wrapper fails one step without ever running its action, the way a
	// cancelled spinner would
	await := func(title string, ctx context.Context, action func(ctx context.Context) error) error {
		if title == "Upgrading pip" {
			return context.Canceled
		}
		return action(ctx)
	}
	results, err := b.Run(context.Background(), await)
	require.NoError(t, err, "best-effort mode never fails the run")
	require.Len(t, results, 4)
	require.True(t, results[2].Failed(), "a dropped wrapper error would render this step as passed")
	require.ErrorIs(t, results[2].Err, context.Canceled)

	// the skipped action never reached the runner; the install still ran
	require.Len(t, calls, 2)
	require.Equal(t, "install", calls[1].args[0])
}

func TestRunAwaitWrapsEveryStep(t *testing.T) {
	tmp := t.TempDir()
	var calls []recordedCall
	b := New(Options{WorkDir: tmp}, recordingRunner(&calls, nil))

	var titles []string
	await := func(title string, ctx context.Context, action func(ctx context.Context) error) error {
		titles = append(titles, title)
		return action(ctx)
	}
	results, err := b.Run(context.Background(), await)
	require.NoError(t, err)
	require.Len(t, titles, len(results))
}

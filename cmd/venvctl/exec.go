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
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/venvctl/venvctl/pkg/bootstrap"
)

var ExecCommands = []*cli.Command{
	{
		Name:      "exec",
		Category:  "Core",
		Usage:     "Run a command with the environment's bin directory first in PATH",
		ArgsUsage: "CMD [ARGS...]",
		Action:    runExec,
		Flags: []cli.Flag{
			envDirFlag,
		},
	},
}

// The child process gets the activated-environment view (PATH and
// VIRTUAL_ENV); the calling shell keeps its own.
func runExec(ctx context.Context, cmd *cli.Command) error {
	args, err := extractArgs(cmd)
	if err != nil {
		return err
	}

	opts, _, err := loadSetupOptions(cmd)
	if err != nil {
		return err
	}
	venv := bootstrap.NewVenv(opts.WorkDir, opts.EnvDir)
	if !venv.Exists() {
		return errors.Errorf("no environment at %s, run `venvctl setup` first", venv.Root)
	}

	root, err := filepath.Abs(venv.Root)
	if err != nil {
		return err
	}
	binDir, err := filepath.Abs(venv.BinDir())
	if err != nil {
		return err
	}

	c := exec.CommandContext(ctx, args[0], args[1:]...)
	c.Env = append(os.Environ(),
		"PATH="+binDir+string(os.PathListSeparator)+os.Getenv("PATH"),
		"VIRTUAL_ENV="+root,
	)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

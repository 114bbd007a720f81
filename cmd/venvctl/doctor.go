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
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/venvctl/venvctl/pkg/bootstrap"
	"github.com/venvctl/venvctl/pkg/util"
)

var DoctorCommands = []*cli.Command{
	{
		Name:     "doctor",
		Category: "Core",
		Usage:    "Check that the host can bootstrap and use the environment",
		Action:   runDoctor,
		Flags: []cli.Flag{
			envDirFlag,
			pythonFlag,
		},
	},
}

type checkResult struct {
	name   string
	detail string
	err    error
}

func runDoctor(ctx context.Context, cmd *cli.Command) error {
	opts, cliConf, err := loadSetupOptions(cmd)
	if err != nil {
		return err
	}

	runner := bootstrap.NewRunner().WithLogger(log)
	venv := bootstrap.NewVenv(opts.WorkDir, opts.EnvDir)

	interpreter := &checkResult{name: "interpreter"}
	version := &checkResult{name: "interpreter version"}
	envDir := &checkResult{name: "environment directory"}
	pip := &checkResult{name: "environment pip"}

	// interpreter checks depend on each other, the env checks don't; run
	// the two chains concurrently, failures are collected, never returned
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		python, err := bootstrap.FindInterpreter(runner, opts.Python)
		if err != nil {
			interpreter.err = err
			version.err = errors.New("skipped, no interpreter")
			return nil
		}
		interpreter.detail = python

		v, err := bootstrap.InterpreterVersion(ctx, runner, python)
		if err != nil {
			version.err = err
			return nil
		}
		version.detail = v.String()
		version.err = bootstrap.CheckMinimumVersion(v, cliConf.MinimumPython)
		return nil
	})
	g.Go(func() error {
		if !venv.Exists() {
			envDir.err = errors.Errorf("%s does not exist, run `venvctl setup`", venv.Root)
			pip.err = errors.New("skipped, no environment")
			return nil
		}
		envDir.detail = venv.Root

		out, err := venv.PipVersion(ctx, runner)
		if err != nil {
			pip.err = err
			return nil
		}
		pip.detail = out
		return nil
	})
	_ = g.Wait()

	failed := 0
	for _, check := range []*checkResult{interpreter, version, envDir, pip} {
		if check.err != nil {
			failed++
			fmt.Println(util.FailureStyle.Render("✗ "+check.name) + ": " + check.err.Error())
		} else {
			fmt.Println(util.SuccessStyle.Render("✓ "+check.name) + " " + util.Dimmed(check.detail))
		}
	}

	if failed > 0 {
		return errors.Errorf("%d of 4 checks failed", failed)
	}
	return nil
}

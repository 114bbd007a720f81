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

// Package bootstrap turns a bare project directory into one with a working
// isolated Python environment: it locates an interpreter, creates the env
// directory if absent, upgrades pip inside it, and installs the configured
// packages. Every tool inside the environment is addressed by its absolute
// path; the caller's PATH is never modified.
package bootstrap

import (
	"context"
	"os"
	"os/exec"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// DefaultEnvDir is the environment directory created next to the
	// project when none is configured.
	DefaultEnvDir = "venv"

	// CompletionNotice is printed after a setup run. In best-effort mode it
	// is printed regardless of individual step outcomes.
	CompletionNotice = "Setup complete."
)

// DefaultPackages is installed when neither a package list nor a
// requirements source is configured.
var DefaultPackages = []string{"pyautogui"}

type StepName string

const (
	StepInterpreter StepName = "interpreter"
	StepVenv        StepName = "venv"
	StepPipUpgrade  StepName = "pip-upgrade"
	StepInstall     StepName = "install"
)

// StepResult is the outcome of a single bootstrap step. Output holds the
// invoked tool's combined stdout/stderr, or the resolved path for the
// interpreter step.
type StepResult struct {
	Step    StepName
	Skipped bool
	Output  string
	Err     error
}

func (r *StepResult) Failed() bool {
	return r.Err != nil
}

// RunFunc executes a command to completion and returns its combined output.
// extraEnv entries are appended to the inherited environment.
type RunFunc func(ctx context.Context, extraEnv []string, name string, args ...string) ([]byte, error)

// Runner invokes external tools. The function fields exist so tests can
// substitute recordings for real process execution.
type Runner struct {
	lookPath func(string) (string, error)
	run      RunFunc
	log      zerolog.Logger
}

func NewRunner() *Runner {
	return &Runner{
		lookPath: exec.LookPath,
		run:      runCommand,
		log:      zerolog.Nop(),
	}
}

// NewRunnerWith builds a Runner around custom lookup and execution
// functions. Command-layer tests use it to record invocations instead of
// executing them; a nil function keeps the real one.
func NewRunnerWith(lookPath func(string) (string, error), run RunFunc) *Runner {
	r := NewRunner()
	if lookPath != nil {
		r.lookPath = lookPath
	}
	if run != nil {
		r.run = run
	}
	return r
}

func (r *Runner) WithLogger(log zerolog.Logger) *Runner {
	r.log = log
	return r
}

func (r *Runner) LookPath(name string) (string, error) {
	return r.lookPath(name)
}

func (r *Runner) Run(ctx context.Context, extraEnv []string, name string, args ...string) ([]byte, error) {
	r.log.Debug().Str("command", name).Strs("args", args).Msg("invoking")
	return r.run(ctx, extraEnv, name, args...)
}

func runCommand(ctx context.Context, extraEnv []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}
	return cmd.CombinedOutput()
}

// Options configures a bootstrap sequence. Zero values reproduce the
// classic fixed behavior: a `venv` directory in the working directory and
// the default package set.
type Options struct {
	WorkDir      string
	EnvDir       string
	Python       string
	Packages     []string
	Requirements string
	ExtraEnv     []string
	Strict       bool
}

type Bootstrap struct {
	opts   Options
	runner *Runner
	venv   *Venv
	python string
}

func New(opts Options, runner *Runner) *Bootstrap {
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	if opts.EnvDir == "" {
		opts.EnvDir = DefaultEnvDir
	}
	if len(opts.Packages) == 0 && opts.Requirements == "" {
		opts.Packages = DefaultPackages
	}
	if runner == nil {
		runner = NewRunner()
	}
	return &Bootstrap{
		opts:   opts,
		runner: runner,
		venv:   NewVenv(opts.WorkDir, opts.EnvDir),
	}
}

func (b *Bootstrap) Venv() *Venv {
	return b.venv
}

// AwaitFunc wraps the execution of one step, e.g. with a spinner. A wrapper
// error returned without the action having failed (a cancelled context can
// stop the spinner before the action runs) is recorded against the step.
type AwaitFunc func(title string, ctx context.Context, action func(ctx context.Context) error) error

type step struct {
	name  StepName
	title string
	fatal bool
	run   func(ctx context.Context, res *StepResult)
}

func (b *Bootstrap) steps() []step {
	return []step{
		{StepInterpreter, "Locating Python interpreter", true, b.ensureInterpreter},
		{StepVenv, "Creating virtual environment", false, b.ensureVenv},
		{StepPipUpgrade, "Upgrading pip", false, b.upgradePip},
		{StepInstall, "Installing packages", false, b.installPackages},
	}
}

// Run executes the bootstrap steps in order and returns one result per
// executed step. In best-effort mode (the default) a failed step is
// recorded and the remaining steps still run. With Strict set, the first
// failure stops the sequence and is returned as an error. A missing
// interpreter is fatal in both modes since nothing later can run without
// one.
func (b *Bootstrap) Run(ctx context.Context, await AwaitFunc) ([]*StepResult, error) {
	if await == nil {
		await = func(_ string, ctx context.Context, action func(ctx context.Context) error) error {
			return action(ctx)
		}
	}

	var results []*StepResult
	for _, s := range b.steps() {
		res := &StepResult{Step: s.name}
		awaitErr := await(s.title, ctx, func(ctx context.Context) error {
			s.run(ctx, res)
			return res.Err
		})
		if res.Err == nil && awaitErr != nil {
			// the wrapper failed before the step could report anything
			res.Err = awaitErr
		}
		results = append(results, res)

		if res.Err != nil && (s.fatal || b.opts.Strict) {
			return results, errors.Wrapf(res.Err, "step %s failed", s.name)
		}
	}
	return results, nil
}

func (b *Bootstrap) ensureInterpreter(_ context.Context, res *StepResult) {
	python, err := FindInterpreter(b.runner, b.opts.Python)
	if err != nil {
		res.Err = err
		return
	}
	b.python = python
	res.Output = python
}

// The env directory's presence is the only state inspected: when it
// exists it is assumed valid and left untouched.
func (b *Bootstrap) ensureVenv(ctx context.Context, res *StepResult) {
	if b.venv.Exists() {
		res.Skipped = true
		return
	}
	out, err := b.runner.Run(ctx, nil, b.python, "-m", "venv", b.venv.Root)
	res.Output = string(out)
	if err != nil {
		res.Err = errors.Wrap(err, "creating virtual environment")
	}
}

// pip upgrades itself through the env's interpreter rather than the pip
// shim, which cannot replace its own executable on Windows.
func (b *Bootstrap) upgradePip(ctx context.Context, res *StepResult) {
	out, err := b.runner.Run(ctx, b.opts.ExtraEnv, b.venv.Python(), "-m", "pip", "install", "--upgrade", "pip")
	res.Output = string(out)
	if err != nil {
		res.Err = errors.Wrap(err, "upgrading pip")
	}
}

func (b *Bootstrap) installPackages(ctx context.Context, res *StepResult) {
	args := []string{"install"}
	if b.opts.Requirements != "" {
		args = append(args, "-r", b.opts.Requirements)
	} else {
		args = append(args, b.opts.Packages...)
	}
	out, err := b.runner.Run(ctx, b.opts.ExtraEnv, b.venv.Pip(), args...)
	res.Output = string(out)
	if err != nil {
		res.Err = errors.Wrap(err, "installing packages")
	}
}

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
	"errors"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/venvctl/venvctl/pkg/bootstrap"
	"github.com/venvctl/venvctl/pkg/config"
	"github.com/venvctl/venvctl/pkg/util"
)

const envLocalFile = ".env.local"

var (
	workingDir   string = "."
	tomlFilename string = config.ProjectConfigFile

	envDirFlag = &cli.StringFlag{
		Name:    "venv",
		Usage:   "`DIR` of the virtual environment",
		Value:   bootstrap.DefaultEnvDir,
		Sources: cli.EnvVars("VENVCTL_VENV"),
	}
	pythonFlag = &cli.StringFlag{
		Name:    "python",
		Usage:   "Python `INTERPRETER` to bootstrap with",
		Sources: cli.EnvVars("VENVCTL_PYTHON"),
	}
	packageFlag = &cli.StringSliceFlag{
		Name:    "package",
		Aliases: []string{"p"},
		Usage:   "`PKG` to install, repeatable",
	}
	requirementsFlag = &cli.StringFlag{
		Name:    "requirements",
		Aliases: []string{"r"},
		Usage:   "Requirements `FILE` to install from",
	}
	strictFlag = &cli.BoolFlag{
		Name:  "strict",
		Usage: "Stop at the first failed step and exit non-zero",
	}
	yesFlag = &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Skip the completion pause",
	}

	globalFlags = []cli.Flag{
		&cli.StringFlag{
			Name:        "dir",
			Usage:       "Project `DIR` to operate in",
			Value:       ".",
			Destination: &workingDir,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Project config `TOML` in the working directory",
			Value:       config.ProjectConfigFile,
			Destination: &tomlFilename,
			Required:    false,
		},
		&cli.BoolFlag{
			Name:     "verbose",
			Required: false,
		},
	}
)

func extractArgs(c *cli.Command) ([]string, error) {
	if !c.Args().Present() {
		return nil, errors.New("no arguments provided")
	}
	return c.Args().Slice(), nil
}

// flag value when set on the command line, fallback otherwise; the flag's
// built-in default applies only when the fallback is empty
func flagOr(c *cli.Command, name, fallback string) string {
	if c.IsSet(name) || fallback == "" {
		return c.String(name)
	}
	return fallback
}

// attempt to assemble bootstrap options, priority is
// 1. command line flags (or env var)
// 2. project config file (by default, venvctl.toml)
// 3. global CLI config, then built-in defaults
func loadSetupOptions(c *cli.Command) (bootstrap.Options, *config.CLIConfig, error) {
	opts := bootstrap.Options{WorkDir: workingDir}

	cliConf, err := config.LoadOrCreate()
	if err != nil {
		return opts, nil, err
	}

	proj, err := config.LoadProjectConfig(workingDir, tomlFilename)
	if err != nil {
		return opts, nil, err
	}
	if proj == nil {
		proj = &config.ProjectConfig{}
	}

	opts.EnvDir = flagOr(c, "venv", proj.Dir)
	opts.Python = flagOr(c, "python", proj.Python)
	if opts.Python == "" {
		opts.Python = cliConf.DefaultPython
	}
	opts.Strict = c.Bool("strict") || proj.Strict

	if c.IsSet("package") {
		opts.Packages = c.StringSlice("package")
	} else {
		opts.Packages = proj.Packages
	}
	if c.IsSet("requirements") {
		opts.Requirements = c.String("requirements")
	} else {
		opts.Requirements = proj.Requirements
	}

	// nothing configured: install from whatever the project declares, or
	// fall back to the built-in default package set
	if len(opts.Packages) == 0 && opts.Requirements == "" {
		switch bootstrap.DetectRequirementsSource(workingDir) {
		case bootstrap.SourceRequirements:
			opts.Requirements = filepath.Join(workingDir, "requirements.txt")
		case bootstrap.SourcePyproject:
			opts.Packages = []string{filepath.Clean(workingDir)}
		}
	}

	opts.ExtraEnv, err = loadDotEnv(workingDir)
	if err != nil {
		return opts, nil, err
	}

	return opts, cliConf, nil
}

// loadDotEnv reads .env.local from dir, if present, into KEY=VALUE pairs
// passed to the pip invocations only. Useful for PIP_INDEX_URL and
// friends; never exported to the parent session.
func loadDotEnv(dir string) ([]string, error) {
	if !util.FileExists(dir, envLocalFile) {
		return nil, nil
	}
	envMap, err := godotenv.Read(filepath.Join(dir, envLocalFile))
	if err != nil {
		return nil, err
	}
	env := make([]string, 0, len(envMap))
	for k, v := range envMap {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env, nil
}

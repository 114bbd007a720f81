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
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/venvctl/venvctl/pkg/bootstrap"
	"github.com/venvctl/venvctl/pkg/config"
	"github.com/venvctl/venvctl/pkg/util"
)

var InitCommands = []*cli.Command{
	{
		Name:     "init",
		Category: "Core",
		Usage:    "Write a " + config.ProjectConfigFile + " for the current project",
		Action:   runInit,
		Flags: []cli.Flag{
			envDirFlag,
			pythonFlag,
			packageFlag,
		},
	},
}

func runInit(ctx context.Context, cmd *cli.Command) error {
	interactive := isatty.IsTerminal(os.Stdin.Fd())

	proj := &config.ProjectConfig{
		Dir:      cmd.String("venv"),
		Python:   cmd.String("python"),
		Packages: cmd.StringSlice("package"),
	}
	if len(proj.Packages) == 0 {
		proj.Packages = bootstrap.DefaultPackages
	}

	if util.FileExists(workingDir, tomlFilename) {
		if !interactive {
			return errors.New(tomlFilename + " already exists")
		}
		overwrite := false
		if err := huh.NewForm(huh.NewGroup(huh.NewConfirm().
			Title(tomlFilename + " already exists, overwrite?").
			Value(&overwrite).
			WithTheme(util.Theme))).
			RunWithContext(ctx); err != nil {
			return err
		}
		if !overwrite {
			return nil
		}
	}

	if interactive && !cmd.IsSet("package") {
		packages := strings.Join(proj.Packages, " ")
		if err := huh.NewForm(huh.NewGroup(huh.NewInput().
			Title("Packages").
			Description("Space-separated packages to install").
			Value(&packages).
			WithTheme(util.Theme))).
			RunWithContext(ctx); err != nil {
			return err
		}
		proj.Packages = strings.Fields(packages)
	}

	if err := proj.SaveTo(workingDir, tomlFilename); err != nil {
		return err
	}
	fmt.Println("Saved project config to " + util.Accented(filepath.Join(workingDir, tomlFilename)))
	return nil
}

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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/venvctl/venvctl/pkg/bootstrap"
	"github.com/venvctl/venvctl/pkg/util"
)

var (
	out io.Writer = os.Stdout

	// tests inject a recording runner; nil means run real commands
	setupRunner *bootstrap.Runner
)

var SetupCommands = []*cli.Command{
	{
		Name:     "setup",
		Aliases:  []string{"up"},
		Category: "Core",
		Usage:    "Create the project's virtual environment and install its packages",
		Action:   runSetup,
		Flags: []cli.Flag{
			envDirFlag,
			pythonFlag,
			packageFlag,
			requirementsFlag,
			strictFlag,
			yesFlag,
		},
	},
}

func runSetup(ctx context.Context, cmd *cli.Command) error {
	opts, cliConf, err := loadSetupOptions(cmd)
	if err != nil {
		return err
	}

	runner := setupRunner
	if runner == nil {
		runner = bootstrap.NewRunner().WithLogger(log)
	}
	boot := bootstrap.New(opts, runner)

	interactive := isatty.IsTerminal(os.Stdin.Fd())
	var await bootstrap.AwaitFunc
	if interactive {
		await = util.Await
	}

	results, runErr := boot.Run(ctx, await)
	printSummary(results)
	if runErr != nil {
		return runErr
	}

	// best-effort mode: the notice prints regardless of individual step
	// outcomes, the summary above is what reports failures
	fmt.Fprintln(out, bootstrap.CompletionNotice)
	fmt.Fprintln(out, util.Dimmed("Environment at ")+util.Accented(boot.Venv().Root))

	if interactive && !cmd.Bool("yes") && !cliConf.QuietPause {
		pauseForKeypress()
	}
	return nil
}

func printSummary(results []*bootstrap.StepResult) {
	for _, res := range results {
		switch {
		case res.Failed():
			fmt.Fprintln(out, util.FailureStyle.Render("✗ "+string(res.Step))+": "+res.Err.Error())
			// surface the tool's own diagnostics, indented under the step
			for _, line := range strings.Split(strings.TrimSpace(res.Output), "\n") {
				if line != "" {
					fmt.Fprintln(out, "    "+util.Dimmed(line))
				}
			}
		case res.Skipped:
			fmt.Fprintln(out, util.SkippedStyle.Render("• "+string(res.Step))+" "+util.Dimmed("(already exists)"))
		case res.Step == bootstrap.StepInterpreter:
			fmt.Fprintln(out, util.SuccessStyle.Render("✓ "+string(res.Step))+" "+util.Dimmed(res.Output))
		default:
			fmt.Fprintln(out, util.SuccessStyle.Render("✓ "+string(res.Step)))
		}
	}
}

// Courtesy pause so a double-clicked terminal window doesn't close before
// the output can be read. Only reached on a TTY.
func pauseForKeypress() {
	fmt.Fprint(out, "Press Enter to close...")
	_, _ = bufio.NewReader(os.Stdin).ReadBytes('\n')
}
